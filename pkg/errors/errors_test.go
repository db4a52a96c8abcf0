package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/matzehuels/gitnetwork/pkg/network"
)

func TestErrorString(t *testing.T) {
	cause := errors.New("exit status 128")
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"plain", New(ErrCodeInvalidRef, "invalid ref: %s", "a..b"), "INVALID_REF: invalid ref: a..b"},
		{"wrapped", Wrap(ErrCodeRepoNotFound, cause, "open %s", "/tmp/x"), "REPO_NOT_FOUND: open /tmp/x: exit status 128"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("load layout: %w", Wrap(ErrCodeNetwork, cause, "redis get"))

	if !errors.Is(err, cause) {
		t.Error("cause lost through Wrap")
	}
	var e *Error
	if !errors.As(err, &e) || e.Cause != cause {
		t.Errorf("errors.As = %v", e)
	}
}

func TestClassification(t *testing.T) {
	dup := &network.DuplicateCommitError{ID: "abc"}
	tests := []struct {
		name    string
		err     error
		code    Code
		message string
	}{
		{"structured", New(ErrCodeInvalidCommit, "bad id %q", "zz"), ErrCodeInvalidCommit, `bad id "zz"`},
		{"outer code wins", Wrap(ErrCodeTimeout, New(ErrCodeNetwork, "inner"), "git log"), ErrCodeTimeout, "git log"},
		{"wrapped by fmt", fmt.Errorf("fetch: %w", New(ErrCodeRepoNotFound, "gone")), ErrCodeRepoNotFound, "gone"},
		{"duplicate commit", fmt.Errorf("layout: %w", dup), ErrCodeDuplicateCommit, "layout: " + dup.Error()},
		{"invariant", &network.InvariantViolationError{Op: "find free lane", Steps: 10000}, ErrCodeInvariantViolation, ""},
		{"plain", errors.New("boom"), "", "boom"},
		{"nil", nil, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if tt.err != nil && tt.message != "" {
				if got := UserMessage(tt.err); got != tt.message {
					t.Errorf("UserMessage() = %q, want %q", got, tt.message)
				}
			}
		})
	}
}

func TestIsOnlyMatchesStructured(t *testing.T) {
	if Is(nil, ErrCodeNotFound) {
		t.Error("Is(nil) = true")
	}
	if Is(errors.New("NOT_FOUND"), ErrCodeNotFound) {
		t.Error("plain error matched by text")
	}
	if Is(New(ErrCodeNotFound, "x"), ErrCodeLayoutNotFound) {
		t.Error("generic NOT_FOUND matched LAYOUT_NOT_FOUND")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(ErrCodeInvalidRef, "bad"), http.StatusBadRequest},
		{New(ErrCodeInvalidPath, "outside root"), http.StatusBadRequest},
		{New(ErrCodeLayoutNotFound, "gone"), http.StatusNotFound},
		{New(ErrCodeCommitNotFound, "gone"), http.StatusNotFound},
		{&network.DuplicateCommitError{ID: "a"}, http.StatusConflict},
		{New(ErrCodeUnsupported, "no"), http.StatusNotImplemented},
		{Wrap(ErrCodeTimeout, errors.New("slow"), "git log"), http.StatusGatewayTimeout},
		{New(ErrCodeNetwork, "redis down"), http.StatusBadGateway},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
