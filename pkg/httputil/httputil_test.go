package httputil

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/gitnetwork/pkg/errors"
)

func TestRetry(t *testing.T) {
	transient := &RetryableError{Err: stderrors.New("flaky")}
	permanent := stderrors.New("bad request")

	tests := []struct {
		name      string
		fails     []error
		wantCalls int
		wantErr   error
	}{
		{"first try", nil, 1, nil},
		{"recovers", []error{transient, transient}, 3, nil},
		{"gives up", []error{transient, transient, transient, transient}, 3, transient.Err},
		{"permanent", []error{permanent}, 1, permanent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), 3, time.Millisecond, func() error {
				calls++
				if calls <= len(tt.fails) {
					return tt.fails[calls-1]
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if err != tt.wantErr {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, 3, time.Hour, func() error {
		return &RetryableError{Err: stderrors.New("flaky")}
	})
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func testClient() *Client {
	c := NewClient(map[string]string{"Accept": "application/json"})
	c.Delay = time.Millisecond
	return c
}

func TestGetJSON(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Link", `<http://x/page2>; rel="next", <http://x/page9>; rel="last"`)
		w.Write([]byte(`{"sha":"abc"}`))
	}))
	defer srv.Close()

	var v struct{ SHA string }
	next, err := testClient().GetJSON(context.Background(), srv.URL, &v)
	if err != nil {
		t.Fatal(err)
	}
	if v.SHA != "abc" || next != "http://x/page2" {
		t.Errorf("got sha=%q next=%q", v.SHA, next)
	}
	if hits.Load() != 2 {
		t.Errorf("hits = %d, want 2", hits.Load())
	}
}

func TestGetJSONStatus(t *testing.T) {
	tests := []struct {
		status int
		header map[string]string
		want   errors.Code
	}{
		{http.StatusNotFound, nil, errors.ErrCodeNotFound},
		{http.StatusForbidden, map[string]string{"X-RateLimit-Remaining": "0"}, errors.ErrCodeNetwork},
		{http.StatusUnauthorized, nil, errors.ErrCodeNetwork},
		{http.StatusServiceUnavailable, nil, errors.ErrCodeNetwork},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.header {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()
			var v any
			_, err := testClient().GetJSON(context.Background(), srv.URL, &v)
			if got := errors.GetCode(err); got != tt.want {
				t.Errorf("code = %q, want %q (err %v)", got, tt.want, err)
			}
		})
	}
}

func TestNextLink(t *testing.T) {
	tests := []struct{ header, want string }{
		{"", ""},
		{`<https://api/x?page=2>; rel="next"`, "https://api/x?page=2"},
		{`<https://api/x?page=1>; rel="prev", <https://api/x?page=3>; rel="next"`, "https://api/x?page=3"},
		{`<https://api/x?page=1>; rel="first"`, ""},
	}
	for _, tt := range tests {
		if got := NextLink(tt.header); got != tt.want {
			t.Errorf("NextLink(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
