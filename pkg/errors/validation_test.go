package errors

import (
	"strings"
	"testing"
)

func TestValidateRef(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "main", false},
		{"nested", "feature/lanes", false},
		{"remote", "origin/main", false},
		{"tag", "v1.2.3", false},
		{"full", "refs/heads/main", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 300), true},
		{"leading dash", "--output=/tmp/x", true},
		{"space", "my branch", true},
		{"control char", "foo\x01bar", true},
		{"double dot", "main..topic", true},
		{"reflog", "main@{1}", true},
		{"double slash", "feature//x", true},
		{"caret", "HEAD^", true},
		{"tilde", "HEAD~2", true},
		{"colon", "a:b", true},
		{"glob", "feat*", true},
		{"trailing slash", "feature/", true},
		{"lock suffix", "main.lock", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRef(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRef(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidRef) {
				t.Errorf("ValidateRef(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidRef)
			}
		})
	}
}

func TestValidateCommitID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"abbreviated", "a1b2c3d", false},
		{"full sha1", "0123456789abcdef0123456789abcdef01234567", false},
		{"upper", "ABCDEF12", false},

		{"empty", "", true},
		{"too short", "abc", true},
		{"not hex", "xyz12345", true},
		{"too long", strings.Repeat("a", 65), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCommitID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCommitID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTarget(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"commit", "deadbeef", false},
		{"ref", "release/2.0", false},
		{"bad", "a..b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTarget(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTarget(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "gitnetwork", false},
		{"nested", "team/service", false},

		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "../secret", true},
		{"hidden traversal", "a/../../b", true},
		{"backslash", "a\\b", true},
		{"null byte", "a\x00b", true},
		{"too long", strings.Repeat("a", 501), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://example.com/repo.git", false},
		{"redis", "redis://localhost:6379/0", false},
		{"mongo", "mongodb://localhost:27017", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"file", "file:///etc/passwd", true},
		{"javascript", "javascript:alert(1)", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateMaxCommits(t *testing.T) {
	for _, n := range []int{0, 1, 650, 100000} {
		if err := ValidateMaxCommits(n); err != nil {
			t.Errorf("ValidateMaxCommits(%d) = %v, want nil", n, err)
		}
	}
	for _, n := range []int{-1, 100001} {
		if err := ValidateMaxCommits(n); err == nil {
			t.Errorf("ValidateMaxCommits(%d) = nil, want error", n)
		}
	}
}
