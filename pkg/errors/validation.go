package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateRef validates a git ref name supplied by a user.
// It follows the rules of git check-ref-format that matter for safety:
//   - No empty names, no leading dash (would be read as a flag)
//   - No control characters, spaces or ~^:?*[\
//   - No "..", "@{", "//" sequences, no trailing "/" or ".lock"
//   - Maximum length of 256 characters
func ValidateRef(ref string) error {
	if ref == "" {
		return New(ErrCodeInvalidRef, "ref cannot be empty")
	}

	if len(ref) > 256 {
		return New(ErrCodeInvalidRef, "ref too long (max 256 characters)")
	}

	if strings.HasPrefix(ref, "-") {
		return New(ErrCodeInvalidRef, "ref cannot start with '-'")
	}

	for _, r := range ref {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidRef, "ref contains invalid characters")
		}
	}

	if strings.ContainsAny(ref, "~^:?*[\\") {
		return New(ErrCodeInvalidRef, "ref contains invalid characters: %q", ref)
	}

	for _, pattern := range []string{"..", "@{", "//"} {
		if strings.Contains(ref, pattern) {
			return New(ErrCodeInvalidRef, "ref contains invalid sequence: %q", pattern)
		}
	}

	if strings.HasSuffix(ref, "/") || strings.HasSuffix(ref, ".lock") || strings.HasSuffix(ref, ".") {
		return New(ErrCodeInvalidRef, "ref has an invalid suffix: %q", ref)
	}

	return nil
}

// commitIDRegex matches abbreviated or full SHA-1 and SHA-256 object names.
var commitIDRegex = regexp.MustCompile(`^[0-9a-fA-F]{4,64}$`)

// ValidateCommitID validates a hex commit id (abbreviated ids allowed).
func ValidateCommitID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidCommit, "commit id cannot be empty")
	}
	if !commitIDRegex.MatchString(id) {
		return New(ErrCodeInvalidCommit, "invalid commit id: %q", id)
	}
	return nil
}

// ValidateTarget validates a window target, which may be a commit id or a
// ref name.
func ValidateTarget(target string) error {
	if commitIDRegex.MatchString(target) {
		return nil
	}
	if err := ValidateRef(target); err != nil {
		return New(ErrCodeInvalidInput, "invalid target %q: not a commit id or ref", target)
	}
	return nil
}

// ValidatePath validates a repository path relative to a server root.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a scheme usable for a git remote or a backend.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	for _, scheme := range []string{"http://", "https://", "redis://", "rediss://", "mongodb://", "mongodb+srv://"} {
		if strings.HasPrefix(rawURL, scheme) {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "URL has an unsupported scheme: %q", rawURL)
}

// ValidateMaxCommits validates a requested window size.
func ValidateMaxCommits(n int) error {
	const limit = 100000
	if n < 0 || n > limit {
		return New(ErrCodeInvalidInput, "max commits must be between 0 and %d, got %d", limit, n)
	}
	return nil
}
