package cache

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/gitnetwork/pkg/httputil"
)

// ErrBackend is returned when a remote cache cannot be reached.
var ErrBackend = errors.New("cache backend unavailable")

// Retryable marks err as transient so RetryWithBackoff tries again.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &httputil.RetryableError{Err: err}
}

// IsRetryable reports whether err was marked with Retryable.
func IsRetryable(err error) bool {
	var re *httputil.RetryableError
	return errors.As(err, &re)
}

// retryDelay is the first backoff delay; tests shorten it.
var retryDelay = 200 * time.Millisecond

// RetryWithBackoff retries fn up to 3 times, the same policy remote
// history sources use.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return httputil.Retry(ctx, 3, retryDelay, fn)
}
