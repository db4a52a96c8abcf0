package httputil

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/gitnetwork/pkg/errors"
)

// Defaults for [NewClient].
const (
	DefaultTimeout  = 15 * time.Second
	DefaultAttempts = 3
	DefaultDelay    = time.Second
)

// Client issues JSON GET requests with retries.
type Client struct {
	HTTP     *http.Client
	Headers  map[string]string // sent with every request
	Attempts int
	Delay    time.Duration // initial backoff
}

// NewClient creates a client with the default timeout and retry policy.
func NewClient(headers map[string]string) *Client {
	return &Client{
		HTTP:     &http.Client{Timeout: DefaultTimeout},
		Headers:  headers,
		Attempts: DefaultAttempts,
		Delay:    DefaultDelay,
	}
}

// GetJSON fetches url and decodes the body into v. It returns the URL of
// the next page from the Link header, or "" on the last page.
func (c *Client) GetJSON(ctx context.Context, url string, v any) (next string, err error) {
	err = Retry(ctx, c.Attempts, c.Delay, func() error {
		resp, err := c.do(ctx, url)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return errors.Wrap(errors.ErrCodeNetwork, err, "decode %s", url)
		}
		next = NextLink(resp.Header.Get("Link"))
		return nil
	})
	return next, err
}

func (c *Client) do(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "request %s", url)
	}
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "GET %s", url)
		}
		return nil, &RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "GET %s", url)}
	}
	if err := checkStatus(resp, url); err != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

// checkStatus maps non-200 responses to error codes.
func checkStatus(resp *http.Response, url string) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "GET %s: not found", url)
	case code == http.StatusTooManyRequests || code >= 500:
		return &RetryableError{Err: errors.New(errors.ErrCodeNetwork, "GET %s: status %d", url, code)}
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		if resp.Header.Get("X-RateLimit-Remaining") == "0" {
			return errors.New(errors.ErrCodeNetwork, "GET %s: rate limit exceeded", url)
		}
		return errors.New(errors.ErrCodeNetwork, "GET %s: access denied (status %d)", url, code)
	default:
		return errors.New(errors.ErrCodeNetwork, "GET %s: status %d", url, code)
	}
}

// NextLink extracts the rel="next" target of a Link header.
func NextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		target, params, ok := strings.Cut(part, ";")
		if !ok {
			continue
		}
		for _, p := range strings.Split(params, ";") {
			if strings.TrimSpace(p) == `rel="next"` {
				return strings.Trim(strings.TrimSpace(target), "<>")
			}
		}
	}
	return ""
}

