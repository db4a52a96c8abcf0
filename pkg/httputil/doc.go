// Package httputil provides the HTTP plumbing for remote history sources.
//
// # Client
//
// [Client] performs JSON GET requests with default headers, maps response
// statuses to gitnetwork error codes and follows RFC 8288 Link headers for
// pagination:
//
//	c := httputil.NewClient(map[string]string{"Accept": "application/json"})
//	var page []item
//	next, err := c.GetJSON(ctx, url, &page)
//	for next != "" { ... }
//
// # Retry
//
// Transient failures (network errors, 429 and 5xx responses) are wrapped in
// [RetryableError] and retried by [Retry] with exponential backoff. Any
// other error is returned immediately.
package httputil
