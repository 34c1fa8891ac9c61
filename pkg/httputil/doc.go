// Package httputil provides the HTTP plumbing used to fetch previous
// releases: registry snapshots and published artifacts.
//
// # Overview
//
//   - [Client]: GET with a User-Agent header, status mapping and retries
//   - [Policy]: retry with exponential backoff
//
// # Status mapping
//
// Responses are mapped to sentinel errors so callers can branch with
// errors.Is:
//
//   - 200: success
//   - 404: [ErrNotFound] (a resource that was never published)
//   - 5xx and connection failures: [ErrNetwork], retried
//   - anything else: [ErrNetwork], not retried
//
// # Retry
//
// [Policy.Retry] only retries errors wrapped in [RetryableError]:
//
//	err := httputil.DefaultPolicy().Retry(ctx, func() error {
//	    return httputil.Retryable(fetch())
//	})
package httputil
