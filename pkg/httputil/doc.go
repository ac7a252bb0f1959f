// Package httputil provides HTTP utilities for management platform clients.
//
// # Overview
//
// This package provides infrastructure shared by API clients:
//
//   - [Retry]: Automatic retry with exponential backoff
//   - [RetryableError]: Marker type for transient failures
//
// # Retry
//
// [Retry] wraps HTTP requests with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//
// Only errors wrapped in [RetryableError] are retried; permanent failures
// (authentication errors, 4xx responses) are returned immediately. The delay
// doubles after each failed attempt:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return fetchOnce()
//	})
//
// # Configuration
//
// Default settings are suitable for most use cases:
//
//   - Max retries: 3
//   - Base backoff: 1 second
package httputil
