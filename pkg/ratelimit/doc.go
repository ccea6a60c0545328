// Package ratelimit provides rate limiting for outgoing API calls.
//
// The session transport waits on a token bucket before every round-trip
// so that a burst of upload phases cannot exceed the request budget the
// account is allowed per minute. Wait honors context cancellation.
//
// Usage:
//
//	limiter := ratelimit.NewTokenBucket(60, time.Minute)
//	if err := limiter.Wait(ctx); err != nil {
//	    return err
//	}
//	// proceed with request
package ratelimit
