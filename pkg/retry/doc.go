// Package retry provides bounded, observable retry logic with pluggable
// backoff strategies.
//
// The session transport retries transport-level failures with a constant
// delay, preserving the slow steady cadence the upstream service expects,
// but every loop here has an attempt ceiling and honors context
// cancellation. Exponential and linear strategies are available for other
// callers.
package retry
