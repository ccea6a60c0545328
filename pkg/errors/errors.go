package errors

import "fmt"

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	// ErrorTypeLoginRequired means an authenticated endpoint was called
	// before a successful login. Raised before any network traffic.
	ErrorTypeLoginRequired ErrorType = "login_required"
	// ErrorTypeSentryBlock means the account has been blocked by the
	// service. The session is unrecoverable and must not be retried.
	ErrorTypeSentryBlock ErrorType = "sentry_block"
	// ErrorTypeValidation covers pre-flight validation failures such as
	// an album with an out-of-range item count or a malformed usertag.
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeUnsupportedMedia means a file extension was not
	// recognized as a photo or video type.
	ErrorTypeUnsupportedMedia ErrorType = "unsupported_media"
	// ErrorTypeLogin means a step of the login sequence was rejected by
	// the server; the client stays anonymous.
	ErrorTypeLogin       ErrorType = "login"
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error represents an API error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// New creates an Error of the given type with no HTTP status attached.
func New(errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message}
}

// Newf creates an Error of the given type with a formatted message.
func Newf(errorType ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: errorType, Message: fmt.Sprintf(format, args...)}
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeServerError:
		return true
	case ErrorTypeLoginRequired, ErrorTypeSentryBlock, ErrorTypeValidation,
		ErrorTypeUnsupportedMedia, ErrorTypeLogin, ErrorTypeParsing:
		return false
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 429: // Too Many Requests
		return true
	case 500, 502, 503, 504: // Server errors
		return true
	case 400, 401, 403, 404: // Client errors that won't change
		return false
	default:
		return statusCode >= 500 // Retry all 5xx errors
	}
}
