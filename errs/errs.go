package errs

import "fmt"

// Kind categorizes application errors for HTTP status mapping.
type Kind int

const (
	// Unknown represents an unclassified error.
	Unknown Kind = iota
	// InvalidURL indicates the submitted URL could not be parsed (HTTP 400).
	InvalidURL
	// Timeout indicates the target took too long to respond (HTTP 408).
	Timeout
	// NotFound indicates the target returned 404 (HTTP 502).
	NotFound
	// ConnectionRefused indicates the target host rejected the connection (HTTP 502).
	ConnectionRefused
	// Forbidden indicates the target blocked the crawler (HTTP 502).
	Forbidden
	// Unreachable indicates any other fetch failure (HTTP 502).
	Unreachable
	// ParseFailed indicates the response HTML could not be parsed (HTTP 500).
	ParseFailed
)

// String returns the machine-readable name of the error kind.
func (k Kind) String() string {
	switch k {
	case InvalidURL:
		return "invalid_url"
	case Timeout:
		return "timeout"
	case NotFound:
		return "not_found"
	case ConnectionRefused:
		return "connection_refused"
	case Forbidden:
		return "forbidden"
	case Unreachable:
		return "unreachable"
	case ParseFailed:
		return "parse_failed"
	default:
		return "unknown"
	}
}

// AppError carries a category, user message, and original cause.
type AppError struct {
	Kind           Kind
	UpstreamStatus int // HTTP status code returned by the target site
	Message        string
	Cause          error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New builds an AppError with the given kind and message.
func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// Wrap builds an AppError around a cause.
func Wrap(kind Kind, message string, cause error) *AppError {
	return &AppError{Kind: kind, Message: message, Cause: cause}
}
