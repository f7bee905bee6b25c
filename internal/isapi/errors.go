package isapi

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"
)

// ErrorType categorizes a failure while talking to a panel.
type ErrorType int

const (
	// ErrTypeChallengeParse indicates a malformed or missing Digest challenge
	ErrTypeChallengeParse ErrorType = iota
	// ErrTypeTransport indicates a connection failure, write failure, or a
	// non-2xx final status
	ErrTypeTransport
	// ErrTypeTimeout indicates a physical attempt exceeded its deadline
	ErrTypeTimeout
	// ErrTypeProtocolStatus indicates the panel answered with a non-1 status code
	ErrTypeProtocolStatus
	// ErrTypeAccessDenied indicates the caller lacks rights to the device
	ErrTypeAccessDenied
	// ErrTypeNotFound indicates an unknown device
	ErrTypeNotFound
	// ErrTypeCritical indicates an unexpected failure during orchestration
	ErrTypeCritical
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeChallengeParse:
		return "Challenge Parse Failure"
	case ErrTypeTransport:
		return "Transport Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeProtocolStatus:
		return "Protocol Status Failure"
	case ErrTypeAccessDenied:
		return "Access Denied"
	case ErrTypeNotFound:
		return "Not Found"
	case ErrTypeCritical:
		return "Critical Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// PanelError represents an error that occurred during panel communication
// or command orchestration.
type PanelError struct {
	Type       ErrorType // Category of error
	Message    string    // Human-readable error message
	StatusCode int       // HTTP or device status code (if applicable)
	Err        error     // Underlying error (if any)
	Host       string    // Panel address (for context)
}

// Error implements the error interface
func (e *PanelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *PanelError) Unwrap() error {
	return e.Err
}

// ClassifyTransportError analyzes a low-level error from an HTTP attempt and
// maps it to the taxonomy. Deadline expiry becomes a Timeout; everything else
// is a Transport error.
func ClassifyTransportError(err error, host string) *PanelError {
	if err == nil {
		return nil
	}

	if os.IsTimeout(err) {
		return &PanelError{
			Type:    ErrTypeTimeout,
			Message: "request timed out",
			Err:     err,
			Host:    host,
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return &PanelError{
				Type:    ErrTypeTimeout,
				Message: "request timed out",
				Err:     err,
				Host:    host,
			}
		}
		return ClassifyTransportError(urlErr.Err, host)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch {
		case errors.Is(opErr.Err, syscall.ECONNREFUSED):
			return &PanelError{
				Type:    ErrTypeTransport,
				Message: "panel refused connection",
				Err:     err,
				Host:    host,
			}
		case errors.Is(opErr.Err, syscall.EHOSTUNREACH):
			return &PanelError{
				Type:    ErrTypeTransport,
				Message: "host unreachable",
				Err:     err,
				Host:    host,
			}
		case errors.Is(opErr.Err, syscall.ENETUNREACH):
			return &PanelError{
				Type:    ErrTypeTransport,
				Message: "network unreachable",
				Err:     err,
				Host:    host,
			}
		}
	}

	return &PanelError{
		Type:    ErrTypeTransport,
		Message: "network error occurred",
		Err:     err,
		Host:    host,
	}
}

// NewChallengeParseError creates an authentication-challenge parse failure
func NewChallengeParseError(message string) *PanelError {
	return &PanelError{
		Type:    ErrTypeChallengeParse,
		Message: message,
	}
}

// NewTransportError creates a transport-level error
func NewTransportError(message string, statusCode int, err error) *PanelError {
	return &PanelError{
		Type:       ErrTypeTransport,
		Message:    message,
		StatusCode: statusCode,
		Err:        err,
	}
}

// NewProtocolStatusError creates an error for a non-1 device status code
func NewProtocolStatusError(statusCode int, message string) *PanelError {
	return &PanelError{
		Type:       ErrTypeProtocolStatus,
		Message:    message,
		StatusCode: statusCode,
	}
}

// NewAccessDeniedError creates an authorization error for the caller
func NewAccessDeniedError(message string) *PanelError {
	return &PanelError{
		Type:    ErrTypeAccessDenied,
		Message: message,
	}
}

// NewNotFoundError creates an unknown-device error
func NewNotFoundError(message string) *PanelError {
	return &PanelError{
		Type:    ErrTypeNotFound,
		Message: message,
	}
}

// NewCriticalError wraps an unexpected orchestration failure
func NewCriticalError(message string, err error) *PanelError {
	return &PanelError{
		Type:    ErrTypeCritical,
		Message: message,
		Err:     err,
	}
}

func isType(err error, t ErrorType) bool {
	var pe *PanelError
	if errors.As(err, &pe) {
		return pe.Type == t
	}
	return false
}

// IsChallengeParseError checks if an error is a Digest challenge parse failure
func IsChallengeParseError(err error) bool { return isType(err, ErrTypeChallengeParse) }

// IsTransportError checks if an error is a transport error
func IsTransportError(err error) bool { return isType(err, ErrTypeTransport) }

// IsTimeoutError checks if an error is an attempt timeout
func IsTimeoutError(err error) bool { return isType(err, ErrTypeTimeout) }

// IsProtocolStatusError checks if an error is a non-1 device status
func IsProtocolStatusError(err error) bool { return isType(err, ErrTypeProtocolStatus) }

// IsAccessDeniedError checks if an error is a caller authorization failure
func IsAccessDeniedError(err error) bool { return isType(err, ErrTypeAccessDenied) }

// IsNotFoundError checks if an error is an unknown-device failure
func IsNotFoundError(err error) bool { return isType(err, ErrTypeNotFound) }

// IsCriticalError checks if an error aborted a whole operation
func IsCriticalError(err error) bool { return isType(err, ErrTypeCritical) }
