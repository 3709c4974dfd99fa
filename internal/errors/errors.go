package errors

import (
	"errors"
	"net/http"
)

// Kind classifies a failure by who can fix it.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuthentication
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindTooManyRequests
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindConflict:
		return "CONFLICT"
	case KindAuthentication:
		return "INVALID_CREDENTIALS"
	case KindUnauthenticated:
		return "UNAUTHENTICATED"
	case KindForbidden:
		return "FORBIDDEN"
	case KindNotFound:
		return "NOT_FOUND"
	case KindTooManyRequests:
		return "TOO_MANY_REQUESTS"
	default:
		return "INTERNAL_ERROR"
	}
}

// Error is a domain failure carrying a client-safe message. Err keeps the
// underlying cause for logs and is never rendered.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind and message, so package level
// sentinels work with errors.Is even after wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// New creates a domain error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation creates a client-fixable input error.
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// Internal wraps an unexpected failure behind a generic message.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

var (
	// ErrInvalidCredentials is returned for both unknown identifiers and wrong passwords.
	ErrInvalidCredentials = New(KindAuthentication, "invalid credentials")
	// ErrUserAlreadyExists is returned when the username or email is taken.
	ErrUserAlreadyExists = New(KindConflict, "username or email already exists")
	// ErrUserNotFound is returned when a referenced user no longer exists.
	ErrUserNotFound = New(KindNotFound, "user not found")
	// ErrInvalidResetToken is returned for unknown or already consumed reset tokens.
	ErrInvalidResetToken = New(KindValidation, "invalid or expired token")
	// ErrExpiredResetToken is returned for reset tokens past their expiry.
	ErrExpiredResetToken = New(KindValidation, "reset token has expired")
	// ErrMissingToken is returned when a protected route is called without a bearer token.
	ErrMissingToken = New(KindUnauthenticated, "missing authentication token")
	// ErrInvalidToken is returned for malformed, tampered or expired bearer tokens.
	ErrInvalidToken = New(KindForbidden, "invalid or expired token")
	// ErrTooManyAttempts is returned while login is locked for an identifier.
	ErrTooManyAttempts = New(KindTooManyRequests, "too many failed login attempts, try again later")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Message: e.Message,
		Code:    e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything that is not a
// domain error becomes a generic 500 so driver details never reach clients.
func MapErrorToHTTP(err error) *HTTPError {
	var e *Error
	if !errors.As(err, &e) {
		return NewHTTPError(http.StatusInternalServerError, "internal server error", KindInternal.String())
	}

	switch e.Kind {
	case KindValidation, KindConflict:
		return NewHTTPError(http.StatusBadRequest, e.Message, e.Kind.String())
	case KindAuthentication, KindUnauthenticated:
		return NewHTTPError(http.StatusUnauthorized, e.Message, e.Kind.String())
	case KindForbidden:
		return NewHTTPError(http.StatusForbidden, e.Message, e.Kind.String())
	case KindNotFound:
		return NewHTTPError(http.StatusNotFound, e.Message, e.Kind.String())
	case KindTooManyRequests:
		return NewHTTPError(http.StatusTooManyRequests, e.Message, e.Kind.String())
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", KindInternal.String())
	}
}
