// Package apperr defines the error kinds the service layer reports to the
// HTTP boundary. Callers branch on Kind rather than on message strings.
package apperr

import "errors"

// Kind classifies an error for the boundary layer.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindUnauthorized
	KindNotFound
	KindConflict
	KindRateLimited
	KindServerConfig
)

// String returns a short identifier for the kind, used in logs.
func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	case KindServerConfig:
		return "server_config"
	default:
		return "internal"
	}
}

// Error is a tagged error with a caller-safe message. The wrapped cause is
// kept for logging but never surfaces in the message text.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Invalid reports a malformed or rejected request value.
func Invalid(msg string) *Error {
	return &Error{Kind: KindInvalid, Message: msg}
}

// Unauthorized reports a failed authentication. The message must not reveal
// whether the email or the password was wrong.
func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// NotFound reports a missing resource.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Conflict reports a uniqueness violation.
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// RateLimited reports a throttled request.
func RateLimited(msg string) *Error {
	return &Error{Kind: KindRateLimited, Message: msg}
}

// ServerConfig reports a deployment defect, such as a missing signing secret.
func ServerConfig(msg string, err error) *Error {
	return &Error{Kind: KindServerConfig, Message: msg, Err: err}
}

// Internal wraps an unexpected persistence or crypto failure.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf extracts the kind from an error chain. Untagged errors are treated
// as internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
