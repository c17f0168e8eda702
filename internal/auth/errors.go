package auth

import "errors"

// FailureReason categorizes authentication failures
type FailureReason string

const (
	FailureMissingAuthorization FailureReason = "missing_authorization"
	FailureInvalidScheme        FailureReason = "invalid_scheme"
	FailureInvalidSignature     FailureReason = "invalid_signature"
	FailureInvalidIssuer        FailureReason = "invalid_issuer"
	FailureInvalidAudience      FailureReason = "invalid_audience"
	FailureTokenExpired         FailureReason = "token_expired"
	FailureUnknown              FailureReason = "unknown"
)

// Error represents a categorized authentication error
type Error struct {
	Reason  FailureReason
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

// NewError creates a new Error
func NewError(reason FailureReason, message string, err error) *Error {
	return &Error{Reason: reason, Message: message, Err: err}
}

// AsError checks if an error is an auth Error and returns it
func AsError(err error) (*Error, bool) {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}
