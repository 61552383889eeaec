package auth

import (
	"errors"
	"fmt"
)

// SigningError indicates the identity assertion could not be produced from
// the configured private key. Common causes: key material that is not valid
// PEM, a key that is not RSA, or a failure inside the signing operation.
type SigningError struct {
	Cause error
}

func (e *SigningError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("signing identity assertion: %v", e.Cause)
	}
	return "signing identity assertion failed"
}

// Unwrap returns the underlying cause for errors.As/Is support.
func (e *SigningError) Unwrap() error {
	return e.Cause
}

// NewSigningError creates a SigningError.
func NewSigningError(cause error) *SigningError {
	return &SigningError{Cause: cause}
}

// IsSigningError returns true if the error is a SigningError.
func IsSigningError(err error) bool {
	var signingErr *SigningError
	return errors.As(err, &signingErr)
}

// HeaderEncodingError indicates the fetched token cannot be carried as an
// HTTP header value. The token is kept so callers can inspect what the
// server returned.
type HeaderEncodingError struct {
	Value string
}

func (e *HeaderEncodingError) Error() string {
	return fmt.Sprintf("token %q is not a valid HTTP header value", e.Value)
}

// NewHeaderEncodingError creates a HeaderEncodingError.
func NewHeaderEncodingError(value string) *HeaderEncodingError {
	return &HeaderEncodingError{Value: value}
}

// IsHeaderEncodingError returns true if the error is a HeaderEncodingError.
func IsHeaderEncodingError(err error) bool {
	var headerErr *HeaderEncodingError
	return errors.As(err, &headerErr)
}

// RequestError indicates the token exchange with GitHub failed. StatusCode
// and Body are populated when the API answered with a non-success status;
// Cause carries transport and response decoding failures.
type RequestError struct {
	StatusCode int
	Body       string
	Cause      error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("token exchange returned status %d: %s", e.StatusCode, e.Body)
	}
	if e.Cause != nil {
		return fmt.Sprintf("token exchange failed: %v", e.Cause)
	}
	return "token exchange failed"
}

// Unwrap returns the underlying cause for errors.As/Is support.
func (e *RequestError) Unwrap() error {
	return e.Cause
}

// NewRequestError creates a RequestError wrapping a transport or decoding
// failure.
func NewRequestError(cause error) *RequestError {
	return &RequestError{Cause: cause}
}

// NewRequestStatusError creates a RequestError for a non-success API status.
func NewRequestStatusError(statusCode int, body string) *RequestError {
	return &RequestError{StatusCode: statusCode, Body: body}
}

// IsRequestError returns true if the error is a RequestError.
func IsRequestError(err error) bool {
	var requestErr *RequestError
	return errors.As(err, &requestErr)
}

// TimeError indicates a clock reading that cannot be interpreted relative to
// its reference point. Raised when the current time precedes the Unix epoch
// and when the clock has gone backwards past the recorded fetch time.
type TimeError struct {
	Message string
}

func (e *TimeError) Error() string {
	return fmt.Sprintf("time error: %s", e.Message)
}

// NewTimeError creates a TimeError.
func NewTimeError(message string) *TimeError {
	return &TimeError{Message: message}
}

// IsTimeError returns true if the error is a TimeError.
func IsTimeError(err error) bool {
	var timeErr *TimeError
	return errors.As(err, &timeErr)
}
