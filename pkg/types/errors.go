package types

import (
	"errors"
	"fmt"
)

// Input validation errors
var (
	// ErrEmptyInput is returned for zero-length text before any network call.
	ErrEmptyInput = errors.New("input text cannot be empty")

	// ErrEmptyBatch is returned for a batch without items before any work starts.
	ErrEmptyBatch = errors.New("batch input cannot be empty")
)

// MalformedConfigError is returned when a client configuration matches none
// of the accepted syntaxes. Registration has no effect when it is returned.
type MalformedConfigError struct {
	Reason string
	Err    error
}

func (e *MalformedConfigError) Error() string {
	msg := "malformed client configuration"
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support for MalformedConfigError.
// This allows errors.Is(err, &MalformedConfigError{}) to work with wrapped errors.
func (e *MalformedConfigError) Is(target error) bool {
	_, ok := target.(*MalformedConfigError)
	return ok
}

// NewMalformedConfigError creates a MalformedConfigError with a formatted reason.
func NewMalformedConfigError(format string, args ...any) *MalformedConfigError {
	return &MalformedConfigError{Reason: fmt.Sprintf(format, args...)}
}

// ClientNotRegisteredError is returned when a name is absent from the
// classification the calling function requires.
type ClientNotRegisteredError struct {
	Name     string
	Function string
}

func (e *ClientNotRegisteredError) Error() string {
	if e.Function == "" {
		return fmt.Sprintf("client with name %q was not registered", e.Name)
	}
	return fmt.Sprintf("client with name %q was not registered for %s", e.Name, e.Function)
}

// Is implements errors.Is support for ClientNotRegisteredError.
func (e *ClientNotRegisteredError) Is(target error) bool {
	_, ok := target.(*ClientNotRegisteredError)
	return ok
}

// MalformedImageError is returned when an image payload fails structural
// validation before it is sent to a provider.
type MalformedImageError struct {
	Reason string
}

func (e *MalformedImageError) Error() string {
	return "malformed image: " + e.Reason
}

// Is implements errors.Is support for MalformedImageError.
func (e *MalformedImageError) Is(target error) bool {
	_, ok := target.(*MalformedImageError)
	return ok
}

// ProviderErrorKind classifies a ProviderError.
type ProviderErrorKind string

const (
	// ProviderUnsupported means the descriptor names a provider with no transport.
	ProviderUnsupported ProviderErrorKind = "unsupported_provider"
	// ProviderMissingCredential means no credential was configured or found in the environment.
	ProviderMissingCredential ProviderErrorKind = "missing_credential"
	// ProviderRequestFailed covers transport, HTTP and authentication failures.
	ProviderRequestFailed ProviderErrorKind = "request_failed"
	// ProviderMalformedResponse means the provider answered without a usable payload.
	ProviderMalformedResponse ProviderErrorKind = "malformed_response"
	// ProviderUnavailable means the circuit breaker for the endpoint is open.
	ProviderUnavailable ProviderErrorKind = "unavailable"
)

// ProviderError is returned when a remote call fails or cannot be attempted.
type ProviderError struct {
	Provider ProviderFormat
	Kind     ProviderErrorKind
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("provider %s: %s", e.Provider, e.Kind)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support for ProviderError.
func (e *ProviderError) Is(target error) bool {
	_, ok := target.(*ProviderError)
	return ok
}

// NewProviderError creates a ProviderError wrapping err.
func NewProviderError(provider ProviderFormat, kind ProviderErrorKind, message string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, Message: message, Err: err}
}

// Error kind names reported in batch results and HTTP bodies.
const (
	KindMalformedConfig     = "MalformedConfig"
	KindClientNotRegistered = "ClientNotRegistered"
	KindEmptyInput          = "EmptyInput"
	KindEmptyBatch          = "EmptyBatch"
	KindMalformedImage      = "MalformedImage"
	KindProviderError       = "ProviderError"
	KindInternal            = "Internal"
)

// ErrorKind maps an error to its taxonomy name. It returns "" for nil.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, &MalformedConfigError{}):
		return KindMalformedConfig
	case errors.Is(err, &ClientNotRegisteredError{}):
		return KindClientNotRegistered
	case errors.Is(err, ErrEmptyInput):
		return KindEmptyInput
	case errors.Is(err, ErrEmptyBatch):
		return KindEmptyBatch
	case errors.Is(err, &MalformedImageError{}):
		return KindMalformedImage
	case errors.Is(err, &ProviderError{}):
		return KindProviderError
	default:
		return KindInternal
	}
}
