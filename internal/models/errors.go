package models

import "errors"

// Error kinds. Match with errors.Is.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrTransport     = errors.New("transport error")
	ErrInput         = errors.New("input error")
)

// KindError carries one of the error kinds above plus an optional cause.
type KindError struct {
	Kind    error
	Message string
	Err     error
}

func (e *KindError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *KindError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewConfigurationError reports a missing credential or template parameter.
func NewConfigurationError(msg string, err error) error {
	return &KindError{Kind: ErrConfiguration, Message: msg, Err: err}
}

// NewTransportError reports a failed call to the model or relay service.
func NewTransportError(msg string, err error) error {
	return &KindError{Kind: ErrTransport, Message: msg, Err: err}
}

// NewInputError reports malformed user input.
func NewInputError(msg string, err error) error {
	return &KindError{Kind: ErrInput, Message: msg, Err: err}
}

// ErrorCode maps an error to the short code returned by the API.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrInput):
		return "input"
	}
	return "internal"
}
