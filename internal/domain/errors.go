package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	ErrMissingCredentials = errors.New("missing credentials")
	ErrUnknownMessageType = errors.New("unknown message type")
	ErrEmptyBatch         = errors.New("empty batch")
)

// ValidationError reports a bad input field. It is always raised before any
// network call and is never retried.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: field %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Err: fmt.Errorf(format, args...)}
}

// ConfigError represents a configuration-related error, raised before any send.
type ConfigError struct {
	Name string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Name, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// DeliveryError represents a send that exhausted its retry budget or was
// rejected outright by the platform.
type DeliveryError struct {
	Recipient string
	Attempts  int
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery: recipient=%s attempts=%d: %v", e.Recipient, e.Attempts, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// RoutingError represents a failure while routing an inbound webhook item,
// such as a goodbye message that could not be sent.
type RoutingError struct {
	Recipient string
	Op        string // operation that failed
	Err       error  // underlying error
}

func (e *RoutingError) Error() string {
	if e.Recipient != "" {
		return fmt.Sprintf("routing: %s: recipient=%s: %v", e.Op, e.Recipient, e.Err)
	}
	return fmt.Sprintf("routing: %s: %v", e.Op, e.Err)
}

func (e *RoutingError) Unwrap() error {
	return e.Err
}
