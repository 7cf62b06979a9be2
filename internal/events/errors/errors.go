package errors

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindCurrencyRequired Kind = "CurrencyRequired"
)

var (
	// ErrCurrencyRequired matches any ValidationError of kind KindCurrencyRequired via errors.Is.
	ErrCurrencyRequired = errors.New("currency is required when value is provided")

	ErrMissingDestination = errors.New("destination identifier is required")

	ErrMissingCredential = errors.New("access token is required")
)

// ValidationError is a terminal rejection of caller input. It carries enough
// context for the caller to correct the request.
type ValidationError struct {
	Kind          Kind
	Field         string
	CorrelationID string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (request_id=%s)", e.Kind, e.message(), e.CorrelationID)
}

func (e *ValidationError) Is(target error) bool {
	return e.Kind == KindCurrencyRequired && target == ErrCurrencyRequired
}

// Message is the caller-facing description.
func (e *ValidationError) Message() string {
	return e.message()
}

func (e *ValidationError) message() string {
	switch e.Kind {
	case KindCurrencyRequired:
		return "Currency is required when value is provided."
	default:
		return fmt.Sprintf("invalid field %s", e.Field)
	}
}

func CurrencyRequired(correlationID string) *ValidationError {
	return &ValidationError{
		Kind:          KindCurrencyRequired,
		Field:         "custom_data.currency",
		CorrelationID: correlationID,
	}
}
