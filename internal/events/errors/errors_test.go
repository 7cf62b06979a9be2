package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestCurrencyRequired(t *testing.T) {
	err := CurrencyRequired("req-1")

	if err.Kind != KindCurrencyRequired {
		t.Errorf("expected kind %s, got %s", KindCurrencyRequired, err.Kind)
	}
	if err.Field != "custom_data.currency" {
		t.Errorf("unexpected field %q", err.Field)
	}
	if !strings.Contains(err.Error(), "req-1") {
		t.Errorf("expected error text to carry the request id, got %q", err.Error())
	}
	if err.Message() != "Currency is required when value is provided." {
		t.Errorf("unexpected message %q", err.Message())
	}
}

func TestValidationError_Is(t *testing.T) {
	wrapped := fmt.Errorf("sanitize: %w", CurrencyRequired("req-2"))

	if !errors.Is(wrapped, ErrCurrencyRequired) {
		t.Error("expected wrapped error to match ErrCurrencyRequired")
	}

	var vErr *ValidationError
	if !errors.As(wrapped, &vErr) {
		t.Fatal("expected errors.As to find ValidationError")
	}
	if vErr.CorrelationID != "req-2" {
		t.Errorf("expected correlation id req-2, got %q", vErr.CorrelationID)
	}

	other := &ValidationError{Kind: "Other", Field: "x"}
	if errors.Is(other, ErrCurrencyRequired) {
		t.Error("unrelated kind must not match ErrCurrencyRequired")
	}
}
