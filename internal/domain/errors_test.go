package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestConfigError(t *testing.T) {
	baseErr := errors.New("missing value")
	err := &ConfigError{Field: "db_path", Err: baseErr}

	if err.IsRetriable() {
		t.Error("ConfigError should never be retriable")
	}

	expected := "config error [db_path]: missing value"
	if err.Error() != expected {
		t.Errorf("Error message = %q, want %q", err.Error(), expected)
	}

	if !errors.Is(err, baseErr) {
		t.Error("Expected error to wrap baseErr")
	}
}

func TestPersistenceError(t *testing.T) {
	baseErr := errors.New("db closed")

	t.Run("wraps and is never retriable", func(t *testing.T) {
		err := NewPersistenceError("save order", baseErr)

		if err.IsRetriable() {
			t.Error("PersistenceError should not be retriable by default")
		}
		if !errors.Is(err, baseErr) {
			t.Error("Expected error to wrap baseErr")
		}
	})

	t.Run("IsRetriable helper defaults false", func(t *testing.T) {
		if IsRetriable(NewPersistenceError("save trade", baseErr)) {
			t.Error("IsRetriable should return false for PersistenceError")
		}
		if IsRetriable(errors.New("plain error")) {
			t.Error("IsRetriable should return false for a plain error")
		}
	})

	t.Run("IsPersistenceError classifies correctly", func(t *testing.T) {
		if !IsPersistenceError(NewPersistenceError("save order", baseErr)) {
			t.Error("expected IsPersistenceError to be true")
		}
		if IsPersistenceError(errors.New("plain error")) {
			t.Error("expected IsPersistenceError to be false for a plain error")
		}
	})
}

func TestErrorTaxonomyClassifiers(t *testing.T) {
	tests := []struct {
		name string
		err  error
		is   func(error) bool
	}{
		{"validation", NewValidationError("price", "must be positive"), IsValidationError},
		{"not found", NewNotFoundError("order", "abc-123"), IsNotFound},
		{"authorization", &AuthorizationError{UserID: "u1", OrderID: "o1"}, IsAuthorizationError},
		{"insufficient funds", &InsufficientFundsError{UserID: "u1", Required: decimal.NewFromInt(10), Available: decimal.Zero}, IsInsufficientFunds},
		{"concurrency", NewConcurrencyError("book invariant broken"), IsConcurrencyError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.is(tt.err) {
				t.Errorf("expected %v to classify as %s", tt.err, tt.name)
			}
			if tt.err.Error() == "" {
				t.Error("expected non-empty error message")
			}
		})
	}
}
