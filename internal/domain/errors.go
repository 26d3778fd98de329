package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// RetriableError defines an interface for errors that can be retried.
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable.
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// ConfigError represents a configuration error (never retriable).
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) IsRetriable() bool {
	return false
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ValidationError reports malformed input: a missing price on a LIMIT
// order, a non-positive quantity, an unknown side/kind, an empty symbol.
// Surfaced to the caller without any book or balance mutation.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Msg)
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Msg: msg}
}

// NotFoundError is returned when a lookup for an order or user id fails.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// AuthorizationError is returned when a cancel request comes from a user
// that does not own the order.
type AuthorizationError struct {
	UserID  string
	OrderID string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("user %s is not authorized to act on order %s", e.UserID, e.OrderID)
}

// InsufficientFundsError is returned by the admission pre-check when a
// buyer's available balance is below the order's estimated cost.
type InsufficientFundsError struct {
	UserID    string
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds for user %s: required %s, available %s",
		e.UserID, e.Required.String(), e.Available.String())
}

// PersistenceError wraps a failure from the order store, trade store, or
// balance port. It aborts the current execute_order/cancel_order call;
// settlement steps committed before the failure stay committed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsRetriable reports false by default: a persistence failure surfaced to
// the caller of execute_order should not be silently retried by the core,
// since retrying could double-apply balance deltas already committed for
// earlier trades in the same match.
func (e *PersistenceError) IsRetriable() bool {
	return false
}

func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

// ConcurrencyError signals an invariant violation that should be
// impossible if per-symbol lock discipline is respected. It is a
// programming error, not an expected runtime condition.
type ConcurrencyError struct {
	Msg string
}

func (e *ConcurrencyError) Error() string {
	return "concurrency invariant violated: " + e.Msg
}

func NewConcurrencyError(msg string) *ConcurrencyError {
	return &ConcurrencyError{Msg: msg}
}

// IsValidationError reports whether err (or something it wraps) is a
// ValidationError.
func IsValidationError(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// IsNotFound reports whether err (or something it wraps) is a NotFoundError.
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// IsAuthorizationError reports whether err is an AuthorizationError.
func IsAuthorizationError(err error) bool {
	var e *AuthorizationError
	return errors.As(err, &e)
}

// IsInsufficientFunds reports whether err is an InsufficientFundsError.
func IsInsufficientFunds(err error) bool {
	var e *InsufficientFundsError
	return errors.As(err, &e)
}

// IsPersistenceError reports whether err is a PersistenceError.
func IsPersistenceError(err error) bool {
	var e *PersistenceError
	return errors.As(err, &e)
}

// IsConcurrencyError reports whether err is a ConcurrencyError.
func IsConcurrencyError(err error) bool {
	var e *ConcurrencyError
	return errors.As(err, &e)
}
