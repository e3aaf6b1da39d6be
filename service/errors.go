package service

import (
	"errors"
	"fmt"
)

// The engine surfaces typed failures so callers can distinguish recoverable
// conditions without parsing messages. Every error carries a short machine
// code for the API layer.

// ValidationError reports malformed or out-of-range input. Detected before
// any mutation.
type ValidationError struct {
	Code string
	Msg  string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(code, format string, args ...any) error {
	return &ValidationError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// StateConflictError reports an operation not permitted in the account's
// current state (activation threshold not met, Pro required, nothing to
// claim).
type StateConflictError struct {
	Code string
	Msg  string
}

func (e *StateConflictError) Error() string { return e.Msg }

func stateConflictf(code, format string, args ...any) error {
	return &StateConflictError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// InsufficientBalanceError reports a debit exceeding the available bucket
// balance.
type InsufficientBalanceError struct {
	Bucket    string
	Available int64
	Requested int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s balance: have %d, need %d", e.Bucket, e.Available, e.Requested)
}

// NotFoundError reports that a referenced account or referral code does not
// resolve.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.Key)
}

// ConcurrencyConflictError reports that an atomic update could not be
// applied because the underlying state changed between read and write. The
// caller should retry the whole operation.
type ConcurrencyConflictError struct {
	Msg string
}

func (e *ConcurrencyConflictError) Error() string { return e.Msg }

// Error codes used across services.
const (
	CodeBelowActivationThreshold = "below_activation_threshold"
	CodeProStatusRequired        = "pro_status_required"
	CodeBasicStatusRequired      = "basic_status_required"
	CodeNothingToClaim           = "nothing_to_claim"
	CodeAlreadyRegistered        = "already_registered"
	CodeInvalidNumber            = "invalid_number"
	CodeInvalidAmount            = "invalid_amount"
	CodeInvalidTier              = "invalid_tier"
	CodeMissingField             = "missing_field"
)

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStateConflict reports whether err is a StateConflictError.
func IsStateConflict(err error) bool {
	var sc *StateConflictError
	return errors.As(err, &sc)
}

// IsInsufficientBalance reports whether err is an InsufficientBalanceError.
func IsInsufficientBalance(err error) bool {
	var ib *InsufficientBalanceError
	return errors.As(err, &ib)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConcurrencyConflict reports whether err is a ConcurrencyConflictError.
func IsConcurrencyConflict(err error) bool {
	var cc *ConcurrencyConflictError
	return errors.As(err, &cc)
}
