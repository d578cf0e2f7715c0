package ledger

import (
	"errors"
	"fmt"
)

// Code classifies every failure a trade request can surface.
type Code string

const (
	CodeNotFound             Code = "NOT_FOUND"
	CodeValidationRejected   Code = "VALIDATION_REJECTED"
	CodeInsufficientHoldings Code = "INSUFFICIENT_HOLDINGS"
	CodeExternalUnavailable  Code = "EXTERNAL_UNAVAILABLE"
	CodeInternal             Code = "INTERNAL"
)

// Rejection reasons attached to CodeValidationRejected.
const (
	ReasonInvalidQuantity      = "invalid quantity"
	ReasonInsufficientFunds    = "insufficient funds"
	ReasonInsufficientHoldings = "insufficient holdings"
	ReasonMissingPrice         = "missing price"
)

type Error struct {
	Code   Code
	Reason string
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Reason, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(code Code, reason string, cause error) *Error {
	return &Error{Code: code, Reason: reason, cause: cause}
}

func rejected(reason string) *Error {
	return &Error{Code: CodeValidationRejected, Reason: reason}
}

// CodeOf extracts the taxonomy code from any error returned by the ledger;
// everything untyped counts as internal.
func CodeOf(err error) Code {
	var le *Error
	if errors.As(err, &le) {
		return le.Code
	}
	return CodeInternal
}
