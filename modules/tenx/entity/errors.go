package entity

import (
	"slices"

	"github.com/RishalEP/tenx-blockchain/common/errs"
)

// domainError is a sentinel that also matches its error categories, so both
// errors.Is(err, ErrPlanNotActive) and errors.Is(err, errs.State) hold.
type domainError struct {
	msg   string
	kinds []errs.ErrorKind
}

func newError(msg string, kinds ...errs.ErrorKind) error {
	return &domainError{msg: msg, kinds: kinds}
}

func (e *domainError) Error() string {
	return e.msg
}

func (e *domainError) Is(target error) bool {
	kind, ok := target.(errs.ErrorKind)
	return ok && slices.Contains(e.kinds, kind)
}

// Validation errors.
var (
	ErrInvalidArgument   = newError("invalid argument", errs.Validation)
	ErrInvalidPercentage = newError("invalid percentage", errs.Validation)
	ErrInvalidDiscount   = newError("invalid discount", errs.Validation)
	ErrCapacityExceeded  = newError("share holder capacity exceeded", errs.Validation)
	ErrLimitExceeded     = newError("referral level limit exceeded", errs.Validation)
)

// State errors.
var (
	ErrNotFound       = newError("not found", errs.NotFound, errs.State)
	ErrUserNotFound   = newError("user not found", errs.NotFound, errs.State)
	ErrAlreadyExists  = newError("already exists", errs.State)
	ErrAlreadyInState = newError("already in requested state", errs.State)
	ErrNoChange       = newError("no change", errs.State)
	ErrPlanNotActive  = newError("subscription plan not active", errs.State)
	ErrTokenNotActive = newError("payment token not active", errs.State)
	ErrUserSuspended  = newError("user suspended", errs.State)
	ErrPaused         = newError("subscriptions paused", errs.State)
	ErrReentrantCall  = newError("reentrant call", errs.State)
)

// Authorization errors.
var ErrUnauthorized = newError("caller is not admin or manager", errs.Unauthorized)

// Referral errors.
var (
	ErrInvalidReferrer = newError("invalid referrer", errs.Referral)
	ErrSelfReferral    = newError("self referral", errs.Referral)
)

// Payment errors.
var (
	ErrSlippageExceeded      = newError("amount below current quote", errs.Payment)
	ErrAmountMismatch        = newError("tendered value does not match amount", errs.Payment)
	ErrAllowanceInsufficient = newError("token transfer in failed", errs.Payment)
)

// ErrTransferFailed is a failed outgoing token transfer. It aborts the settlement.
var ErrTransferFailed = newError("token transfer failed", errs.TransferFailure)
