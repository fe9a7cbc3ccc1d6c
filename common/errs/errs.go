package errs

// ErrorKind identifies a kind of internal error.
// fully support for errors.Is and errors.As.
type ErrorKind string

const (
	// NotFound is returned when a requested item is not found.
	NotFound        = ErrorKind("Not Found")
	InvalidArgument = ErrorKind("Invalid Argument")
	Unsupported     = ErrorKind("Unsupported")
	InternalError   = ErrorKind("Internal Error")
	Timeout         = ErrorKind("Timeout")
	ConflictSetting = ErrorKind("Conflict Setting")
	OverflowUint64  = ErrorKind("overflow uint64")
	OverflowUint128 = ErrorKind("overflow uint128")
)

// Categories of accounting errors. Domain errors are marked with one of these
// kinds, so callers can branch on the category without knowing every sentinel.
const (
	// Validation is bad input shape: zero amounts, zero durations, out of range percentages.
	Validation = ErrorKind("validation error")

	// State is a precondition on stored state: plan or token not active, already exists, already in requested state.
	State = ErrorKind("state error")

	// Unauthorized is returned when the caller lacks the admin or manager capability.
	Unauthorized = ErrorKind("authorization error")

	// Referral is an invalid or self referrer.
	Referral = ErrorKind("referral error")

	// Payment is an amount mismatch, exceeded slippage or insufficient allowance.
	Payment = ErrorKind("payment error")

	// TransferFailure is a failed outgoing transfer.
	TransferFailure = ErrorKind("transfer failure")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}
