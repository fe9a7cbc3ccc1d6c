package entity

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/uint128"
)

// BasisPoints is a percentage in units of 1/10000.
type BasisPoints uint16

// MaxBasisPoints is 100%.
const MaxBasisPoints BasisPoints = 10000

// Of returns floor(amount * b / 10000). It cannot overflow for b <= 10000.
func (b BasisPoints) Of(amount uint128.Uint128) uint128.Uint128 {
	// split amount so the product never leaves 128 bits
	q, r := amount.QuoRem64(uint64(MaxBasisPoints))
	return q.Mul64(uint64(b)).Add64(r * uint64(b) / uint64(MaxBasisPoints))
}

// MonthDuration is the length of one subscription month.
const MonthDuration = 30 * 24 * time.Hour

// MaxMonths bounds plan lengths and single extensions, keeping every
// extension far below the range of time.Duration.
const MaxMonths uint32 = 1200

// MaxExtension is the longest single extension of a subscription.
const MaxExtension = time.Duration(MaxMonths) * MonthDuration

// NativeToken is the payment token address reserved for the chain's base currency.
var NativeToken = common.Address{}

// IsNative reports whether token is the native currency sentinel.
func IsNative(token common.Address) bool {
	return token == NativeToken
}

// Months returns the subscription length of n months. Callers check n
// against MaxMonths first.
func Months(n uint32) time.Duration {
	return time.Duration(n) * MonthDuration
}

type User struct {
	Address common.Address

	// ReferralID is assigned on first registration, 0 means unregistered.
	ReferralID uint64

	// ReferredBy is the referrer's address, the zero address means none.
	ReferredBy common.Address

	ValidUntil time.Time
	Suspended  bool
}

func (u *User) IsRegistered() bool {
	return u != nil && u.ReferralID != 0
}

// IsSubscriptionActive reports whether the user holds a running, non-suspended subscription at now.
func (u *User) IsSubscriptionActive(now time.Time) bool {
	return u != nil && !u.Suspended && now.Before(u.ValidUntil)
}

// HasReferrer reports whether the user was registered under a referrer.
func (u *User) HasReferrer() bool {
	return u != nil && u.ReferredBy != (common.Address{})
}
