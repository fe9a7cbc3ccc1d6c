// Package decimals converts between 128-bit base-unit amounts and human
// readable decimal values.
package decimals

import (
	"math/big"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/RishalEP/tenx-blockchain/common/errs"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/constraints"
)

const (
	DefaultDivPrecision = 36

	// MaxDecimals is the largest scale accepted by the conversions. 10^38 is
	// the largest power of ten that fits in 128 bits.
	MaxDecimals = 38
)

func init() {
	decimal.DivisionPrecision = DefaultDivPrecision
}

var ten = decimal.NewFromInt(10)

// powersOfTen holds 10^0 .. 10^MaxDecimals.
var powersOfTen = func() []decimal.Decimal {
	p := make([]decimal.Decimal, MaxDecimals+1)
	p[0] = decimal.NewFromInt(1)
	for i := 1; i <= MaxDecimals; i++ {
		p[i] = p[i-1].Mul(ten)
	}
	return p
}()

// MustFromString convert string to decimal.Decimal. Panic if error
// string must be a valid number, not NaN, Inf or empty string.
func MustFromString(s string) decimal.Decimal {
	return utils.Must(decimal.NewFromString(s))
}

// PowerOfTen returns 10^n.
func PowerOfTen[T constraints.Unsigned](n T) decimal.Decimal {
	if uint64(n) < uint64(len(powersOfTen)) {
		return powersOfTen[n]
	}
	return ten.Pow(decimal.NewFromInt(int64(n)))
}

// ToDecimal scales a base-unit amount down by 10^decimals, e.g. 1500 with 3
// decimals is 1.5.
func ToDecimal(amount uint128.Uint128, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(amount.Big(), -int32(decimals))
}

// ToUint128 scales a decimal value up by 10^decimals and truncates any
// remaining fraction. Negative values and results above 2^128-1 are rejected.
func ToUint128(value decimal.Decimal, decimals uint8) (uint128.Uint128, error) {
	if decimals > MaxDecimals {
		return uint128.Zero, errors.Wrapf(errs.InvalidArgument, "decimals %d exceeds %d", decimals, MaxDecimals)
	}
	if value.IsNegative() {
		return uint128.Zero, errors.Wrapf(errs.InvalidArgument, "negative value %s", value)
	}
	scaled := value.Mul(PowerOfTen(decimals)).BigInt()
	if !IsUint128(scaled) {
		return uint128.Zero, errors.Wrapf(errs.OverflowUint128, "value %s with %d decimals", value, decimals)
	}
	result, err := uint128.FromBig(scaled)
	if err != nil {
		return uint128.Zero, errors.WithStack(err)
	}
	return result, nil
}

// ParseUint128 parses a decimal string like "300.25" into base units.
func ParseUint128(s string, decimals uint8) (uint128.Uint128, error) {
	value, err := decimal.NewFromString(s)
	if err != nil {
		return uint128.Zero, errors.Wrapf(errs.InvalidArgument, "invalid decimal %q", s)
	}
	return ToUint128(value, decimals)
}

var maxUint128 = uint128.Max.Big()

// IsUint128 reports whether b fits in 128 bits without sign.
func IsUint128(b *big.Int) bool {
	return b.Sign() >= 0 && b.Cmp(maxUint128) <= 0
}
