package decimals

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/RishalEP/tenx-blockchain/common/errs"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPowerOfTen(t *testing.T) {
	for n := uint8(0); n <= MaxDecimals+2; n++ {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			expected := "1"
			for i := uint8(0); i < n; i++ {
				expected += "0"
			}
			assert.Equal(t, expected, PowerOfTen(n).String())
		})
	}
}

func TestToDecimal(t *testing.T) {
	testcases := []struct {
		amount   uint64
		decimals uint8
		expected string
	}{
		{0, 0, "0"},
		{1, 0, "1"},
		{1, 1, "0.1"},
		{1500, 3, "1.5"},
		{1, 18, "0.000000000000000001"},
		{199, 0, "199"},
	}
	for _, tc := range testcases {
		t.Run(fmt.Sprintf("%d_%d", tc.amount, tc.decimals), func(t *testing.T) {
			assert.Equal(t, tc.expected, ToDecimal(uint128.From64(tc.amount), tc.decimals).String())
		})
	}

	t.Run("above_uint64", func(t *testing.T) {
		amount := uint128.From64(1_000_000_000_000_000_000).Mul64(1000)
		assert.Equal(t, "1000", ToDecimal(amount, 18).String())
	})
}

func TestToUint128(t *testing.T) {
	t.Run("scales", func(t *testing.T) {
		testcases := []struct {
			value    string
			decimals uint8
			expected string
		}{
			{"0", 18, "0"},
			{"1", 0, "1"},
			{"1.5", 3, "1500"},
			{"300.25", 18, "300250000000000000000"},
			{"0.0000001", 3, "0"},
			{"1.9999", 2, "199"},
		}
		for _, tc := range testcases {
			t.Run(tc.value, func(t *testing.T) {
				actual, err := ToUint128(MustFromString(tc.value), tc.decimals)
				require.NoError(t, err)
				assert.Equal(t, tc.expected, actual.String())
			})
		}
	})

	t.Run("negative", func(t *testing.T) {
		_, err := ToUint128(decimal.NewFromInt(-1), 0)
		assert.True(t, errors.Is(err, errs.InvalidArgument))
	})

	t.Run("overflow", func(t *testing.T) {
		_, err := ToUint128(MustFromString("340282366920938463463.374607431768211456"), 18)
		assert.True(t, errors.Is(err, errs.OverflowUint128))

		max, err := ToUint128(MustFromString("340282366920938463463.374607431768211455"), 18)
		require.NoError(t, err)
		assert.True(t, max.Equals(uint128.Max))
	})

	t.Run("too_many_decimals", func(t *testing.T) {
		_, err := ToUint128(decimal.NewFromInt(1), MaxDecimals+1)
		assert.True(t, errors.Is(err, errs.InvalidArgument))
	})
}

func TestParseUint128(t *testing.T) {
	v, err := ParseUint128("2.5", 6)
	require.NoError(t, err)
	assert.Equal(t, "2500000", v.String())

	_, err = ParseUint128("abc", 6)
	assert.True(t, errors.Is(err, errs.InvalidArgument))
}

func TestIsUint128(t *testing.T) {
	assert.True(t, IsUint128(big.NewInt(0)))
	assert.True(t, IsUint128(uint128.Max.Big()))
	assert.False(t, IsUint128(big.NewInt(-1)))
	assert.False(t, IsUint128(new(big.Int).Add(uint128.Max.Big(), big.NewInt(1))))
}
