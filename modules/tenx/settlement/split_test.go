package settlement

import (
	"math/rand"
	"testing"

	"github.com/RishalEP/tenx-blockchain/modules/tenx/configstore"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/uint128"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	walletA      = common.HexToAddress("0xa1")
	walletB      = common.HexToAddress("0xa2")
	walletC      = common.HexToAddress("0xa3")
	walletD      = common.HexToAddress("0xa4")
	reinvestment = common.HexToAddress("0xaa")
	referrer     = common.HexToAddress("0xf1")
)

func scenarioSnapshot() configstore.Snapshot {
	return configstore.Snapshot{
		ShareHolders: []configstore.ShareHolder{
			{Wallet: walletA, Percentage: 3000, Active: true},
			{Wallet: walletB, Percentage: 3200, Active: true},
			{Wallet: walletC, Percentage: 800, Active: true},
			{Wallet: walletD, Percentage: 800, Active: true},
		},
		ReferralLevels:     []entity.BasisPoints{1000, 800, 600, 400},
		ReinvestmentWallet: reinvestment,
	}
}

func amounts(payouts []Payout) []uint64 {
	out := make([]uint64, len(payouts))
	for i, p := range payouts {
		out[i] = p.Amount.Big().Uint64()
	}
	return out
}

func total(payouts []Payout) uint128.Uint128 {
	sum := uint128.Zero
	for _, p := range payouts {
		sum = sum.Add(p.Amount)
	}
	return sum
}

func TestSplitScenarios(t *testing.T) {
	gross := uint128.From64(1000)

	t.Run("active_referrer", func(t *testing.T) {
		alloc := Split(gross, scenarioSnapshot(), []Beneficiary{{Address: referrer, Eligible: true}})
		assert.Equal(t, []uint64{100}, amounts(alloc.Referrals))
		assert.Equal(t, []uint64{270, 288, 72, 72}, amounts(alloc.ShareHolders))
		assert.Equal(t, uint64(702), alloc.TotalShareHolder.Big().Uint64())
		assert.Equal(t, uint64(198), alloc.Reinvestment.Amount.Big().Uint64())
		assert.Equal(t, reinvestment, alloc.Reinvestment.Recipient)
	})

	t.Run("suspended_referrer", func(t *testing.T) {
		alloc := Split(gross, scenarioSnapshot(), []Beneficiary{{Address: referrer, Eligible: false}})
		require.Len(t, alloc.Referrals, 1)
		assert.True(t, alloc.Referrals[0].Skipped)
		assert.True(t, alloc.TotalReferral.IsZero())
		assert.Equal(t, []uint64{300, 320, 80, 80}, amounts(alloc.ShareHolders))
		assert.Equal(t, uint64(220), alloc.Reinvestment.Amount.Big().Uint64())
	})

	t.Run("no_referrer", func(t *testing.T) {
		alloc := Split(gross, scenarioSnapshot(), nil)
		assert.Empty(t, alloc.Referrals)
		assert.Equal(t, []uint64{300, 320, 80, 80}, amounts(alloc.ShareHolders))
		assert.Equal(t, uint64(220), alloc.Reinvestment.Amount.Big().Uint64())
	})

	t.Run("skipped_level_goes_to_pool_not_next_level", func(t *testing.T) {
		upline := []Beneficiary{
			{Address: common.HexToAddress("0x1"), Eligible: true},
			{Address: common.HexToAddress("0x2"), Eligible: false},
			{Address: common.HexToAddress("0x3"), Eligible: true},
		}
		alloc := Split(gross, scenarioSnapshot(), upline)
		assert.Equal(t, []uint64{100, 0, 60}, amounts(alloc.Referrals))
		// remaining 840
		assert.Equal(t, []uint64{252, 268, 67, 67}, amounts(alloc.ShareHolders))
		assert.Equal(t, uint64(840-654), alloc.Reinvestment.Amount.Big().Uint64())
	})

	t.Run("upline_longer_than_levels", func(t *testing.T) {
		upline := make([]Beneficiary, 6)
		for i := range upline {
			upline[i] = Beneficiary{Address: common.BigToAddress(common.Big1), Eligible: true}
		}
		alloc := Split(gross, scenarioSnapshot(), upline)
		assert.Equal(t, []uint64{100, 80, 60, 40}, amounts(alloc.Referrals))
	})

	t.Run("dust_goes_to_reinvestment", func(t *testing.T) {
		snap := scenarioSnapshot()
		snap.ShareHolders = []configstore.ShareHolder{
			{Wallet: walletA, Percentage: 3333, Active: true},
			{Wallet: walletB, Percentage: 3333, Active: true},
			{Wallet: walletC, Percentage: 3334, Active: true},
		}
		alloc := Split(uint128.From64(7), snap, nil)
		assert.Equal(t, []uint64{2, 2, 2}, amounts(alloc.ShareHolders))
		assert.Equal(t, uint64(1), alloc.Reinvestment.Amount.Big().Uint64())
	})
}

func TestSplitConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	randomBps := func(n int) []entity.BasisPoints {
		out := make([]entity.BasisPoints, n)
		budget := int(entity.MaxBasisPoints)
		for i := range out {
			v := rng.Intn(budget + 1)
			out[i] = entity.BasisPoints(v)
			budget -= v
		}
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out
	}

	for i := 0; i < 2000; i++ {
		snap := configstore.Snapshot{
			ReferralLevels:     randomBps(rng.Intn(6)),
			ReinvestmentWallet: reinvestment,
		}
		for _, pct := range randomBps(rng.Intn(8)) {
			snap.ShareHolders = append(snap.ShareHolders, configstore.ShareHolder{Wallet: walletA, Percentage: pct, Active: true})
		}
		upline := make([]Beneficiary, rng.Intn(8))
		for j := range upline {
			upline[j] = Beneficiary{Address: referrer, Eligible: rng.Intn(2) == 0}
		}

		gross := uint128.New(rng.Uint64(), rng.Uint64()>>uint(rng.Intn(64)))
		if i%3 == 0 {
			gross = uint128.From64(uint64(rng.Intn(100_000)))
		}

		alloc := Split(gross, snap, upline)
		sum := total(alloc.Referrals).Add(total(alloc.ShareHolders)).Add(alloc.Reinvestment.Amount)
		require.True(t, sum.Equals(gross), "iteration %d: %s != %s", i, sum, gross)
		require.True(t, total(alloc.Referrals).Equals(alloc.TotalReferral))
		require.True(t, total(alloc.ShareHolders).Equals(alloc.TotalShareHolder))
		require.Len(t, alloc.Payouts(), len(alloc.Referrals)+len(alloc.ShareHolders)+1)

		for _, p := range alloc.Referrals {
			if p.Skipped {
				require.True(t, p.Amount.IsZero())
			}
		}
	}
}
