package settlement

import (
	"github.com/RishalEP/tenx-blockchain/modules/tenx/configstore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/uint128"
)

type PayoutKind string

const (
	PayoutReferral     PayoutKind = "referral"
	PayoutShareHolder  PayoutKind = "share_holder"
	PayoutReinvestment PayoutKind = "reinvestment"
)

// Payout is one disbursement of a settlement.
type Payout struct {
	Kind PayoutKind

	// Index is the referral level or the share holder position in the snapshot.
	Index     int
	Recipient common.Address
	Amount    uint128.Uint128

	// Skipped marks a referral level whose beneficiary was not eligible.
	Skipped bool

	// Failed marks a native transfer the recipient did not accept.
	Failed bool
}

// Beneficiary is the upline user at one referral level.
type Beneficiary struct {
	Address  common.Address
	Eligible bool
}

type Allocation struct {
	Gross            uint128.Uint128
	Referrals        []Payout
	ShareHolders     []Payout
	Reinvestment     Payout
	TotalReferral    uint128.Uint128
	TotalShareHolder uint128.Uint128
}

// Payouts returns every payout in disbursement order.
func (a Allocation) Payouts() []Payout {
	payouts := make([]Payout, 0, len(a.Referrals)+len(a.ShareHolders)+1)
	payouts = append(payouts, a.Referrals...)
	payouts = append(payouts, a.ShareHolders...)
	return append(payouts, a.Reinvestment)
}

// Split divides gross among the referral upline, the active share holders and
// the reinvestment wallet. Only the first min(len(upline), levels) referral
// levels are considered. An ineligible level pays nothing and its share stays
// in the share holder pool. The reinvestment wallet gets the subtractive
// remainder, so the payouts always sum to gross.
func Split(gross uint128.Uint128, snapshot configstore.Snapshot, upline []Beneficiary) Allocation {
	alloc := Allocation{Gross: gross}

	levels := min(len(upline), len(snapshot.ReferralLevels))
	for i := 0; i < levels; i++ {
		payout := Payout{
			Kind:      PayoutReferral,
			Index:     i,
			Recipient: upline[i].Address,
			Skipped:   !upline[i].Eligible,
			Amount:    uint128.Zero,
		}
		if upline[i].Eligible {
			payout.Amount = snapshot.ReferralLevels[i].Of(gross)
			alloc.TotalReferral = alloc.TotalReferral.Add(payout.Amount)
		}
		alloc.Referrals = append(alloc.Referrals, payout)
	}

	remaining := gross.Sub(alloc.TotalReferral)
	for i, holder := range snapshot.ShareHolders {
		amount := holder.Percentage.Of(remaining)
		alloc.ShareHolders = append(alloc.ShareHolders, Payout{
			Kind:      PayoutShareHolder,
			Index:     i,
			Recipient: holder.Wallet,
			Amount:    amount,
		})
		alloc.TotalShareHolder = alloc.TotalShareHolder.Add(amount)
	}

	alloc.Reinvestment = Payout{
		Kind:      PayoutReinvestment,
		Recipient: snapshot.ReinvestmentWallet,
		Amount:    remaining.Sub(alloc.TotalShareHolder),
	}
	return alloc
}
