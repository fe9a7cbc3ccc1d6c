// Package configstore holds the admin-mutated tables read by every settlement:
// share holders, referral levels, subscription plans and payment tokens.
package configstore

import (
	"slices"

	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
)

type ShareHolder struct {
	Name       string
	Wallet     common.Address
	Percentage entity.BasisPoints
	Active     bool
}

type Plan struct {
	Months   uint32
	PriceUSD uint64
	Active   bool
}

type PaymentToken struct {
	Address   common.Address
	PriceFeed string
	Active    bool
}

// Snapshot is a consistent copy of the tables a settlement reads.
type Snapshot struct {
	// ShareHolders are the active share holders in table order.
	ShareHolders       []ShareHolder
	ReferralLevels     []entity.BasisPoints
	ReinvestmentWallet common.Address
}

type Info struct {
	TotalShareHolders       int
	TotalReferralLevels     int
	ShareHolderLimit        int
	ReferralLevelLimit      int
	ShareHolderPercentage   entity.BasisPoints
	ReferralLevelPercentage entity.BasisPoints
	ReinvestmentWallet      common.Address
}

// Store is not safe for concurrent use. Callers are expected to be authorized
// before any mutation reaches it.
type Store struct {
	// shareHolders is an arena: entries are deactivated, never removed, so
	// indexes stay stable.
	shareHolders       []ShareHolder
	referralLevels     []entity.BasisPoints
	plans              map[uint32]*Plan
	tokens             map[common.Address]*PaymentToken
	reinvestmentWallet common.Address
	shareHolderLimit   int
	referralLevelLimit int
}

func New(shareHolderLimit, referralLevelLimit int, reinvestmentWallet common.Address) (*Store, error) {
	if shareHolderLimit <= 0 || referralLevelLimit <= 0 {
		return nil, errors.Wrap(entity.ErrInvalidArgument, "limits must be positive")
	}
	if reinvestmentWallet == (common.Address{}) {
		return nil, errors.Wrap(entity.ErrInvalidArgument, "reinvestment wallet is required")
	}
	return &Store{
		plans:              make(map[uint32]*Plan),
		tokens:             make(map[common.Address]*PaymentToken),
		reinvestmentWallet: reinvestmentWallet,
		shareHolderLimit:   shareHolderLimit,
		referralLevelLimit: referralLevelLimit,
	}, nil
}

// Snapshot returns a copy that later mutations do not affect.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		ShareHolders:       lo.Filter(s.shareHolders, func(h ShareHolder, _ int) bool { return h.Active }),
		ReferralLevels:     slices.Clone(s.referralLevels),
		ReinvestmentWallet: s.reinvestmentWallet,
	}
}

func (s *Store) Info() Info {
	return Info{
		TotalShareHolders:       s.activeShareHolders(),
		TotalReferralLevels:     len(s.referralLevels),
		ShareHolderLimit:        s.shareHolderLimit,
		ReferralLevelLimit:      s.referralLevelLimit,
		ShareHolderPercentage:   s.activeSharePercentage(-1, 0),
		ReferralLevelPercentage: sumBasisPoints(s.referralLevels),
		ReinvestmentWallet:      s.reinvestmentWallet,
	}
}

func (s *Store) ReinvestmentWallet() common.Address {
	return s.reinvestmentWallet
}

func (s *Store) SetReinvestmentWallet(wallet common.Address) error {
	if wallet == (common.Address{}) {
		return errors.Wrap(entity.ErrInvalidArgument, "reinvestment wallet is zero")
	}
	if wallet == s.reinvestmentWallet {
		return errors.WithStack(entity.ErrNoChange)
	}
	s.reinvestmentWallet = wallet
	return nil
}

func sumBasisPoints(values []entity.BasisPoints) entity.BasisPoints {
	var sum uint32
	for _, v := range values {
		sum += uint32(v)
	}
	return entity.BasisPoints(min(sum, uint32(^entity.BasisPoints(0))))
}
