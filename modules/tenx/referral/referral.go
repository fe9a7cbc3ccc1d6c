// Package referral assigns referral identities and walks the referrer chain.
package referral

import (
	"iter"

	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
)

// Ref points at a referrer either by referral ID or by address. The zero Ref means no referrer.
type Ref struct {
	ID      uint64
	Address common.Address
}

func ByID(id uint64) Ref {
	return Ref{ID: id}
}

func ByAddress(addr common.Address) Ref {
	return Ref{Address: addr}
}

func (r Ref) IsZero() bool {
	return r.ID == 0 && r.Address == (common.Address{})
}

type Ledger struct {
	users *entity.UserStore
}

func New(users *entity.UserStore) *Ledger {
	return &Ledger{users: users}
}

// Resolve returns the registered user ref points at, or nil for the zero Ref.
func (l *Ledger) Resolve(ref Ref, payee common.Address) (*entity.User, error) {
	if ref.IsZero() {
		return nil, nil
	}
	var referrer *entity.User
	switch {
	case ref.ID != 0:
		referrer = l.users.ByReferralID(ref.ID)
		if referrer != nil && ref.Address != (common.Address{}) && referrer.Address != ref.Address {
			return nil, errors.Wrapf(entity.ErrInvalidReferrer, "referral id %d does not belong to %s", ref.ID, ref.Address)
		}
	default:
		referrer = l.users.Get(ref.Address)
	}
	if !referrer.IsRegistered() {
		return nil, errors.Wrapf(entity.ErrInvalidReferrer, "referrer %+v is not registered", ref)
	}
	if referrer.Address == payee {
		return nil, errors.Wrapf(entity.ErrSelfReferral, "%s", payee)
	}
	return referrer, nil
}

// Register gives user a referral ID on first call. The referral link is only
// written then, so later calls never rewire the tree and no cycle can form.
func (l *Ledger) Register(user *entity.User, referrer *entity.User) bool {
	if user.IsRegistered() {
		return false
	}
	if referrer != nil {
		user.ReferredBy = referrer.Address
	}
	l.users.AssignReferralID(user)
	return true
}

// Referrer returns the registered user that referred user, or nil.
func (l *Ledger) Referrer(user *entity.User) *entity.User {
	if !user.HasReferrer() {
		return nil
	}
	referrer := l.users.Get(user.ReferredBy)
	if !referrer.IsRegistered() {
		return nil
	}
	return referrer
}

// Upline yields (level, user) pairs starting with start at level 0 and
// following referral links. It stops after maxLevels entries or at the first
// unregistered link. It does not mutate state and may be ranged over again.
func (l *Ledger) Upline(start *entity.User, maxLevels int) iter.Seq2[int, *entity.User] {
	return func(yield func(int, *entity.User) bool) {
		current := start
		for level := 0; level < maxLevels; level++ {
			if !current.IsRegistered() {
				return
			}
			if !yield(level, current) {
				return
			}
			current = l.Referrer(current)
		}
	}
}
