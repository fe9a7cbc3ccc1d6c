// Package subscriptions records per-user subscription validity and suspension.
package subscriptions

import (
	"time"

	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
)

type Ledger struct {
	users *entity.UserStore
	now   func() time.Time
}

func New(users *entity.UserStore, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{users: users, now: now}
}

func (l *Ledger) IsActive(user common.Address) bool {
	return l.users.Get(user).IsSubscriptionActive(l.now())
}

// Extend adds d to the user's validity. A validity still in the future is
// stacked on, otherwise the new period starts now. The user is created if needed.
func (l *Ledger) Extend(user common.Address, d time.Duration) (time.Time, error) {
	until, err := l.ExtendedValidity(user, d)
	if err != nil {
		return time.Time{}, errors.WithStack(err)
	}
	l.users.GetOrCreate(user).ValidUntil = until
	return until, nil
}

// ExtendedValidity returns the validity Extend would set, without changing
// anything. d must be positive and at most entity.MaxExtension.
func (l *Ledger) ExtendedValidity(user common.Address, d time.Duration) (time.Time, error) {
	if d <= 0 || d > entity.MaxExtension {
		return time.Time{}, errors.Wrapf(entity.ErrInvalidArgument, "duration %s", d)
	}
	now := l.now()
	base := now
	if u := l.users.Get(user); u != nil && u.ValidUntil.After(now) {
		base = u.ValidUntil
	}
	return base.Add(d), nil
}

// SetValidity overwrites the user's validity.
func (l *Ledger) SetValidity(user common.Address, until time.Time) error {
	u := l.users.Get(user)
	if u == nil {
		return errors.Wrapf(entity.ErrUserNotFound, "%s", user)
	}
	u.ValidUntil = until
	return nil
}

// Cancel ends the user's subscription now and returns the cancellation time.
func (l *Ledger) Cancel(user common.Address) (time.Time, error) {
	now := l.now()
	if err := l.SetValidity(user, now); err != nil {
		return time.Time{}, errors.WithStack(err)
	}
	return now, nil
}

func (l *Ledger) Suspend(user common.Address) error {
	return l.setSuspended(user, true)
}

func (l *Ledger) Unsuspend(user common.Address) error {
	return l.setSuspended(user, false)
}

func (l *Ledger) setSuspended(user common.Address, suspended bool) error {
	u := l.users.Get(user)
	if u == nil {
		return errors.Wrapf(entity.ErrUserNotFound, "%s", user)
	}
	if u.Suspended == suspended {
		return errors.Wrapf(entity.ErrAlreadyInState, "%s suspended=%t", user, suspended)
	}
	u.Suspended = suspended
	return nil
}
