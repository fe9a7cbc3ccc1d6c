package settlement

import (
	"time"

	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/referral"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
)

// GrantSubscription extends user by d without moving any funds. The referral
// link is registered exactly as for a paid subscription.
func (e *Engine) GrantSubscription(user common.Address, ref referral.Ref, d time.Duration) (entity.FreeSubscriptionEvent, error) {
	if e.settling {
		return entity.FreeSubscriptionEvent{}, errors.WithStack(entity.ErrReentrantCall)
	}
	if user == (common.Address{}) {
		return entity.FreeSubscriptionEvent{}, errors.Wrap(entity.ErrInvalidArgument, "user is required")
	}
	if d <= 0 || d > entity.MaxExtension {
		return entity.FreeSubscriptionEvent{}, errors.Wrapf(entity.ErrInvalidArgument, "duration %s", d)
	}
	referrer, err := e.Referrals.Resolve(ref, user)
	if err != nil {
		return entity.FreeSubscriptionEvent{}, errors.WithStack(err)
	}

	u := e.Users.GetOrCreate(user)
	e.Referrals.Register(u, referrer)
	validUntil, err := e.Subscriptions.Extend(user, d)
	if err != nil {
		return entity.FreeSubscriptionEvent{}, errors.WithStack(err)
	}

	event := entity.FreeSubscriptionEvent{
		Payee:      user,
		ValidUntil: validUntil,
	}
	if referrer != nil {
		event.ReferrerID = referrer.ReferralID
		event.Referrer = referrer.Address
	}
	return event, nil
}

// CancelSubscription makes user inactive immediately.
func (e *Engine) CancelSubscription(user common.Address) (entity.CancelSubscriptionEvent, error) {
	at, err := e.Subscriptions.Cancel(user)
	if err != nil {
		return entity.CancelSubscriptionEvent{}, errors.WithStack(err)
	}
	return entity.CancelSubscriptionEvent{Payee: user, Timestamp: at}, nil
}

// EnableUser lifts a suspension.
func (e *Engine) EnableUser(user common.Address) (entity.SubscriberStatusEvent, error) {
	if err := e.Subscriptions.Unsuspend(user); err != nil {
		return entity.SubscriberStatusEvent{}, errors.WithStack(err)
	}
	return entity.SubscriberStatusEvent{Payee: user, Active: true}, nil
}

// DisableUser suspends user: it can no longer subscribe and earns no referral payouts.
func (e *Engine) DisableUser(user common.Address) (entity.SubscriberStatusEvent, error) {
	if err := e.Subscriptions.Suspend(user); err != nil {
		return entity.SubscriberStatusEvent{}, errors.WithStack(err)
	}
	return entity.SubscriberStatusEvent{Payee: user, Active: false}, nil
}
