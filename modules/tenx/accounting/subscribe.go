package accounting

import (
	"context"
	"time"

	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/referral"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/settlement"
	"github.com/RishalEP/tenx-blockchain/pkg/logger"
	"github.com/RishalEP/tenx-blockchain/pkg/logger/slogx"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/uint128"
)

// Subscribe settles a paid subscription and publishes its Subscription event.
func (c *Core) Subscribe(ctx context.Context, p settlement.SubscribeParams) (*settlement.Receipt, error) {
	var receipt *settlement.Receipt
	err := c.call(ctx, func(ctx context.Context) ([]entity.Event, error) {
		if c.paused {
			return nil, errors.WithStack(entity.ErrPaused)
		}
		if p.Discount > c.maxDiscount {
			return nil, errors.Wrapf(entity.ErrInvalidDiscount, "discount %d exceeds %d", p.Discount, c.maxDiscount)
		}
		var err error
		receipt, err = c.engine.Subscribe(ctx, p)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		c.metrics.setFailedTransfers(c.engine.FailedTransfers())
		return []entity.Event{receipt.Event}, nil
	})
	c.metrics.observeSettlement(p.Token, receipt, err)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	logger.InfoContext(ctx, "Subscription settled",
		slogx.Address("payee", p.Payee),
		slogx.Address("token", p.Token),
		slogx.Amount("amount", p.Amount),
		slogx.Amount("failed", receipt.Failed),
		slogx.Time("valid_until", receipt.Event.ValidUntil),
	)
	return receipt, nil
}

// Quote returns the amount of token due for a months plan after discount.
func (c *Core) Quote(ctx context.Context, months uint32, token common.Address, discount entity.BasisPoints) (uint128.Uint128, error) {
	var amount uint128.Uint128
	err := c.view(ctx, func(ctx context.Context) error {
		if discount > c.maxDiscount {
			return errors.Wrapf(entity.ErrInvalidDiscount, "discount %d exceeds %d", discount, c.maxDiscount)
		}
		var err error
		amount, err = c.oracle.Quote(ctx, c.config, months, token, discount)
		return errors.WithStack(err)
	})
	return amount, errors.WithStack(err)
}

// GrantSubscription extends user by d for free. It works while paused.
func (c *Core) GrantSubscription(ctx context.Context, caller, user common.Address, ref referral.Ref, d time.Duration) (entity.FreeSubscriptionEvent, error) {
	var event entity.FreeSubscriptionEvent
	err := c.adminCall(ctx, caller, func(context.Context) ([]entity.Event, error) {
		var err error
		event, err = c.engine.GrantSubscription(user, ref, d)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		return []entity.Event{event}, nil
	})
	return event, errors.WithStack(err)
}

func (c *Core) CancelSubscription(ctx context.Context, caller, user common.Address) error {
	return c.adminCall(ctx, caller, func(context.Context) ([]entity.Event, error) {
		event, err := c.engine.CancelSubscription(user)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		return []entity.Event{event}, nil
	})
}

func (c *Core) EnableUser(ctx context.Context, caller, user common.Address) error {
	return c.adminCall(ctx, caller, func(context.Context) ([]entity.Event, error) {
		event, err := c.engine.EnableUser(user)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		return []entity.Event{event}, nil
	})
}

func (c *Core) DisableUser(ctx context.Context, caller, user common.Address) error {
	return c.adminCall(ctx, caller, func(context.Context) ([]entity.Event, error) {
		event, err := c.engine.DisableUser(user)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		return []entity.Event{event}, nil
	})
}
