package accounting

import (
	"context"

	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
)

func (c *Core) AddShareHolder(ctx context.Context, caller common.Address, name string, wallet common.Address, percentage entity.BasisPoints) (int, error) {
	var index int
	err := c.adminCall(ctx, caller, func(context.Context) ([]entity.Event, error) {
		var err error
		index, err = c.config.AddShareHolder(name, wallet, percentage)
		return nil, errors.WithStack(err)
	})
	return index, errors.WithStack(err)
}

func (c *Core) UpdateShareHolder(ctx context.Context, caller common.Address, index int, name string, wallet common.Address, percentage entity.BasisPoints) error {
	return c.adminCall(ctx, caller, func(context.Context) ([]entity.Event, error) {
		return nil, errors.WithStack(c.config.UpdateShareHolder(index, name, wallet, percentage))
	})
}

func (c *Core) SetShareHolderStatus(ctx context.Context, caller common.Address, index int, active bool) error {
	return c.adminCall(ctx, caller, func(context.Context) ([]entity.Event, error) {
		return nil, errors.WithStack(c.config.SetShareHolderStatus(index, active))
	})
}

func (c *Core) SetShareHolderLimit(ctx context.Context, caller common.Address, limit int) error {
	return c.adminCall(ctx, caller, func(context.Context) ([]entity.Event, error) {
		return nil, errors.WithStack(c.config.SetShareHolderLimit(limit))
	})
}

func (c *Core) SetReferralLevels(ctx context.Context, caller common.Address, levels []entity.BasisPoints) error {
	return c.adminCall(ctx, caller, func(context.Context) ([]entity.Event, error) {
		return nil, errors.WithStack(c.config.SetReferralLevels(levels))
	})
}

func (c *Core) SetReferralLevelLimit(ctx context.Context, caller common.Address, limit int) error {
	return c.adminCall(ctx, caller, func(context.Context) ([]entity.Event, error) {
		return nil, errors.WithStack(c.config.SetReferralLevelLimit(limit))
	})
}

func (c *Core) AddPlan(ctx context.Context, caller common.Address, months uint32, priceUSD uint64) error {
	return c.adminCall(ctx, caller, func(context.Context) ([]entity.Event, error) {
		if err := c.config.AddPlan(months, priceUSD); err != nil {
			return nil, errors.WithStack(err)
		}
		return []entity.Event{entity.SchemeEvent{Months: months, PriceUSD: priceUSD}}, nil
	})
}

func (c *Core) ChangePlanPrice(ctx context.Context, caller common.Address, months uint32, priceUSD uint64) error {
	return c.adminCall(ctx, caller, func(context.Context) ([]entity.Event, error) {
		if err := c.config.ChangePlanPrice(months, priceUSD); err != nil {
			return nil, errors.WithStack(err)
		}
		return []entity.Event{entity.SchemeEvent{Months: months, PriceUSD: priceUSD}}, nil
	})
}

func (c *Core) SetPlanStatus(ctx context.Context, caller common.Address, months uint32, active bool) error {
	return c.adminCall(ctx, caller, func(context.Context) ([]entity.Event, error) {
		var err error
		if active {
			err = c.config.EnablePlan(months)
		} else {
			err = c.config.DisablePlan(months)
		}
		if err != nil {
			return nil, errors.WithStack(err)
		}
		return []entity.Event{entity.SchemeStatusEvent{Months: months, Active: active}}, nil
	})
}

func (c *Core) AddPaymentToken(ctx context.Context, caller common.Address, token common.Address, priceFeed string) error {
	return c.adminCall(ctx, caller, func(context.Context) ([]entity.Event, error) {
		if err := c.config.AddPaymentToken(token, priceFeed); err != nil {
			return nil, errors.WithStack(err)
		}
		return []entity.Event{entity.PaymentTokenEvent{Token: token, PriceFeed: priceFeed}}, nil
	})
}

func (c *Core) ChangePriceFeed(ctx context.Context, caller common.Address, token common.Address, priceFeed string) error {
	return c.adminCall(ctx, caller, func(context.Context) ([]entity.Event, error) {
		if err := c.config.ChangePriceFeed(token, priceFeed); err != nil {
			return nil, errors.WithStack(err)
		}
		return []entity.Event{entity.PaymentTokenEvent{Token: token, PriceFeed: priceFeed}}, nil
	})
}

func (c *Core) SetPaymentTokenStatus(ctx context.Context, caller common.Address, token common.Address, active bool) error {
	return c.adminCall(ctx, caller, func(context.Context) ([]entity.Event, error) {
		var err error
		if active {
			err = c.config.EnablePaymentToken(token)
		} else {
			err = c.config.DisablePaymentToken(token)
		}
		if err != nil {
			return nil, errors.WithStack(err)
		}
		return []entity.Event{entity.PaymentTokenStatusEvent{Token: token, Active: active}}, nil
	})
}

func (c *Core) SetReinvestmentWallet(ctx context.Context, caller common.Address, wallet common.Address) error {
	return c.adminCall(ctx, caller, func(context.Context) ([]entity.Event, error) {
		if err := c.config.SetReinvestmentWallet(wallet); err != nil {
			return nil, errors.WithStack(err)
		}
		return []entity.Event{entity.ReinvestmentWalletEvent{Wallet: wallet}}, nil
	})
}

// SetPaused pauses or resumes paid subscriptions. Free grants and admin
// operations keep working while paused.
func (c *Core) SetPaused(ctx context.Context, caller common.Address, paused bool) error {
	return c.adminCall(ctx, caller, func(context.Context) ([]entity.Event, error) {
		if c.paused == paused {
			return nil, errors.Wrapf(entity.ErrAlreadyInState, "paused=%t", paused)
		}
		c.paused = paused
		return []entity.Event{entity.PauseEvent{Paused: paused, By: caller}}, nil
	})
}
