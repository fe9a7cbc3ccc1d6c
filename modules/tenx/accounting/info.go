package accounting

import (
	"context"
	"time"

	"github.com/RishalEP/tenx-blockchain/modules/tenx/configstore"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/uint128"
)

type Info struct {
	configstore.Info
	FailedTransfers uint128.Uint128
	Paused          bool
	MaxDiscount     entity.BasisPoints
	TotalUsers      int
	LastSeq         uint64
}

func (c *Core) Info(ctx context.Context) (Info, error) {
	var info Info
	err := c.view(ctx, func(context.Context) error {
		info = Info{
			Info:            c.config.Info(),
			FailedTransfers: c.engine.FailedTransfers(),
			Paused:          c.paused,
			MaxDiscount:     c.maxDiscount,
			TotalUsers:      c.users.Len(),
			LastSeq:         c.seq,
		}
		return nil
	})
	return info, errors.WithStack(err)
}

type UserInfo struct {
	Address              common.Address
	IsSubscriptionActive bool
	ReferralID           uint64
	ReferrerID           uint64
	Referrer             common.Address
	ValidUntil           time.Time
	Suspended            bool
}

// UserInfo returns the subscription and referral view of user.
func (c *Core) UserInfo(ctx context.Context, user common.Address) (UserInfo, error) {
	var info UserInfo
	err := c.view(ctx, func(context.Context) error {
		u := c.users.Get(user)
		if u == nil {
			return errors.Wrapf(entity.ErrUserNotFound, "%s", user)
		}
		info = UserInfo{
			Address:              u.Address,
			IsSubscriptionActive: u.IsSubscriptionActive(c.now()),
			ReferralID:           u.ReferralID,
			ValidUntil:           u.ValidUntil,
			Suspended:            u.Suspended,
		}
		if r := c.referrals.Referrer(u); r != nil {
			info.ReferrerID = r.ReferralID
			info.Referrer = r.Address
		}
		return nil
	})
	return info, errors.WithStack(err)
}

func (c *Core) Plans(ctx context.Context) ([]configstore.Plan, error) {
	var plans []configstore.Plan
	err := c.view(ctx, func(context.Context) error {
		plans = c.config.Plans()
		return nil
	})
	return plans, errors.WithStack(err)
}

func (c *Core) PaymentTokens(ctx context.Context) ([]configstore.PaymentToken, error) {
	var tokens []configstore.PaymentToken
	err := c.view(ctx, func(context.Context) error {
		tokens = c.config.PaymentTokens()
		return nil
	})
	return tokens, errors.WithStack(err)
}

// ShareHolders returns every share holder, inactive ones included, in table order.
func (c *Core) ShareHolders(ctx context.Context) ([]configstore.ShareHolder, error) {
	var holders []configstore.ShareHolder
	err := c.view(ctx, func(context.Context) error {
		holders = c.config.ShareHolders()
		return nil
	})
	return holders, errors.WithStack(err)
}

func (c *Core) ReferralLevels(ctx context.Context) ([]entity.BasisPoints, error) {
	var levels []entity.BasisPoints
	err := c.view(ctx, func(context.Context) error {
		levels = c.config.ReferralLevels()
		return nil
	})
	return levels, errors.WithStack(err)
}

// Users returns copies of the known users among addrs.
func (c *Core) Users(ctx context.Context, addrs ...common.Address) ([]entity.User, error) {
	var users []entity.User
	err := c.view(ctx, func(context.Context) error {
		for _, addr := range addrs {
			if u := c.users.Get(addr); u != nil {
				users = append(users, *u)
			}
		}
		return nil
	})
	return users, errors.WithStack(err)
}
