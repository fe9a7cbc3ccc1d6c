// Package priceoracle converts USD plan prices into payment token amounts.
package priceoracle

import (
	"context"

	"github.com/RishalEP/tenx-blockchain/common/errs"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/configstore"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/RishalEP/tenx-blockchain/pkg/decimals"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/uint128"
)

// Rate is the number of token base units worth 1 USD, scaled by 10^Decimals.
type Rate struct {
	Value    uint128.Uint128
	Decimals uint8
}

// PriceFeed looks up the current rate published by a feed.
type PriceFeed interface {
	GetRate(ctx context.Context, feed string) (Rate, error)
}

// Catalog is the read side of the config store needed for quoting.
type Catalog interface {
	ActivePlan(months uint32) (configstore.Plan, error)
	ActivePaymentToken(token common.Address) (configstore.PaymentToken, error)
}

type Adapter struct {
	feed PriceFeed
}

func New(feed PriceFeed) *Adapter {
	return &Adapter{feed: feed}
}

// Quote returns the amount of token due for a months plan after discount.
// Conversion truncates and never rounds up.
func (a *Adapter) Quote(ctx context.Context, catalog Catalog, months uint32, token common.Address, discount entity.BasisPoints) (uint128.Uint128, error) {
	if discount > entity.MaxBasisPoints {
		return uint128.Zero, errors.Wrapf(entity.ErrInvalidDiscount, "%d exceeds %d", discount, entity.MaxBasisPoints)
	}
	plan, err := catalog.ActivePlan(months)
	if err != nil {
		return uint128.Zero, errors.WithStack(err)
	}
	paymentToken, err := catalog.ActivePaymentToken(token)
	if err != nil {
		return uint128.Zero, errors.WithStack(err)
	}
	rate, err := a.feed.GetRate(ctx, paymentToken.PriceFeed)
	if err != nil {
		return uint128.Zero, errors.Wrapf(err, "can't get rate of feed %q", paymentToken.PriceFeed)
	}
	raw, err := Convert(plan.PriceUSD, rate)
	if err != nil {
		return uint128.Zero, errors.WithStack(err)
	}
	return ApplyDiscount(raw, discount), nil
}

// Convert returns priceUSD * rate.Value / 10^rate.Decimals, truncated.
func Convert(priceUSD uint64, rate Rate) (uint128.Uint128, error) {
	if rate.Decimals > decimals.MaxDecimals {
		return uint128.Zero, errors.Wrapf(errs.InvalidArgument, "rate decimals %d exceeds %d", rate.Decimals, decimals.MaxDecimals)
	}
	product, overflow := rate.Value.MulOverflow(uint128.From64(priceUSD))
	if overflow {
		return uint128.Zero, errors.Wrapf(errs.OverflowUint128, "price %d at rate %s", priceUSD, rate.Value)
	}
	divisor, err := decimals.ToUint128(decimals.PowerOfTen(rate.Decimals), 0)
	if err != nil {
		return uint128.Zero, errors.WithStack(err)
	}
	return product.Div(divisor), nil
}

// ApplyDiscount returns amount - floor(amount*discount/10000).
func ApplyDiscount(amount uint128.Uint128, discount entity.BasisPoints) uint128.Uint128 {
	if discount == 0 {
		return amount
	}
	return amount.Sub(discount.Of(amount))
}
