package priceoracle

import (
	"context"
	"sync"

	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/RishalEP/tenx-blockchain/pkg/decimals"
	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

// DefaultPrecision is the number of rate decimals kept by [StaticFeed.SetDecimal].
const DefaultPrecision = 8

var _ PriceFeed = (*StaticFeed)(nil)

// StaticFeed serves operator supplied rates, e.g. from the config file.
type StaticFeed struct {
	mu    sync.RWMutex
	rates map[string]Rate
}

func NewStaticFeed() *StaticFeed {
	return &StaticFeed{rates: make(map[string]Rate)}
}

func (f *StaticFeed) GetRate(_ context.Context, feed string) (Rate, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	rate, ok := f.rates[feed]
	if !ok {
		return Rate{}, errors.Wrapf(entity.ErrNotFound, "price feed %q", feed)
	}
	return rate, nil
}

func (f *StaticFeed) Set(feed string, rate Rate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rates[feed] = rate
}

// SetDecimal stores a rate given as token base units per USD, e.g.
// "3333333333333333.33333333" wei for a token priced at 300 USD. Digits
// beyond precision are truncated.
func (f *StaticFeed) SetDecimal(feed string, unitsPerUSD string, precision uint8) error {
	value, err := decimal.NewFromString(unitsPerUSD)
	if err != nil {
		return errors.Wrapf(entity.ErrInvalidArgument, "rate %q of feed %q", unitsPerUSD, feed)
	}
	if !value.IsPositive() {
		return errors.Wrapf(entity.ErrInvalidArgument, "rate of feed %q must be positive", feed)
	}
	scaled, err := decimals.ToUint128(value, precision)
	if err != nil {
		return errors.Wrapf(err, "rate of feed %q", feed)
	}
	if scaled.IsZero() {
		return errors.Wrapf(entity.ErrInvalidArgument, "rate of feed %q truncates to zero at precision %d", feed, precision)
	}
	f.Set(feed, Rate{Value: scaled, Decimals: precision})
	return nil
}
