package priceoracle

import (
	"context"
	"net/http"
	"net/url"

	"github.com/RishalEP/tenx-blockchain/common/errs"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/RishalEP/tenx-blockchain/pkg/decimals"
	"github.com/RishalEP/tenx-blockchain/pkg/httpclient"
	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

var _ PriceFeed = (*HTTPFeed)(nil)

// HTTPFeed reads rates from a price service answering
// GET {base}/rates/{feed} with {"unitsPerUsd": "<decimal>"}.
type HTTPFeed struct {
	client    *httpclient.Client
	precision uint8
}

func NewHTTPFeed(client *httpclient.Client, precision uint8) *HTTPFeed {
	if precision == 0 {
		precision = DefaultPrecision
	}
	return &HTTPFeed{client: client, precision: precision}
}

type rateResponse struct {
	UnitsPerUSD decimal.Decimal `json:"unitsPerUsd"`
}

func (f *HTTPFeed) GetRate(ctx context.Context, feed string) (Rate, error) {
	resp, err := f.client.Get(ctx, "/rates/"+url.PathEscape(feed), nil)
	if err != nil {
		return Rate{}, errors.Wrapf(err, "can't fetch price feed %q", feed)
	}
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return Rate{}, errors.Wrapf(entity.ErrNotFound, "price feed %q", feed)
	default:
		return Rate{}, errors.Wrapf(errs.InternalError, "price feed %q answered %d", feed, resp.StatusCode)
	}

	var body rateResponse
	if err := resp.UnmarshalBody(&body); err != nil {
		return Rate{}, errors.WithStack(err)
	}
	if !body.UnitsPerUSD.IsPositive() {
		return Rate{}, errors.Wrapf(entity.ErrInvalidArgument, "price feed %q published %s", feed, body.UnitsPerUSD)
	}
	value, err := decimals.ToUint128(body.UnitsPerUSD, f.precision)
	if err != nil {
		return Rate{}, errors.Wrapf(err, "price feed %q", feed)
	}
	return Rate{Value: value, Decimals: f.precision}, nil
}
