package httphandler

import (
	"time"

	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/referral"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/settlement"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/uint128"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type subscribeRequest struct {
	// Payee defaults to the caller.
	Payee      string `json:"payee" validate:"omitempty,eth_addr"`
	Amount     string `json:"amount" validate:"required,number"`
	Months     uint32 `json:"months" validate:"required"`
	ReferrerID uint64 `json:"referrerId"`
	Referrer   string `json:"referrer" validate:"omitempty,eth_addr"`
	Token      string `json:"token" validate:"omitempty,eth_addr"`
	Discount   uint16 `json:"discount" validate:"lte=10000"`

	// Value is the native value sent along with a native payment.
	Value string `json:"value" validate:"omitempty,number"`
}

type payout struct {
	Kind      settlement.PayoutKind `json:"kind"`
	Index     int                   `json:"index"`
	Recipient common.Address        `json:"recipient"`
	Amount    uint128.Uint128       `json:"amount"`
	Skipped   bool                  `json:"skipped,omitempty"`
	Failed    bool                  `json:"failed,omitempty"`
}

type subscribeResult struct {
	Payer      common.Address  `json:"payer"`
	Payee      common.Address  `json:"payee"`
	Token      common.Address  `json:"token"`
	Months     uint32          `json:"months"`
	Quote      uint128.Uint128 `json:"quote"`
	Amount     uint128.Uint128 `json:"amount"`
	ReferralID uint64          `json:"referralId"`
	ReferrerID uint64          `json:"referrerId"`
	Referrer   common.Address  `json:"referrer"`
	ValidUntil time.Time       `json:"validUntil"`
	Payouts    []payout        `json:"payouts"`
	Failed     uint128.Uint128 `json:"failed"`
}

func (h *HttpHandler) Subscribe(ctx *fiber.Ctx) error {
	var req subscribeRequest
	if err := h.parse(ctx, &req); err != nil {
		return errors.WithStack(err)
	}
	payer, err := parseCaller(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return errors.WithStack(err)
	}
	value, err := parseAmount(req.Value)
	if err != nil {
		return errors.WithStack(err)
	}
	payee := payer
	if req.Payee != "" {
		payee = parseAddress(req.Payee)
	}

	receipt, err := h.core.Subscribe(ctx.UserContext(), settlement.SubscribeParams{
		Payer:    payer,
		Payee:    payee,
		Amount:   amount,
		Months:   req.Months,
		Referrer: referral.Ref{ID: req.ReferrerID, Address: parseAddress(req.Referrer)},
		Token:    parseAddress(req.Token),
		Discount: entity.BasisPoints(req.Discount),
		Tendered: value,
	})
	if err != nil {
		return errors.Wrap(err, "error during Subscribe")
	}
	return respond(ctx, subscribeResult{
		Payer:      receipt.Payer,
		Payee:      receipt.Payee,
		Token:      receipt.Token,
		Months:     receipt.Months,
		Quote:      receipt.Quote,
		Amount:     receipt.Allocation.Gross,
		ReferralID: receipt.Event.ReferralID,
		ReferrerID: receipt.Event.ReferrerID,
		Referrer:   receipt.Event.Referrer,
		ValidUntil: receipt.Event.ValidUntil,
		Payouts: lo.Map(receipt.Payouts, func(p settlement.Payout, _ int) payout {
			return payout{
				Kind:      p.Kind,
				Index:     p.Index,
				Recipient: p.Recipient,
				Amount:    p.Amount,
				Skipped:   p.Skipped,
				Failed:    p.Failed,
			}
		}),
		Failed: receipt.Failed,
	})
}
