package httphandler

import (
	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/uint128"
	"github.com/gofiber/fiber/v2"
)

type getQuoteRequest struct {
	Months   uint32 `query:"months" validate:"required"`
	Token    string `query:"token" validate:"omitempty,eth_addr"`
	Discount uint16 `query:"discount" validate:"lte=10000"`
}

type getQuoteResult struct {
	Months   uint32             `json:"months"`
	Token    common.Address     `json:"token"`
	Discount entity.BasisPoints `json:"discount"`
	Amount   uint128.Uint128    `json:"amount"`
}

func (h *HttpHandler) GetQuote(ctx *fiber.Ctx) error {
	var req getQuoteRequest
	if err := h.parse(ctx, &req); err != nil {
		return errors.WithStack(err)
	}

	token := parseAddress(req.Token)
	quote, err := h.core.Quote(ctx.UserContext(), req.Months, token, entity.BasisPoints(req.Discount))
	if err != nil {
		return errors.Wrap(err, "error during Quote")
	}
	return respond(ctx, getQuoteResult{
		Months:   req.Months,
		Token:    token,
		Discount: entity.BasisPoints(req.Discount),
		Amount:   quote,
	})
}
