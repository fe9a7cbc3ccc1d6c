package httphandler

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
)

type getUserRequest struct {
	Address string `params:"address" validate:"required,eth_addr"`
}

type getUserResult struct {
	Address              common.Address `json:"address"`
	IsSubscriptionActive bool           `json:"isSubscriptionActive"`
	ReferralID           uint64         `json:"referralId"`
	ReferrerID           uint64         `json:"referrerId"`
	Referrer             common.Address `json:"referrer"`
	ValidUntil           *time.Time     `json:"validUntil"`
	Suspended            bool           `json:"suspended"`
}

func (h *HttpHandler) GetUser(ctx *fiber.Ctx) error {
	var req getUserRequest
	if err := h.parse(ctx, &req); err != nil {
		return errors.WithStack(err)
	}

	info, err := h.core.UserInfo(ctx.UserContext(), parseAddress(req.Address))
	if err != nil {
		return errors.Wrap(err, "error during UserInfo")
	}
	result := getUserResult{
		Address:              info.Address,
		IsSubscriptionActive: info.IsSubscriptionActive,
		ReferralID:           info.ReferralID,
		ReferrerID:           info.ReferrerID,
		Referrer:             info.Referrer,
		Suspended:            info.Suspended,
	}
	if !info.ValidUntil.IsZero() {
		result.ValidUntil = &info.ValidUntil
	}
	return respond(ctx, result)
}
