package httphandler

import (
	"context"

	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/referral"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

// statusRequest toggles the entity named by whichever of the path params the route carries.
type statusRequest struct {
	Action string `params:"action" validate:"required,oneof=enable disable pause unpause"`
	Months uint32 `params:"months"`
	Token  string `params:"token" validate:"omitempty,eth_addr"`
	Index  int    `params:"index"`
}

func (r statusRequest) active() bool {
	return r.Action == "enable" || r.Action == "pause"
}

type planRequest struct {
	Months   uint32 `params:"months" json:"months" validate:"required"`
	PriceUSD uint64 `json:"priceUsd" validate:"required"`
}

type planResult struct {
	Months   uint32 `json:"months"`
	PriceUSD uint64 `json:"priceUsd"`
}

func (h *HttpHandler) AddPlan(ctx *fiber.Ctx) error {
	return h.savePlan(ctx, true)
}

func (h *HttpHandler) ChangePlanPrice(ctx *fiber.Ctx) error {
	return h.savePlan(ctx, false)
}

func (h *HttpHandler) savePlan(ctx *fiber.Ctx, add bool) error {
	var req planRequest
	if err := h.parse(ctx, &req); err != nil {
		return errors.WithStack(err)
	}
	by, err := parseCaller(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if add {
		err = h.core.AddPlan(ctx.UserContext(), by, req.Months, req.PriceUSD)
	} else {
		err = h.core.ChangePlanPrice(ctx.UserContext(), by, req.Months, req.PriceUSD)
	}
	if err != nil {
		return errors.Wrapf(err, "can't save %d months plan", req.Months)
	}
	return respond(ctx, planResult{Months: req.Months, PriceUSD: req.PriceUSD})
}

func (h *HttpHandler) SetPlanStatus(ctx *fiber.Ctx) error {
	var req statusRequest
	if err := h.parse(ctx, &req); err != nil {
		return errors.WithStack(err)
	}
	by, err := parseCaller(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := h.core.SetPlanStatus(ctx.UserContext(), by, req.Months, req.active()); err != nil {
		return errors.Wrap(err, "error during SetPlanStatus")
	}
	return respond(ctx, plan{Months: req.Months, Active: req.active()})
}

type paymentTokenRequest struct {
	Token     string `params:"token" json:"token" validate:"omitempty,eth_addr"`
	PriceFeed string `json:"priceFeed" validate:"required"`
}

func (h *HttpHandler) AddPaymentToken(ctx *fiber.Ctx) error {
	return h.savePaymentToken(ctx, true)
}

func (h *HttpHandler) ChangePriceFeed(ctx *fiber.Ctx) error {
	return h.savePaymentToken(ctx, false)
}

func (h *HttpHandler) savePaymentToken(ctx *fiber.Ctx, add bool) error {
	var req paymentTokenRequest
	if err := h.parse(ctx, &req); err != nil {
		return errors.WithStack(err)
	}
	by, err := parseCaller(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	token := parseAddress(req.Token)
	if add {
		err = h.core.AddPaymentToken(ctx.UserContext(), by, token, req.PriceFeed)
	} else {
		err = h.core.ChangePriceFeed(ctx.UserContext(), by, token, req.PriceFeed)
	}
	if err != nil {
		return errors.Wrapf(err, "can't save payment token %s", token)
	}
	return respond(ctx, paymentToken{
		Address:   token,
		Native:    entity.IsNative(token),
		PriceFeed: req.PriceFeed,
		Active:    true,
	})
}

func (h *HttpHandler) SetPaymentTokenStatus(ctx *fiber.Ctx) error {
	var req statusRequest
	if err := h.parse(ctx, &req); err != nil {
		return errors.WithStack(err)
	}
	by, err := parseCaller(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	token := parseAddress(req.Token)
	if err := h.core.SetPaymentTokenStatus(ctx.UserContext(), by, token, req.active()); err != nil {
		return errors.Wrap(err, "error during SetPaymentTokenStatus")
	}
	return respond(ctx, paymentToken{Address: token, Native: entity.IsNative(token), Active: req.active()})
}

type shareHolderRequest struct {
	Index      int    `params:"index"`
	Name       string `json:"name" validate:"required"`
	Wallet     string `json:"wallet" validate:"required,eth_addr"`
	Percentage uint16 `json:"percentage" validate:"required,lte=10000"`
}

func (h *HttpHandler) AddShareHolder(ctx *fiber.Ctx) error {
	var req shareHolderRequest
	if err := h.parse(ctx, &req); err != nil {
		return errors.WithStack(err)
	}
	by, err := parseCaller(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	wallet := parseAddress(req.Wallet)
	index, err := h.core.AddShareHolder(ctx.UserContext(), by, req.Name, wallet, entity.BasisPoints(req.Percentage))
	if err != nil {
		return errors.Wrap(err, "error during AddShareHolder")
	}
	return respond(ctx, shareHolder{
		Index:      index,
		Name:       req.Name,
		Wallet:     wallet,
		Percentage: entity.BasisPoints(req.Percentage),
		Active:     true,
	})
}

func (h *HttpHandler) UpdateShareHolder(ctx *fiber.Ctx) error {
	var req shareHolderRequest
	if err := h.parse(ctx, &req); err != nil {
		return errors.WithStack(err)
	}
	by, err := parseCaller(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	wallet := parseAddress(req.Wallet)
	if err := h.core.UpdateShareHolder(ctx.UserContext(), by, req.Index, req.Name, wallet, entity.BasisPoints(req.Percentage)); err != nil {
		return errors.Wrapf(err, "can't update share holder %d", req.Index)
	}
	holders, err := h.core.ShareHolders(ctx.UserContext())
	if err != nil {
		return errors.Wrap(err, "error during ShareHolders")
	}
	updated := holders[req.Index]
	return respond(ctx, shareHolder{
		Index:      req.Index,
		Name:       updated.Name,
		Wallet:     updated.Wallet,
		Percentage: updated.Percentage,
		Active:     updated.Active,
	})
}

func (h *HttpHandler) SetShareHolderStatus(ctx *fiber.Ctx) error {
	var req statusRequest
	if err := h.parse(ctx, &req); err != nil {
		return errors.WithStack(err)
	}
	by, err := parseCaller(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := h.core.SetShareHolderStatus(ctx.UserContext(), by, req.Index, req.active()); err != nil {
		return errors.Wrapf(err, "can't change share holder %d status", req.Index)
	}
	return respond(ctx, shareHolder{Index: req.Index, Active: req.active()})
}

type limitRequest struct {
	Limit int `json:"limit" validate:"gte=0"`
}

func (h *HttpHandler) SetShareHolderLimit(ctx *fiber.Ctx) error {
	return h.setLimit(ctx, h.core.SetShareHolderLimit)
}

func (h *HttpHandler) SetReferralLevelLimit(ctx *fiber.Ctx) error {
	return h.setLimit(ctx, h.core.SetReferralLevelLimit)
}

func (h *HttpHandler) setLimit(ctx *fiber.Ctx, set func(ctx context.Context, caller common.Address, limit int) error) error {
	var req limitRequest
	if err := h.parse(ctx, &req); err != nil {
		return errors.WithStack(err)
	}
	by, err := parseCaller(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := set(ctx.UserContext(), by, req.Limit); err != nil {
		return errors.Wrap(err, "can't set limit")
	}
	return respond(ctx, req)
}

type referralLevelsRequest struct {
	Levels []uint16 `json:"levels" validate:"dive,lte=10000"`
}

func (h *HttpHandler) SetReferralLevels(ctx *fiber.Ctx) error {
	var req referralLevelsRequest
	if err := h.parse(ctx, &req); err != nil {
		return errors.WithStack(err)
	}
	by, err := parseCaller(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	levels := lo.Map(req.Levels, func(l uint16, _ int) entity.BasisPoints { return entity.BasisPoints(l) })
	if err := h.core.SetReferralLevels(ctx.UserContext(), by, levels); err != nil {
		return errors.Wrap(err, "error during SetReferralLevels")
	}
	return respond(ctx, levels)
}

type reinvestmentWalletRequest struct {
	Wallet string `json:"wallet" validate:"required,eth_addr"`
}

func (h *HttpHandler) SetReinvestmentWallet(ctx *fiber.Ctx) error {
	var req reinvestmentWalletRequest
	if err := h.parse(ctx, &req); err != nil {
		return errors.WithStack(err)
	}
	by, err := parseCaller(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	wallet := parseAddress(req.Wallet)
	if err := h.core.SetReinvestmentWallet(ctx.UserContext(), by, wallet); err != nil {
		return errors.Wrap(err, "error during SetReinvestmentWallet")
	}
	return respond(ctx, wallet)
}

func (h *HttpHandler) SetPaused(ctx *fiber.Ctx) error {
	var req statusRequest
	if err := h.parse(ctx, &req); err != nil {
		return errors.WithStack(err)
	}
	by, err := parseCaller(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := h.core.SetPaused(ctx.UserContext(), by, req.active()); err != nil {
		return errors.Wrapf(err, "can't %s", req.Action)
	}
	return respond(ctx, map[string]bool{"paused": req.active()})
}

type userAdminRequest struct {
	Address    string `params:"address" validate:"required,eth_addr"`
	Action     string `params:"action" validate:"omitempty,oneof=enable disable"`
	Months     uint32 `json:"months" validate:"lte=1200"`
	ReferrerID uint64 `json:"referrerId"`
	Referrer   string `json:"referrer" validate:"omitempty,eth_addr"`
}

func (h *HttpHandler) GrantSubscription(ctx *fiber.Ctx) error {
	var req userAdminRequest
	if err := h.parse(ctx, &req); err != nil {
		return errors.WithStack(err)
	}
	by, err := parseCaller(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	ref := referral.Ref{ID: req.ReferrerID, Address: parseAddress(req.Referrer)}
	event, err := h.core.GrantSubscription(ctx.UserContext(), by, parseAddress(req.Address), ref, entity.Months(req.Months))
	if err != nil {
		return errors.Wrap(err, "error during GrantSubscription")
	}
	return respond(ctx, event.Payload())
}

func (h *HttpHandler) CancelSubscription(ctx *fiber.Ctx) error {
	return h.userAdmin(ctx, h.core.CancelSubscription)
}

func (h *HttpHandler) SetUserStatus(ctx *fiber.Ctx) error {
	if ctx.Params("action") == "enable" {
		return h.userAdmin(ctx, h.core.EnableUser)
	}
	return h.userAdmin(ctx, h.core.DisableUser)
}

func (h *HttpHandler) userAdmin(ctx *fiber.Ctx, apply func(ctx context.Context, caller, user common.Address) error) error {
	var req userAdminRequest
	if err := h.parse(ctx, &req); err != nil {
		return errors.WithStack(err)
	}
	by, err := parseCaller(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := apply(ctx.UserContext(), by, parseAddress(req.Address)); err != nil {
		return errors.Wrapf(err, "can't update user %s", req.Address)
	}
	info, err := h.core.UserInfo(ctx.UserContext(), parseAddress(req.Address))
	if err != nil {
		return errors.Wrap(err, "error during UserInfo")
	}
	return respond(ctx, getUserResult{
		Address:              info.Address,
		IsSubscriptionActive: info.IsSubscriptionActive,
		ReferralID:           info.ReferralID,
		ReferrerID:           info.ReferrerID,
		Referrer:             info.Referrer,
		Suspended:            info.Suspended,
	})
}
