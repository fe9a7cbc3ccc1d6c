package httphandler

import (
	"github.com/RishalEP/tenx-blockchain/modules/tenx/configstore"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/uint128"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type getInfoResult struct {
	TotalShareHolders       int                `json:"totalShareHolders"`
	TotalReferralLevels     int                `json:"totalReferralLevels"`
	ShareHolderLimit        int                `json:"shareHolderLimit"`
	ReferralLevelLimit      int                `json:"referralLevelLimit"`
	ShareHolderPercentage   entity.BasisPoints `json:"shareHolderPercentage"`
	ReferralLevelPercentage entity.BasisPoints `json:"referralLevelPercentage"`
	ReinvestmentWallet      common.Address     `json:"reinvestmentWallet"`
	FailedTransfers         uint128.Uint128    `json:"failedTransferAmount"`
	Paused                  bool               `json:"paused"`
	MaxDiscount             entity.BasisPoints `json:"maxDiscount"`
	TotalUsers              int                `json:"totalUsers"`
	LastSeq                 uint64             `json:"lastSeq"`
}

func (h *HttpHandler) GetInfo(ctx *fiber.Ctx) error {
	info, err := h.core.Info(ctx.UserContext())
	if err != nil {
		return errors.Wrap(err, "error during Info")
	}
	return respond(ctx, getInfoResult{
		TotalShareHolders:       info.TotalShareHolders,
		TotalReferralLevels:     info.TotalReferralLevels,
		ShareHolderLimit:        info.ShareHolderLimit,
		ReferralLevelLimit:      info.ReferralLevelLimit,
		ShareHolderPercentage:   info.ShareHolderPercentage,
		ReferralLevelPercentage: info.ReferralLevelPercentage,
		ReinvestmentWallet:      info.ReinvestmentWallet,
		FailedTransfers:         info.FailedTransfers,
		Paused:                  info.Paused,
		MaxDiscount:             info.MaxDiscount,
		TotalUsers:              info.TotalUsers,
		LastSeq:                 info.LastSeq,
	})
}

type plan struct {
	Months   uint32 `json:"months"`
	PriceUSD uint64 `json:"priceUsd"`
	Active   bool   `json:"active"`
}

func (h *HttpHandler) GetPlans(ctx *fiber.Ctx) error {
	plans, err := h.core.Plans(ctx.UserContext())
	if err != nil {
		return errors.Wrap(err, "error during Plans")
	}
	return respond(ctx, lo.Map(plans, func(p configstore.Plan, _ int) plan {
		return plan{Months: p.Months, PriceUSD: p.PriceUSD, Active: p.Active}
	}))
}

type paymentToken struct {
	Address   common.Address `json:"address"`
	Native    bool           `json:"native"`
	PriceFeed string         `json:"priceFeed"`
	Active    bool           `json:"active"`
}

func (h *HttpHandler) GetPaymentTokens(ctx *fiber.Ctx) error {
	tokens, err := h.core.PaymentTokens(ctx.UserContext())
	if err != nil {
		return errors.Wrap(err, "error during PaymentTokens")
	}
	return respond(ctx, lo.Map(tokens, func(t configstore.PaymentToken, _ int) paymentToken {
		return paymentToken{
			Address:   t.Address,
			Native:    entity.IsNative(t.Address),
			PriceFeed: t.PriceFeed,
			Active:    t.Active,
		}
	}))
}

type shareHolder struct {
	Index      int                `json:"index"`
	Name       string             `json:"name"`
	Wallet     common.Address     `json:"wallet"`
	Percentage entity.BasisPoints `json:"percentage"`
	Active     bool               `json:"active"`
}

func (h *HttpHandler) GetShareHolders(ctx *fiber.Ctx) error {
	holders, err := h.core.ShareHolders(ctx.UserContext())
	if err != nil {
		return errors.Wrap(err, "error during ShareHolders")
	}
	return respond(ctx, lo.Map(holders, func(s configstore.ShareHolder, i int) shareHolder {
		return shareHolder{
			Index:      i,
			Name:       s.Name,
			Wallet:     s.Wallet,
			Percentage: s.Percentage,
			Active:     s.Active,
		}
	}))
}

func (h *HttpHandler) GetReferralLevels(ctx *fiber.Ctx) error {
	levels, err := h.core.ReferralLevels(ctx.UserContext())
	if err != nil {
		return errors.Wrap(err, "error during ReferralLevels")
	}
	return respond(ctx, levels)
}
