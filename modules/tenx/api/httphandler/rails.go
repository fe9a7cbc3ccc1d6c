package httphandler

import (
	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/uint128"
	"github.com/gofiber/fiber/v2"
)

type getBalanceRequest struct {
	Address string `params:"address" validate:"required,eth_addr"`
	Token   string `query:"token" validate:"omitempty,eth_addr"`
}

type balanceResult struct {
	Address   common.Address   `json:"address"`
	Token     common.Address   `json:"token"`
	Balance   uint128.Uint128  `json:"balance"`
	Allowance *uint128.Uint128 `json:"allowance,omitempty"`
}

func (h *HttpHandler) GetBalance(ctx *fiber.Ctx) error {
	var req getBalanceRequest
	if err := h.parse(ctx, &req); err != nil {
		return errors.WithStack(err)
	}

	addr, token := parseAddress(req.Address), parseAddress(req.Token)
	result := balanceResult{Address: addr, Token: token}
	if entity.IsNative(token) {
		result.Balance = h.rails.Balance(addr)
	} else {
		allowance := h.rails.Allowance(token, addr)
		result.Balance = h.rails.TokenBalance(token, addr)
		result.Allowance = &allowance
	}
	return respond(ctx, result)
}

type approveRequest struct {
	Token  string `json:"token" validate:"required,eth_addr"`
	Amount string `json:"amount" validate:"required,number"`
}

// Approve sets the allowance the caller grants the custody account on a token.
func (h *HttpHandler) Approve(ctx *fiber.Ctx) error {
	var req approveRequest
	if err := h.parse(ctx, &req); err != nil {
		return errors.WithStack(err)
	}
	owner, err := parseCaller(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return errors.WithStack(err)
	}

	token := parseAddress(req.Token)
	h.rails.Approve(token, owner, amount)
	return respond(ctx, balanceResult{
		Address:   owner,
		Token:     token,
		Balance:   h.rails.TokenBalance(token, owner),
		Allowance: &amount,
	})
}
