package httphandler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Mount(router fiber.Router) error {
	// The payer of /subscribe and the caller of every /admin route are taken
	// from the X-Caller header unverified. A trusted proxy in front of this
	// server must authenticate the request and set the header.
	r := router.Group("/tenx/v1")

	r.Get("/info", h.GetInfo)
	r.Get("/plans", h.GetPlans)
	r.Get("/tokens", h.GetPaymentTokens)
	r.Get("/share-holders", h.GetShareHolders)
	r.Get("/referral-levels", h.GetReferralLevels)
	r.Get("/quote", h.GetQuote)
	r.Get("/users/:address", h.GetUser)
	r.Get("/events", h.GetEvents)
	r.Post("/subscribe", h.Subscribe)

	r.Get("/rails/balances/:address", h.GetBalance)
	r.Post("/rails/approve", h.Approve)

	admin := r.Group("/admin")
	admin.Post("/plans", h.AddPlan)
	admin.Put("/plans/:months", h.ChangePlanPrice)
	admin.Post("/plans/:months/:action<regex(enable|disable)>", h.SetPlanStatus)
	admin.Post("/tokens", h.AddPaymentToken)
	admin.Put("/tokens/:token", h.ChangePriceFeed)
	admin.Post("/tokens/:token/:action<regex(enable|disable)>", h.SetPaymentTokenStatus)
	admin.Post("/share-holders", h.AddShareHolder)
	admin.Put("/share-holders/:index", h.UpdateShareHolder)
	admin.Post("/share-holders/:index/:action<regex(enable|disable)>", h.SetShareHolderStatus)
	admin.Put("/share-holder-limit", h.SetShareHolderLimit)
	admin.Put("/referral-levels", h.SetReferralLevels)
	admin.Put("/referral-level-limit", h.SetReferralLevelLimit)
	admin.Put("/reinvestment-wallet", h.SetReinvestmentWallet)
	admin.Post("/:action<regex(pause|unpause)>", h.SetPaused)
	admin.Post("/users/:address/grant", h.GrantSubscription)
	admin.Post("/users/:address/cancel", h.CancelSubscription)
	admin.Post("/users/:address/:action<regex(enable|disable)>", h.SetUserStatus)
	return nil
}
