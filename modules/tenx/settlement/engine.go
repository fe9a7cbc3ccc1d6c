// Package settlement splits subscription payments among referrers, share
// holders and the reinvestment wallet, and moves the funds.
package settlement

import (
	"context"
	"log/slog"
	"time"

	"github.com/RishalEP/tenx-blockchain/modules/tenx/configstore"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/priceoracle"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/referral"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/subscriptions"
	"github.com/RishalEP/tenx-blockchain/pkg/logger"
	"github.com/RishalEP/tenx-blockchain/pkg/logger/slogx"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/uint128"
)

type SubscribeParams struct {
	Payer    common.Address
	Payee    common.Address
	Amount   uint128.Uint128
	Months   uint32
	Referrer referral.Ref
	Token    common.Address
	Discount entity.BasisPoints

	// Tendered is the native value sent along with the call.
	Tendered uint128.Uint128
}

type Receipt struct {
	Payer      common.Address
	Payee      common.Address
	Token      common.Address
	Months     uint32
	Quote      uint128.Uint128
	Allocation Allocation

	// Payouts are the attempted disbursements in order, with failures marked.
	Payouts []Payout
	Failed  uint128.Uint128
	Event   entity.SubscriptionEvent
}

// Delivered returns the sum of payouts that reached their recipient.
func (r *Receipt) Delivered() uint128.Uint128 {
	return r.Allocation.Gross.Sub(r.Failed)
}

type Dependencies struct {
	Config        *configstore.Store
	Users         *entity.UserStore
	Oracle        *priceoracle.Adapter
	Referrals     *referral.Ledger
	Subscriptions *subscriptions.Ledger
	Rails         Rails
	Now           func() time.Time
}

// Engine is not safe for concurrent use. A call arriving while funds of
// another settlement are moving fails with [entity.ErrReentrantCall].
type Engine struct {
	Dependencies
	failed   uint128.Uint128
	settling bool
}

func New(deps Dependencies) *Engine {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Engine{Dependencies: deps}
}

// FailedTransfers returns the native amount kept in custody because recipients rejected it.
func (e *Engine) FailedTransfers() uint128.Uint128 {
	return e.failed
}

// RestoreFailedTransfers sets the failed transfer account, e.g. after a restart.
func (e *Engine) RestoreFailedTransfers(amount uint128.Uint128) {
	e.failed = amount
}

// Subscribe settles one paid subscription. Every check runs before any funds move.
func (e *Engine) Subscribe(ctx context.Context, p SubscribeParams) (*Receipt, error) {
	if e.settling {
		return nil, errors.WithStack(entity.ErrReentrantCall)
	}
	if p.Payee == (common.Address{}) || p.Payer == (common.Address{}) {
		return nil, errors.Wrap(entity.ErrInvalidArgument, "payer and payee are required")
	}
	if p.Amount.IsZero() {
		return nil, errors.Wrap(entity.ErrInvalidArgument, "amount is zero")
	}
	for _, addr := range []common.Address{p.Payer, p.Payee} {
		if u := e.Users.Get(addr); u != nil && u.Suspended {
			return nil, errors.Wrapf(entity.ErrUserSuspended, "%s", addr)
		}
	}

	if _, err := e.Config.ActivePlan(p.Months); err != nil {
		return nil, errors.WithStack(err)
	}
	if _, err := e.Config.ActivePaymentToken(p.Token); err != nil {
		return nil, errors.WithStack(err)
	}
	quote, err := e.Oracle.Quote(ctx, e.Config, p.Months, p.Token, p.Discount)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if p.Amount.Cmp(quote) < 0 {
		return nil, errors.Wrapf(entity.ErrSlippageExceeded, "amount %s, quote %s", p.Amount, quote)
	}
	native := entity.IsNative(p.Token)
	switch {
	case native && !p.Tendered.Equals(p.Amount):
		return nil, errors.Wrapf(entity.ErrAmountMismatch, "tendered %s, amount %s", p.Tendered, p.Amount)
	case !native && !p.Tendered.IsZero():
		return nil, errors.Wrapf(entity.ErrAmountMismatch, "native value %s sent with token payment", p.Tendered)
	}

	referrer, err := e.Referrals.Resolve(p.Referrer, p.Payee)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	validUntil, err := e.Subscriptions.ExtendedValidity(p.Payee, entity.Months(p.Months))
	if err != nil {
		return nil, errors.WithStack(err)
	}

	snapshot := e.Config.Snapshot()
	alloc := Split(p.Amount, snapshot, e.upline(referrer, len(snapshot.ReferralLevels)))

	receipt := &Receipt{
		Payer:      p.Payer,
		Payee:      p.Payee,
		Token:      p.Token,
		Months:     p.Months,
		Quote:      quote,
		Allocation: alloc,
	}

	if err := e.settle(ctx, p.Payer, native, receipt); err != nil {
		return nil, errors.WithStack(err)
	}
	e.failed = e.failed.Add(receipt.Failed)

	payee := e.Users.GetOrCreate(p.Payee)
	e.Referrals.Register(payee, referrer)
	if err := e.Subscriptions.SetValidity(p.Payee, validUntil); err != nil {
		return nil, errors.WithStack(err)
	}

	receipt.Event = entity.SubscriptionEvent{
		Payee:      p.Payee,
		ReferralID: payee.ReferralID,
		Months:     p.Months,
		ValidUntil: validUntil,
		Token:      p.Token,
		Amount:     p.Amount,
	}
	if referrer != nil {
		receipt.Event.ReferrerID = referrer.ReferralID
		receipt.Event.Referrer = referrer.Address
	}
	return receipt, nil
}

func (e *Engine) upline(referrer *entity.User, levels int) []Beneficiary {
	now := e.Now()
	var upline []Beneficiary
	for _, u := range e.Referrals.Upline(referrer, levels) {
		upline = append(upline, Beneficiary{
			Address:  u.Address,
			Eligible: u.IsSubscriptionActive(now),
		})
	}
	return upline
}

func (e *Engine) settle(ctx context.Context, payer common.Address, native bool, receipt *Receipt) error {
	e.settling = true
	defer func() { e.settling = false }()
	if native {
		return e.settleNative(ctx, payer, receipt)
	}
	return e.settleToken(ctx, payer, receipt)
}

func (e *Engine) settleNative(ctx context.Context, payer common.Address, receipt *Receipt) error {
	gross := receipt.Allocation.Gross
	if err := e.Rails.ReceiveNative(ctx, payer, gross); err != nil {
		return errors.WithSecondaryError(errors.Wrapf(entity.ErrAmountMismatch, "can't receive %s from %s", gross, payer), err)
	}

	failed := uint128.Zero
	for _, payout := range receipt.Allocation.Payouts() {
		if !payout.Amount.IsZero() && !e.Rails.TransferNative(ctx, payout.Recipient, payout.Amount) {
			payout.Failed = true
			failed = failed.Add(payout.Amount)
			logger.WarnContext(ctx, "Native transfer rejected, amount kept as failed transfer",
				slogx.Address("recipient", payout.Recipient),
				slogx.Amount("amount", payout.Amount),
				slog.String("kind", string(payout.Kind)),
			)
		}
		receipt.Payouts = append(receipt.Payouts, payout)
	}
	receipt.Failed = failed
	return nil
}

func (e *Engine) settleToken(ctx context.Context, payer common.Address, receipt *Receipt) (err error) {
	gross := receipt.Allocation.Gross
	tx, err := e.Rails.BeginTokenTx(ctx, receipt.Token)
	if err != nil {
		return errors.Wrap(err, "can't begin token transfer")
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if err := tx.Pull(ctx, payer, gross); err != nil {
		return errors.WithSecondaryError(errors.Wrapf(entity.ErrAllowanceInsufficient, "can't pull %s from %s", gross, payer), err)
	}
	for _, payout := range receipt.Allocation.Payouts() {
		if !payout.Amount.IsZero() {
			if err := tx.Transfer(ctx, payout.Recipient, payout.Amount); err != nil {
				return errors.WithSecondaryError(errors.Wrapf(entity.ErrTransferFailed, "can't transfer %s to %s", payout.Amount, payout.Recipient), err)
			}
		}
		receipt.Payouts = append(receipt.Payouts, payout)
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.WithSecondaryError(errors.Wrap(entity.ErrTransferFailed, "can't commit token transfers"), err)
	}
	receipt.Failed = uint128.Zero
	return nil
}
