package entity

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/uint128"
)

type EventName string

const (
	EventSubscription              EventName = "Subscription"
	EventFreeSubscription          EventName = "FreeSubscription"
	EventCancelSubscription        EventName = "CancelSubscription"
	EventEnableDisableSubscriber   EventName = "EnableDisableSubscriber"
	EventAddEditScheme             EventName = "AddEditSubscriptionScheme"
	EventEnableDisableScheme       EventName = "EnableDisableSubscriptionScheme"
	EventAddEditPaymentToken       EventName = "AddEditPaymentToken"
	EventEnableDisablePaymentToken EventName = "EnableDisablePaymentToken"
	EventReinvestmentWalletUpdate  EventName = "ReInvestmentWalletUpdate"
	EventPaused                    EventName = "Paused"
	EventUnpaused                  EventName = "Unpaused"
)

// Event is a state change published for indexing and observability.
type Event interface {
	Name() EventName

	// Payload returns the event fields keyed by their wire names. Amounts are decimal strings.
	Payload() map[string]any
}

// Record is an event with its position in the global event sequence.
type Record struct {
	Seq   uint64
	At    time.Time
	Event Event
}

type SubscriptionEvent struct {
	Payee      common.Address
	ReferralID uint64
	ReferrerID uint64
	Referrer   common.Address
	Months     uint32
	ValidUntil time.Time
	Token      common.Address
	Amount     uint128.Uint128
}

func (SubscriptionEvent) Name() EventName { return EventSubscription }

func (e SubscriptionEvent) Payload() map[string]any {
	return map[string]any{
		"payee":      e.Payee.Hex(),
		"referralId": e.ReferralID,
		"referrerId": e.ReferrerID,
		"referrer":   e.Referrer.Hex(),
		"months":     e.Months,
		"validity":   e.ValidUntil.Unix(),
		"token":      e.Token.Hex(),
		"amountPaid": e.Amount.String(),
	}
}

type FreeSubscriptionEvent struct {
	Payee      common.Address
	ReferrerID uint64
	Referrer   common.Address
	ValidUntil time.Time
}

func (FreeSubscriptionEvent) Name() EventName { return EventFreeSubscription }

func (e FreeSubscriptionEvent) Payload() map[string]any {
	return map[string]any{
		"payee":      e.Payee.Hex(),
		"referrerId": e.ReferrerID,
		"referrer":   e.Referrer.Hex(),
		"validity":   e.ValidUntil.Unix(),
	}
}

type CancelSubscriptionEvent struct {
	Payee     common.Address
	Timestamp time.Time
}

func (CancelSubscriptionEvent) Name() EventName { return EventCancelSubscription }

func (e CancelSubscriptionEvent) Payload() map[string]any {
	return map[string]any{
		"payee":     e.Payee.Hex(),
		"timestamp": e.Timestamp.Unix(),
	}
}

type SubscriberStatusEvent struct {
	Payee  common.Address
	Active bool
}

func (SubscriberStatusEvent) Name() EventName { return EventEnableDisableSubscriber }

func (e SubscriberStatusEvent) Payload() map[string]any {
	return map[string]any{
		"payee":  e.Payee.Hex(),
		"active": e.Active,
	}
}

type SchemeEvent struct {
	Months   uint32
	PriceUSD uint64
}

func (SchemeEvent) Name() EventName { return EventAddEditScheme }

func (e SchemeEvent) Payload() map[string]any {
	return map[string]any{
		"months": e.Months,
		"price":  e.PriceUSD,
	}
}

type SchemeStatusEvent struct {
	Months uint32
	Active bool
}

func (SchemeStatusEvent) Name() EventName { return EventEnableDisableScheme }

func (e SchemeStatusEvent) Payload() map[string]any {
	return map[string]any{
		"months": e.Months,
		"active": e.Active,
	}
}

type PaymentTokenEvent struct {
	Token     common.Address
	PriceFeed string
}

func (PaymentTokenEvent) Name() EventName { return EventAddEditPaymentToken }

func (e PaymentTokenEvent) Payload() map[string]any {
	return map[string]any{
		"token":     e.Token.Hex(),
		"priceFeed": e.PriceFeed,
	}
}

type PaymentTokenStatusEvent struct {
	Token  common.Address
	Active bool
}

func (PaymentTokenStatusEvent) Name() EventName { return EventEnableDisablePaymentToken }

func (e PaymentTokenStatusEvent) Payload() map[string]any {
	return map[string]any{
		"token":  e.Token.Hex(),
		"active": e.Active,
	}
}

type ReinvestmentWalletEvent struct {
	Wallet common.Address
}

func (ReinvestmentWalletEvent) Name() EventName { return EventReinvestmentWalletUpdate }

func (e ReinvestmentWalletEvent) Payload() map[string]any {
	return map[string]any{
		"wallet": e.Wallet.Hex(),
	}
}

// PauseEvent is emitted when paid subscriptions are paused or resumed.
type PauseEvent struct {
	Paused bool
	By     common.Address
}

func (e PauseEvent) Name() EventName {
	if e.Paused {
		return EventPaused
	}
	return EventUnpaused
}

func (e PauseEvent) Payload() map[string]any {
	return map[string]any{
		"account": e.By.Hex(),
	}
}

// Subject returns the user an event is about, or the zero address for
// configuration events.
func Subject(e Event) common.Address {
	switch e := e.(type) {
	case SubscriptionEvent:
		return e.Payee
	case FreeSubscriptionEvent:
		return e.Payee
	case CancelSubscriptionEvent:
		return e.Payee
	case SubscriberStatusEvent:
		return e.Payee
	default:
		return common.Address{}
	}
}
