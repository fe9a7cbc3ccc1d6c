// Package accounting is the serialized entry point of the subscription
// accounting state: settlements, admin operations, views and the event feed.
package accounting

import (
	"context"
	"sync"
	"time"

	"github.com/RishalEP/tenx-blockchain/internal/feed"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/configstore"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/priceoracle"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/referral"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/settlement"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/subscriptions"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/usecase"
	"github.com/RishalEP/tenx-blockchain/pkg/logger"
	"github.com/RishalEP/tenx-blockchain/pkg/logger/slogx"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/uint128"
)

type Options struct {
	Config    *configstore.Store
	PriceFeed priceoracle.PriceFeed
	Rails     settlement.Rails
	Access    usecase.AccessControl

	// MaxDiscount caps the discount a subscriber may claim.
	MaxDiscount entity.BasisPoints

	// Now defaults to time.Now.
	Now func() time.Time

	// Metrics is optional.
	Metrics *Metrics
}

// Core is the single serialization point of the accounting state. Every
// operation runs to completion under one lock, and the events it produced are
// published in sequence order after the lock is released.
type Core struct {
	mu        sync.Mutex
	publishMu sync.Mutex

	config        *configstore.Store
	users         *entity.UserStore
	oracle        *priceoracle.Adapter
	referrals     *referral.Ledger
	subscriptions *subscriptions.Ledger
	engine        *settlement.Engine
	access        usecase.AccessControl
	metrics       *Metrics
	now           func() time.Time

	maxDiscount entity.BasisPoints
	paused      bool
	seq         uint64

	events *feed.Feed[entity.Record]
}

func NewCore(opts Options) (*Core, error) {
	if opts.Config == nil || opts.PriceFeed == nil || opts.Rails == nil || opts.Access == nil {
		return nil, errors.Wrap(entity.ErrInvalidArgument, "config, price feed, rails and access control are required")
	}
	if opts.MaxDiscount > entity.MaxBasisPoints {
		return nil, errors.Wrapf(entity.ErrInvalidDiscount, "max discount %d exceeds %d", opts.MaxDiscount, entity.MaxBasisPoints)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	users := entity.NewUserStore()
	c := &Core{
		config:      opts.Config,
		users:       users,
		oracle:      priceoracle.New(opts.PriceFeed),
		referrals:   referral.New(users),
		access:      opts.Access,
		metrics:     opts.Metrics,
		now:         opts.Now,
		maxDiscount: opts.MaxDiscount,
		events:      feed.New[entity.Record](),
	}
	c.subscriptions = subscriptions.New(users, c.now)
	c.engine = settlement.New(settlement.Dependencies{
		Config:        c.config,
		Users:         users,
		Oracle:        c.oracle,
		Referrals:     c.referrals,
		Subscriptions: c.subscriptions,
		Rails:         opts.Rails,
		Now:           c.now,
	})
	return c, nil
}

// SubscribeEvents delivers every subsequently published event record to ch.
func (c *Core) SubscribeEvents(ch chan<- entity.Record) *feed.Subscription[entity.Record] {
	return c.events.Subscribe(ch)
}

// Close stops every event subscription.
func (c *Core) Close() {
	c.events.Close()
}

type callKey struct{}

// withinCall marks ctx as running inside a Core operation. Code the rails run
// on behalf of a recipient receives this ctx.
func withinCall(ctx context.Context) context.Context {
	return context.WithValue(ctx, callKey{}, true)
}

func isWithinCall(ctx context.Context) bool {
	v, _ := ctx.Value(callKey{}).(bool)
	return v
}

// call runs fn under the state lock. The events fn returns are sequenced
// under the lock and published after it is released.
func (c *Core) call(ctx context.Context, fn func(ctx context.Context) ([]entity.Event, error)) error {
	if isWithinCall(ctx) {
		return errors.WithStack(entity.ErrReentrantCall)
	}

	c.mu.Lock()
	events, err := fn(withinCall(ctx))
	var records []entity.Record
	if err == nil {
		at := c.now()
		for _, event := range events {
			c.seq++
			records = append(records, entity.Record{Seq: c.seq, At: at, Event: event})
		}
	}
	// take the publish lock first so records leave in sequence order
	c.publishMu.Lock()
	c.mu.Unlock()
	defer c.publishMu.Unlock()

	if err != nil {
		return errors.WithStack(err)
	}
	c.publish(ctx, records)
	return nil
}

// adminCall is call for operations restricted to the admin and managers.
func (c *Core) adminCall(ctx context.Context, caller common.Address, fn func(ctx context.Context) ([]entity.Event, error)) error {
	return c.call(ctx, func(ctx context.Context) ([]entity.Event, error) {
		if !c.access.IsAdminOrManager(caller) {
			return nil, errors.Wrapf(entity.ErrUnauthorized, "%s", caller)
		}
		return fn(ctx)
	})
}

// view runs fn under the state lock without producing events.
func (c *Core) view(ctx context.Context, fn func(ctx context.Context) error) error {
	return c.call(ctx, func(ctx context.Context) ([]entity.Event, error) {
		return nil, fn(ctx)
	})
}

func (c *Core) publish(ctx context.Context, records []entity.Record) {
	ctx = context.WithoutCancel(ctx)
	for _, record := range records {
		c.metrics.observeEvent(record.Event.Name())
		if _, err := c.events.Send(ctx, record); err != nil {
			logger.ErrorContext(ctx, "Can't publish event", err,
				slogx.Uint64("seq", record.Seq),
				slogx.String("event", string(record.Event.Name())),
			)
		}
	}
}

// State is the part of the accounting state that is not configuration.
type State struct {
	Users           []entity.User
	FailedTransfers uint128.Uint128
	LastSeq         uint64
	Paused          bool
}

// Restore replaces the user records and counters, e.g. from the journal at start.
func (c *Core) Restore(ctx context.Context, state State) error {
	return c.call(ctx, func(context.Context) ([]entity.Event, error) {
		if err := c.users.Restore(state.Users); err != nil {
			return nil, errors.Wrap(err, "can't restore users")
		}
		c.engine.RestoreFailedTransfers(state.FailedTransfers)
		c.metrics.setFailedTransfers(state.FailedTransfers)
		c.seq = state.LastSeq
		c.paused = state.Paused
		return nil, nil
	})
}

// Snapshot returns the current State.
func (c *Core) Snapshot(ctx context.Context) (State, error) {
	var state State
	err := c.view(ctx, func(context.Context) error {
		state = State{
			Users:           c.users.All(),
			FailedTransfers: c.engine.FailedTransfers(),
			LastSeq:         c.seq,
			Paused:          c.paused,
		}
		return nil
	})
	return state, errors.WithStack(err)
}
