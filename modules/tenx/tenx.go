// Package tenx wires the subscription accounting core to its configuration,
// event journal and HTTP API.
package tenx

import (
	"context"
	"time"

	"github.com/RishalEP/tenx-blockchain/common"
	"github.com/RishalEP/tenx-blockchain/core"
	"github.com/RishalEP/tenx-blockchain/internal/config"
	"github.com/RishalEP/tenx-blockchain/internal/postgres"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/accounting"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/api/httphandler"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/datagateway"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/repository/bolt"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/repository/memory"
	repository "github.com/RishalEP/tenx-blockchain/modules/tenx/repository/postgres"
	"github.com/RishalEP/tenx-blockchain/pkg/logger"
	"github.com/RishalEP/tenx-blockchain/pkg/logger/slogx"
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/do/v2"
)

const (
	Name    = string(common.ModuleTenx)
	Version = "v0.1.0"
)

const shutdownTimeout = 30 * time.Second

var _ core.Worker = (*Module)(nil)

// Module runs the event recorder of a wired accounting core. In API-only
// mode the core serves requests without a recorder.
type Module struct {
	core         *accounting.Core
	recorder     *accounting.Recorder
	cleanupFuncs []func(context.Context) error
}

func New(injector do.Injector) (core.Worker, error) {
	ctx := do.MustInvoke[context.Context](injector)
	conf := do.MustInvoke[config.Config](injector)

	store, err := NewConfigStore(conf.Tenx)
	if err != nil {
		return nil, errors.Wrap(err, "invalid tenx configuration")
	}
	feed, err := NewPriceFeed(conf.Tenx)
	if err != nil {
		return nil, errors.Wrap(err, "invalid tenx price feeds")
	}
	rails, err := NewRails(conf.Tenx)
	if err != nil {
		return nil, errors.Wrap(err, "invalid tenx balances")
	}
	roles, err := NewRoles(conf.Tenx)
	if err != nil {
		return nil, errors.Wrap(err, "invalid tenx roles")
	}

	m := &Module{}
	var dg datagateway.TenxDataGateway = memory.NewRepository()
	if conf.Tenx.Persist {
		if !conf.Postgres.Enabled() {
			return nil, errors.Wrap(entity.ErrInvalidArgument, "tenx persistence requires a postgres configuration")
		}
		pg, err := postgres.NewPool(ctx, conf.Postgres)
		if err != nil {
			return nil, errors.Wrap(err, "can't create postgres connection pool")
		}
		m.cleanupFuncs = append(m.cleanupFuncs, func(context.Context) error {
			pg.Close()
			return nil
		})
		dg = repository.NewRepository(pg)
	} else if conf.Tenx.JournalPath != "" {
		journal, err := bolt.Open(conf.Tenx.JournalPath)
		if err != nil {
			return nil, errors.Wrap(err, "can't open tenx journal")
		}
		m.cleanupFuncs = append(m.cleanupFuncs, func(context.Context) error {
			return journal.Close()
		})
		dg = journal
	}

	m.core, err = accounting.NewCore(accounting.Options{
		Config:      store,
		PriceFeed:   feed,
		Rails:       rails,
		Access:      roles,
		MaxDiscount: entity.BasisPoints(conf.Tenx.MaxDiscountBps),
		Metrics:     accounting.NewMetrics(prometheus.DefaultRegisterer),
	})
	if err != nil {
		return nil, errors.Wrap(err, "can't create accounting core")
	}
	if err := restore(ctx, m.core, dg); err != nil {
		return nil, errors.WithStack(err)
	}
	// without workers nothing would consume the recorder's subscription
	if !conf.APIOnly {
		m.recorder = accounting.NewRecorder(m.core, dg)
	}

	httpServer := do.MustInvoke[*fiber.App](injector)
	if err := httphandler.New(m.core, dg, rails).Mount(httpServer); err != nil {
		return nil, errors.Wrap(err, "can't mount tenx API")
	}
	logger.InfoContext(ctx, "Mounted tenx HTTP handler")
	return m, nil
}

// restore loads the journaled users and counters into c.
func restore(ctx context.Context, c *accounting.Core, dg datagateway.TenxReaderDataGateway) error {
	users, err := dg.GetUsers(ctx)
	if err != nil {
		return errors.Wrap(err, "can't load users")
	}
	state, err := dg.GetState(ctx)
	if err != nil {
		return errors.Wrap(err, "can't load state")
	}
	if err := c.Restore(ctx, accounting.State{
		Users:           users,
		FailedTransfers: state.FailedTransfers,
		LastSeq:         state.LastSeq,
		Paused:          state.Paused,
	}); err != nil {
		return errors.Wrap(err, "can't restore accounting state")
	}
	if len(users) > 0 || state.LastSeq > 0 {
		logger.InfoContext(ctx, "Restored tenx state",
			slogx.Int("users", len(users)),
			slogx.Uint64("lastSeq", state.LastSeq),
		)
	}
	return nil
}

func (m *Module) Run(ctx context.Context) error {
	if m.recorder == nil {
		<-ctx.Done()
		return nil
	}
	return errors.WithStack(m.recorder.Run(ctx))
}

// Shutdown flushes pending events, then releases the core and connections.
func (m *Module) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errList []error
	if m.recorder != nil {
		if err := m.recorder.ShutdownWithContext(ctx); err != nil {
			errList = append(errList, errors.Wrap(err, "can't stop recorder"))
		}
	}
	m.core.Close()
	for _, cleanup := range m.cleanupFuncs {
		if err := cleanup(ctx); err != nil {
			errList = append(errList, errors.WithStack(err))
		}
	}
	return errors.WithStack(errors.Join(errList...))
}
