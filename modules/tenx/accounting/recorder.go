package accounting

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/RishalEP/tenx-blockchain/common/errs"
	"github.com/RishalEP/tenx-blockchain/internal/feed"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/datagateway"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/RishalEP/tenx-blockchain/pkg/logger"
	"github.com/RishalEP/tenx-blockchain/pkg/logger/slogx"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
)

const recorderShutdownTimeout = 30 * time.Second

// EventSource is the part of the Core a Recorder reads from.
type EventSource interface {
	SubscribeEvents(ch chan<- entity.Record) *feed.Subscription[entity.Record]
	Users(ctx context.Context, addrs ...common.Address) ([]entity.User, error)
	Info(ctx context.Context) (Info, error)
}

// Recorder journals every published event together with the user records
// and counters it changed, one transaction per event.
type Recorder struct {
	source      EventSource
	datagateway datagateway.TenxDataGateway

	records chan entity.Record
	sub     *feed.Subscription[entity.Record]

	quitOnce sync.Once
	quit     chan struct{}
	done     chan struct{}
}

// NewRecorder subscribes to source right away so no event published after
// this call is missed. Events published before Shutdown are recorded before
// Run returns.
func NewRecorder(source EventSource, dg datagateway.TenxDataGateway) *Recorder {
	r := &Recorder{
		source:      source,
		datagateway: dg,
		records:     make(chan entity.Record, feed.BufferSize),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	r.sub = source.SubscribeEvents(r.records)
	return r
}

func (r *Recorder) Run(ctx context.Context) error {
	defer close(r.done)
	defer r.sub.Unsubscribe()

	ctx = logger.WithContext(ctx, slog.String("package", "tenx"), slog.String("worker", "recorder"))
	logger.InfoContext(ctx, "Recorder started")

	for {
		select {
		case <-r.quit:
			if err := r.drain(ctx); err != nil {
				return errors.WithStack(err)
			}
			logger.InfoContext(ctx, "Recorder stopped")
			return nil
		case <-ctx.Done():
			return errors.WithStack(ctx.Err())
		case <-r.sub.Done():
			return errors.Wrap(errs.InternalError, "event subscription closed")
		case record := <-r.records:
			if err := r.record(ctx, record); err != nil {
				return errors.Wrapf(err, "can't record event %d", record.Seq)
			}
		}
	}
}

// drain records everything published before the quit request.
func (r *Recorder) drain(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	drained := make(chan error, 1)
	go func() {
		drained <- r.sub.Drain(ctx)
	}()

	for {
		select {
		case record := <-r.records:
			if err := r.record(ctx, record); err != nil {
				return errors.Wrapf(err, "can't record event %d", record.Seq)
			}
		case err := <-drained:
			if err != nil {
				return errors.Wrap(err, "can't drain event subscription")
			}
			for {
				select {
				case record := <-r.records:
					if err := r.record(ctx, record); err != nil {
						return errors.Wrapf(err, "can't record event %d", record.Seq)
					}
				default:
					return nil
				}
			}
		}
	}
}

func (r *Recorder) Shutdown() error {
	return r.ShutdownWithContext(context.Background())
}

func (r *Recorder) ShutdownWithContext(ctx context.Context) (err error) {
	r.quitOnce.Do(func() {
		close(r.quit)
		select {
		case <-r.done:
		case <-time.After(recorderShutdownTimeout):
			err = errors.Wrap(errs.Timeout, "recorder shutdown timeout")
		case <-ctx.Done():
			err = errors.Wrap(ctx.Err(), "recorder shutdown context canceled")
		}
	})
	return
}

func (r *Recorder) record(ctx context.Context, record entity.Record) (err error) {
	var users []entity.User
	if subject := entity.Subject(record.Event); subject != (common.Address{}) {
		users, err = r.source.Users(ctx, subject)
		if err != nil {
			return errors.Wrap(err, "can't read users")
		}
	}
	info, err := r.source.Info(ctx)
	if err != nil {
		return errors.Wrap(err, "can't read info")
	}

	dg, err := r.datagateway.BeginTenxTx(ctx)
	if err != nil {
		return errors.Wrap(err, "can't begin transaction")
	}
	defer func() {
		if err := dg.Rollback(ctx); err != nil {
			logger.ErrorContext(ctx, "failed to rollback transaction", err)
		}
	}()

	if err := dg.AddEvent(ctx, record); err != nil {
		return errors.WithStack(err)
	}
	if err := dg.UpsertUsers(ctx, users); err != nil {
		return errors.WithStack(err)
	}
	if err := dg.SetState(ctx, datagateway.State{
		LastSeq:         record.Seq,
		FailedTransfers: info.FailedTransfers,
		Paused:          info.Paused,
	}); err != nil {
		return errors.WithStack(err)
	}
	if err := dg.Commit(ctx); err != nil {
		return errors.WithStack(err)
	}

	logger.DebugContext(ctx, "Recorded event",
		slogx.Uint64("seq", record.Seq),
		slogx.String("event", string(record.Event.Name())),
	)
	return nil
}
