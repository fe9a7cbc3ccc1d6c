package datagateway

import (
	"context"
	"time"

	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/uint128"
)

type TenxDataGateway interface {
	TenxReaderDataGateway
	TenxWriterDataGateway

	// BeginTenxTx returns a new TenxDataGateway with transaction enabled. All write operations performed in this datagateway must be committed to persist changes.
	BeginTenxTx(ctx context.Context) (TenxDataGatewayWithTx, error)
}

type TenxDataGatewayWithTx interface {
	TenxDataGateway
	Tx
}

type TenxReaderDataGateway interface {
	GetEvents(ctx context.Context, params GetEventsParams) ([]Event, error)
	GetUsers(ctx context.Context) ([]entity.User, error)

	// GetState returns the zero State when nothing was stored yet.
	GetState(ctx context.Context) (State, error)
}

type TenxWriterDataGateway interface {
	AddEvent(ctx context.Context, record entity.Record) error
	UpsertUsers(ctx context.Context, users []entity.User) error
	SetState(ctx context.Context, state State) error
}

// Event is a journaled event record.
type Event struct {
	Seq  uint64
	Name entity.EventName
	At   time.Time

	// Account is the user the event is about, zero for configuration events.
	Account common.Address
	Payload map[string]any
}

type GetEventsParams struct {
	// Account filters by user when not zero.
	Account common.Address

	// FromSeq is the first sequence number returned.
	FromSeq uint64
	Limit   int32
}

type State struct {
	LastSeq         uint64
	FailedTransfers uint128.Uint128
	Paused          bool
}
