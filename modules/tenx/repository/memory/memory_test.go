package memory

import (
	"context"
	"testing"
	"time"

	"github.com/RishalEP/tenx-blockchain/modules/tenx/datagateway"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/uint128"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTx(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	alice := common.HexToAddress("0xa1")

	tx, err := repo.BeginTenxTx(ctx)
	require.NoError(t, err)
	_, err = tx.BeginTenxTx(ctx)
	assert.ErrorIs(t, err, ErrTxAlreadyExists)

	require.NoError(t, tx.AddEvent(ctx, entity.Record{Seq: 1, At: time.Unix(0, 0), Event: entity.CancelSubscriptionEvent{Payee: alice}}))
	require.NoError(t, tx.UpsertUsers(ctx, []entity.User{{Address: alice, ReferralID: 1}}))
	require.NoError(t, tx.SetState(ctx, datagateway.State{LastSeq: 1, FailedTransfers: uint128.From64(5)}))

	events, err := repo.GetEvents(ctx, datagateway.GetEventsParams{})
	require.NoError(t, err)
	assert.Empty(t, events, "staged writes are invisible before commit")

	require.NoError(t, tx.Commit(ctx))
	require.NoError(t, tx.Rollback(ctx))

	events, err = repo.GetEvents(ctx, datagateway.GetEventsParams{Account: alice})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, entity.EventCancelSubscription, events[0].Name)

	state, err := repo.GetState(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), state.LastSeq)

	tx, err = repo.BeginTenxTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.SetState(ctx, datagateway.State{LastSeq: 2}))
	require.NoError(t, tx.Rollback(ctx))

	state, err = repo.GetState(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), state.LastSeq)

	users, err := repo.GetUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []entity.User{{Address: alice, ReferralID: 1}}, users)
}
