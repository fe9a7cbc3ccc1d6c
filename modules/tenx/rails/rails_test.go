package rails

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/uint128"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	custody = common.HexToAddress("0xc0")
	alice   = common.HexToAddress("0xa1")
	bob     = common.HexToAddress("0xb0")
	token   = common.HexToAddress("0x70")
)

func u(n uint64) uint128.Uint128 { return uint128.From64(n) }

func TestNative(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(custody)
	require.NoError(t, m.Deposit(alice, u(100)))

	err := m.ReceiveNative(ctx, alice, u(101))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	require.NoError(t, m.ReceiveNative(ctx, alice, u(60)))
	assert.Equal(t, u(40), m.Balance(alice))
	assert.Equal(t, u(60), m.Balance(custody))

	assert.True(t, m.TransferNative(ctx, bob, u(10)))
	assert.Equal(t, u(10), m.Balance(bob))

	m.Reject(bob, true)
	assert.False(t, m.TransferNative(ctx, bob, u(10)))
	assert.Equal(t, u(50), m.Balance(custody), "rejected funds stay in custody")

	m.Reject(bob, false)
	assert.False(t, m.TransferNative(ctx, bob, u(51)), "custody cannot overdraw")

	t.Run("hook", func(t *testing.T) {
		type key struct{}
		var seen any
		m.OnReceive(bob, func(ctx context.Context, from common.Address, amount uint128.Uint128) bool {
			seen = ctx.Value(key{})
			return amount.Cmp64(5) <= 0
		})
		hookCtx := context.WithValue(ctx, key{}, "marker")
		assert.True(t, m.TransferNative(hookCtx, bob, u(5)))
		assert.Equal(t, "marker", seen)
		assert.False(t, m.TransferNative(hookCtx, bob, u(6)))

		m.OnReceive(bob, nil)
		assert.True(t, m.TransferNative(ctx, bob, u(6)))
	})
}

func TestTokenTx(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(custody)
	require.NoError(t, m.Mint(token, alice, u(1000)))
	m.Approve(token, alice, u(500))

	t.Run("allowance", func(t *testing.T) {
		tx, err := m.BeginTokenTx(ctx, token)
		require.NoError(t, err)
		assert.ErrorIs(t, tx.Pull(ctx, alice, u(501)), ErrInsufficientAllowance)
		tx.Rollback(ctx)
	})

	t.Run("rollback", func(t *testing.T) {
		tx, err := m.BeginTokenTx(ctx, token)
		require.NoError(t, err)
		require.NoError(t, tx.Pull(ctx, alice, u(300)))
		require.NoError(t, tx.Transfer(ctx, bob, u(100)))
		assert.ErrorIs(t, tx.Transfer(ctx, bob, u(201)), ErrInsufficientBalance)
		tx.Rollback(ctx)

		assert.Equal(t, u(1000), m.TokenBalance(token, alice))
		assert.True(t, m.TokenBalance(token, bob).IsZero())
		assert.Equal(t, u(500), m.Allowance(token, alice))
	})

	t.Run("blocked", func(t *testing.T) {
		m.Block(bob, true)
		t.Cleanup(func() { m.Block(bob, false) })
		tx, err := m.BeginTokenTx(ctx, token)
		require.NoError(t, err)
		require.NoError(t, tx.Pull(ctx, alice, u(100)))
		assert.ErrorIs(t, tx.Transfer(ctx, bob, u(100)), ErrRecipientBlocked)
		tx.Rollback(ctx)
	})

	t.Run("commit", func(t *testing.T) {
		tx, err := m.BeginTokenTx(ctx, token)
		require.NoError(t, err)
		require.NoError(t, tx.Pull(ctx, alice, u(300)))
		require.NoError(t, tx.Transfer(ctx, bob, u(250)))
		require.NoError(t, tx.Commit(ctx))

		assert.Equal(t, u(700), m.TokenBalance(token, alice))
		assert.Equal(t, u(250), m.TokenBalance(token, bob))
		assert.Equal(t, u(50), m.TokenBalance(token, custody))
		assert.Equal(t, u(200), m.Allowance(token, alice))

		assert.Error(t, tx.Commit(ctx), "closed transaction")
	})
}

func TestTokenTxCommitKeepsConcurrentChanges(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(custody)
	require.NoError(t, m.Mint(token, alice, u(1000)))
	m.Approve(token, alice, u(500))

	tx, err := m.BeginTokenTx(ctx, token)
	require.NoError(t, err)
	require.NoError(t, tx.Pull(ctx, alice, u(300)))
	require.NoError(t, tx.Transfer(ctx, bob, u(250)))

	// changed by others before the commit
	require.NoError(t, m.Mint(token, alice, u(100)))
	require.NoError(t, m.Mint(token, bob, u(10)))
	m.Approve(token, alice, u(400))

	require.NoError(t, tx.Commit(ctx))
	assert.Equal(t, u(800), m.TokenBalance(token, alice))
	assert.Equal(t, u(260), m.TokenBalance(token, bob))
	assert.Equal(t, u(50), m.TokenBalance(token, custody))
	assert.Equal(t, u(100), m.Allowance(token, alice))

	t.Run("allowance_lowered", func(t *testing.T) {
		tx, err := m.BeginTokenTx(ctx, token)
		require.NoError(t, err)
		require.NoError(t, tx.Pull(ctx, alice, u(100)))
		m.Approve(token, alice, u(50))

		assert.ErrorIs(t, tx.Commit(ctx), ErrInsufficientAllowance)
		assert.Equal(t, u(800), m.TokenBalance(token, alice))
		assert.Equal(t, u(50), m.TokenBalance(token, custody))
		assert.Equal(t, u(50), m.Allowance(token, alice))
	})
}
