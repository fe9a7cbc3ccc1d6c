package subscriptions

import (
	"testing"
	"time"

	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	t time.Time
}

func (c *clock) Now() time.Time { return c.t }

func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestExtend(t *testing.T) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	users := entity.NewUserStore()
	l := New(users, c.Now)
	user := common.HexToAddress("0x1")

	assert.False(t, l.IsActive(user))

	first, err := l.Extend(user, entity.Months(1))
	require.NoError(t, err)
	assert.Equal(t, c.t.Add(entity.Months(1)), first)
	assert.True(t, l.IsActive(user))

	t.Run("stacks_while_active", func(t *testing.T) {
		c.Advance(24 * time.Hour)
		second, err := l.Extend(user, entity.Months(3))
		require.NoError(t, err)
		assert.Equal(t, first.Add(entity.Months(3)), second)
	})

	t.Run("restarts_after_expiry", func(t *testing.T) {
		c.t = users.Get(user).ValidUntil.Add(time.Hour)
		assert.False(t, l.IsActive(user))
		third, err := l.Extend(user, entity.Months(1))
		require.NoError(t, err)
		assert.Equal(t, c.t.Add(entity.Months(1)), third)
	})

	t.Run("rejects_non_positive", func(t *testing.T) {
		_, err := l.Extend(user, 0)
		assert.ErrorIs(t, err, entity.ErrInvalidArgument)
	})

	t.Run("rejects_beyond_max", func(t *testing.T) {
		before := users.Get(user).ValidUntil
		_, err := l.Extend(user, entity.MaxExtension+time.Nanosecond)
		assert.ErrorIs(t, err, entity.ErrInvalidArgument)
		assert.Equal(t, before, users.Get(user).ValidUntil)
	})
}

func TestExtendedValidity(t *testing.T) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	users := entity.NewUserStore()
	l := New(users, c.Now)
	user := common.HexToAddress("0x2")

	until, err := l.ExtendedValidity(user, entity.MaxExtension)
	require.NoError(t, err)
	assert.Equal(t, c.t.Add(entity.MaxExtension), until)
	assert.Nil(t, users.Get(user), "nothing is created")

	_, err = l.Extend(user, entity.Months(2))
	require.NoError(t, err)
	until, err = l.ExtendedValidity(user, entity.Months(1))
	require.NoError(t, err)
	assert.Equal(t, c.t.Add(entity.Months(3)), until)
	assert.Equal(t, c.t.Add(entity.Months(2)), users.Get(user).ValidUntil)
}

func TestCancel(t *testing.T) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	l := New(entity.NewUserStore(), c.Now)
	user := common.HexToAddress("0x1")

	_, err := l.Cancel(user)
	assert.ErrorIs(t, err, entity.ErrUserNotFound)

	_, err = l.Extend(user, entity.Months(12))
	require.NoError(t, err)
	at, err := l.Cancel(user)
	require.NoError(t, err)
	assert.Equal(t, c.t, at)
	assert.False(t, l.IsActive(user))
}

func TestSuspend(t *testing.T) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	l := New(entity.NewUserStore(), c.Now)
	user := common.HexToAddress("0x1")

	assert.ErrorIs(t, l.Suspend(user), entity.ErrUserNotFound)

	_, err := l.Extend(user, entity.Months(1))
	require.NoError(t, err)

	require.NoError(t, l.Suspend(user))
	assert.False(t, l.IsActive(user))
	assert.ErrorIs(t, l.Suspend(user), entity.ErrAlreadyInState)

	require.NoError(t, l.Unsuspend(user))
	assert.True(t, l.IsActive(user), "validity survives suspension")
	assert.ErrorIs(t, l.Unsuspend(user), entity.ErrAlreadyInState)
}

func TestSetValidity(t *testing.T) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	l := New(entity.NewUserStore(), c.Now)
	user := common.HexToAddress("0x1")
	_, err := l.Extend(user, time.Hour)
	require.NoError(t, err)

	require.NoError(t, l.SetValidity(user, c.t.Add(-time.Second)))
	assert.False(t, l.IsActive(user))
}
