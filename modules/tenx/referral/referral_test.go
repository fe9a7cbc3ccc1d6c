package referral

import (
	"math/big"
	"testing"

	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addr(n int64) common.Address {
	return common.BigToAddress(big.NewInt(n))
}

// chain registers users 1..n where user i was referred by user i-1.
func chain(t *testing.T, l *Ledger, users *entity.UserStore, n int) []*entity.User {
	t.Helper()
	var out []*entity.User
	var prev *entity.User
	for i := 1; i <= n; i++ {
		u := users.GetOrCreate(addr(int64(i)))
		require.True(t, l.Register(u, prev))
		out = append(out, u)
		prev = u
	}
	return out
}

func collect(l *Ledger, start *entity.User, maxLevels int) []common.Address {
	var out []common.Address
	for level, u := range l.Upline(start, maxLevels) {
		if level != len(out) {
			panic("levels must be consecutive")
		}
		out = append(out, u.Address)
	}
	return out
}

func TestRegister(t *testing.T) {
	users := entity.NewUserStore()
	l := New(users)

	a := users.GetOrCreate(addr(1))
	b := users.GetOrCreate(addr(2))
	c := users.GetOrCreate(addr(3))

	assert.True(t, l.Register(a, nil))
	assert.Equal(t, uint64(1), a.ReferralID)
	assert.False(t, a.HasReferrer())

	assert.True(t, l.Register(b, a))
	assert.Equal(t, uint64(2), b.ReferralID)
	assert.Equal(t, a.Address, b.ReferredBy)

	// second registration keeps identity and link
	assert.False(t, l.Register(b, c))
	assert.Equal(t, uint64(2), b.ReferralID)
	assert.Equal(t, a.Address, b.ReferredBy)
	assert.Same(t, a, l.Referrer(b))
	assert.Nil(t, l.Referrer(a))
}

func TestResolve(t *testing.T) {
	users := entity.NewUserStore()
	l := New(users)
	a := users.GetOrCreate(addr(1))
	l.Register(a, nil)
	unregistered := users.GetOrCreate(addr(9))

	t.Run("none", func(t *testing.T) {
		u, err := l.Resolve(Ref{}, addr(2))
		require.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("by_id", func(t *testing.T) {
		u, err := l.Resolve(ByID(1), addr(2))
		require.NoError(t, err)
		assert.Same(t, a, u)
	})

	t.Run("by_address", func(t *testing.T) {
		u, err := l.Resolve(ByAddress(a.Address), addr(2))
		require.NoError(t, err)
		assert.Same(t, a, u)
	})

	t.Run("id_and_address_mismatch", func(t *testing.T) {
		_, err := l.Resolve(Ref{ID: 1, Address: addr(5)}, addr(2))
		assert.ErrorIs(t, err, entity.ErrInvalidReferrer)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := l.Resolve(ByID(42), addr(2))
		assert.ErrorIs(t, err, entity.ErrInvalidReferrer)
		_, err = l.Resolve(ByAddress(addr(42)), addr(2))
		assert.ErrorIs(t, err, entity.ErrInvalidReferrer)
		_, err = l.Resolve(ByAddress(unregistered.Address), addr(2))
		assert.ErrorIs(t, err, entity.ErrInvalidReferrer)
	})

	t.Run("self", func(t *testing.T) {
		_, err := l.Resolve(ByID(1), a.Address)
		assert.ErrorIs(t, err, entity.ErrSelfReferral)
		_, err = l.Resolve(ByAddress(a.Address), a.Address)
		assert.ErrorIs(t, err, entity.ErrSelfReferral)
	})
}

func TestUpline(t *testing.T) {
	users := entity.NewUserStore()
	l := New(users)
	c := chain(t, l, users, 6)
	tail := c[5]

	assert.Equal(t, []common.Address{addr(6), addr(5), addr(4), addr(3)}, collect(l, tail, 4))
	assert.Equal(t, []common.Address{addr(6), addr(5), addr(4), addr(3), addr(2), addr(1)}, collect(l, tail, 10), "root ends the walk")
	assert.Empty(t, collect(l, tail, 0))
	assert.Empty(t, collect(l, nil, 4))
	assert.Empty(t, collect(l, users.GetOrCreate(addr(99)), 4), "unregistered start")

	t.Run("restartable", func(t *testing.T) {
		seq := l.Upline(tail, 3)
		var first, second []uint64
		for _, u := range seq {
			first = append(first, u.ReferralID)
		}
		for _, u := range seq {
			second = append(second, u.ReferralID)
		}
		assert.Equal(t, []uint64{6, 5, 4}, first)
		assert.Equal(t, first, second)
	})

	t.Run("early_break", func(t *testing.T) {
		n := 0
		for range l.Upline(tail, 10) {
			n++
			if n == 2 {
				break
			}
		}
		assert.Equal(t, 2, n)
	})

	t.Run("unregistered_link", func(t *testing.T) {
		users := entity.NewUserStore()
		l := New(users)
		u := users.GetOrCreate(addr(1))
		l.Register(u, nil)
		// a link to an address the store never registered stops the walk
		u.ReferredBy = addr(77)
		assert.Equal(t, []common.Address{addr(1)}, collect(l, u, 4))
	})
}
