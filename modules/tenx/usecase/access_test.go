package usecase

import (
	"testing"

	"github.com/RishalEP/tenx-blockchain/common/errs"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoles(t *testing.T) {
	admin := common.HexToAddress("0xad")
	m1 := common.HexToAddress("0x01")
	m2 := common.HexToAddress("0x02")
	stranger := common.HexToAddress("0x99")

	roles := NewRoles(admin, m2)
	assert.True(t, roles.IsAdminOrManager(admin))
	assert.True(t, roles.IsAdminOrManager(m2))
	assert.False(t, roles.IsAdminOrManager(m1))
	assert.False(t, roles.IsAdminOrManager(common.Address{}))

	err := roles.GrantManager(m2, m1)
	assert.ErrorIs(t, err, entity.ErrUnauthorized)
	assert.True(t, errors.Is(err, errs.Unauthorized))

	require.NoError(t, roles.GrantManager(admin, m1))
	assert.True(t, roles.IsAdminOrManager(m1))
	assert.Equal(t, []common.Address{m1, m2}, roles.Managers())
	assert.ErrorIs(t, roles.GrantManager(admin, m1), entity.ErrAlreadyInState)
	assert.ErrorIs(t, roles.GrantManager(admin, common.Address{}), entity.ErrInvalidArgument)

	require.NoError(t, roles.RevokeManager(admin, m2))
	assert.False(t, roles.IsAdminOrManager(m2))
	assert.ErrorIs(t, roles.RevokeManager(admin, stranger), entity.ErrAlreadyInState)
	assert.Equal(t, admin, roles.Admin())
}
