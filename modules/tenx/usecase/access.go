package usecase

import (
	"slices"
	"sync"

	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
)

// AccessControl decides who may run administrative operations.
type AccessControl interface {
	IsAdminOrManager(account common.Address) bool
}

var _ AccessControl = (*Roles)(nil)

// Roles is an admin with a set of managers. Only the admin can change the
// manager set.
type Roles struct {
	mu       sync.RWMutex
	admin    common.Address
	managers map[common.Address]struct{}
}

func NewRoles(admin common.Address, managers ...common.Address) *Roles {
	return &Roles{
		admin: admin,
		managers: lo.SliceToMap(managers, func(m common.Address) (common.Address, struct{}) {
			return m, struct{}{}
		}),
	}
}

func (r *Roles) IsAdminOrManager(account common.Address) bool {
	if account == (common.Address{}) {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if account == r.admin {
		return true
	}
	_, ok := r.managers[account]
	return ok
}

func (r *Roles) Admin() common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.admin
}

// Managers returns the managers sorted by address.
func (r *Roles) Managers() []common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	managers := lo.Keys(r.managers)
	slices.SortFunc(managers, func(a, b common.Address) int { return a.Cmp(b) })
	return managers
}

func (r *Roles) GrantManager(caller, account common.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if caller != r.admin {
		return errors.Wrapf(entity.ErrUnauthorized, "%s is not admin", caller)
	}
	if account == (common.Address{}) {
		return errors.Wrap(entity.ErrInvalidArgument, "manager is zero address")
	}
	if _, ok := r.managers[account]; ok {
		return errors.Wrapf(entity.ErrAlreadyInState, "%s is already a manager", account)
	}
	r.managers[account] = struct{}{}
	return nil
}

func (r *Roles) RevokeManager(caller, account common.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if caller != r.admin {
		return errors.Wrapf(entity.ErrUnauthorized, "%s is not admin", caller)
	}
	if _, ok := r.managers[account]; !ok {
		return errors.Wrapf(entity.ErrAlreadyInState, "%s is not a manager", account)
	}
	delete(r.managers, account)
	return nil
}
