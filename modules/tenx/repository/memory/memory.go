// Package memory is a TenxDataGateway kept in process memory, used when no
// database is configured.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/RishalEP/tenx-blockchain/modules/tenx/datagateway"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
)

var ErrTxAlreadyExists = errors.New("Transaction already exists. Call Commit() or Rollback() first.")

var _ datagateway.TenxDataGateway = (*Repository)(nil)

type store struct {
	mu     sync.RWMutex
	events []datagateway.Event
	users  map[common.Address]entity.User
	state  datagateway.State
}

// Repository writes straight to the store, or stages writes until Commit
// when it was returned by BeginTenxTx.
type Repository struct {
	store *store

	inTx    bool
	pending []func(*store)
}

func NewRepository() *Repository {
	return &Repository{store: &store{users: make(map[common.Address]entity.User)}}
}

func (r *Repository) BeginTenxTx(context.Context) (datagateway.TenxDataGatewayWithTx, error) {
	if r.inTx {
		return nil, errors.WithStack(ErrTxAlreadyExists)
	}
	return &Repository{store: r.store, inTx: true}, nil
}

func (r *Repository) Commit(context.Context) error {
	if !r.inTx {
		return nil
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, apply := range r.pending {
		apply(r.store)
	}
	r.pending = nil
	r.inTx = false
	return nil
}

func (r *Repository) Rollback(context.Context) error {
	r.pending = nil
	r.inTx = false
	return nil
}

func (r *Repository) write(apply func(*store)) {
	if r.inTx {
		r.pending = append(r.pending, apply)
		return
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	apply(r.store)
}

func (r *Repository) AddEvent(_ context.Context, record entity.Record) error {
	event := datagateway.Event{
		Seq:     record.Seq,
		Name:    record.Event.Name(),
		At:      record.At,
		Account: entity.Subject(record.Event),
		Payload: record.Event.Payload(),
	}
	r.write(func(s *store) { s.events = append(s.events, event) })
	return nil
}

func (r *Repository) UpsertUsers(_ context.Context, users []entity.User) error {
	users = slices.Clone(users)
	r.write(func(s *store) {
		for _, u := range users {
			s.users[u.Address] = u
		}
	})
	return nil
}

func (r *Repository) SetState(_ context.Context, state datagateway.State) error {
	r.write(func(s *store) { s.state = state })
	return nil
}

func (r *Repository) GetEvents(_ context.Context, params datagateway.GetEventsParams) ([]datagateway.Event, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var events []datagateway.Event
	for _, event := range r.store.events {
		if params.Limit > 0 && len(events) >= int(params.Limit) {
			break
		}
		if event.Seq < params.FromSeq {
			continue
		}
		if params.Account != (common.Address{}) && event.Account != params.Account {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func (r *Repository) GetUsers(context.Context) ([]entity.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	users := slices.Collect(maps.Values(r.store.users))
	slices.SortFunc(users, func(a, b entity.User) int {
		if a.ReferralID != b.ReferralID {
			if a.ReferralID < b.ReferralID {
				return -1
			}
			return 1
		}
		return a.Address.Cmp(b.Address)
	})
	return users, nil
}

func (r *Repository) GetState(context.Context) (datagateway.State, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.store.state, nil
}
