package entity

import (
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
)

// UserStore owns every user record. Records are created lazily and never deleted.
// It is not safe for concurrent use.
type UserStore struct {
	byAddress    map[common.Address]*User
	byReferralID map[uint64]*User
	lastID       uint64
}

func NewUserStore() *UserStore {
	return &UserStore{
		byAddress:    make(map[common.Address]*User),
		byReferralID: make(map[uint64]*User),
	}
}

// Get returns the user at addr, or nil.
func (s *UserStore) Get(addr common.Address) *User {
	return s.byAddress[addr]
}

// GetOrCreate returns the user at addr, creating an unregistered record on first use.
func (s *UserStore) GetOrCreate(addr common.Address) *User {
	if u, ok := s.byAddress[addr]; ok {
		return u
	}
	u := &User{Address: addr}
	s.byAddress[addr] = u
	return u
}

// ByReferralID returns the registered user with the given referral ID, or nil.
func (s *UserStore) ByReferralID(id uint64) *User {
	if id == 0 {
		return nil
	}
	return s.byReferralID[id]
}

// AssignReferralID gives u the next referral ID. It is a no-op when u already has one.
func (s *UserStore) AssignReferralID(u *User) uint64 {
	if u.ReferralID != 0 {
		return u.ReferralID
	}
	s.lastID++
	u.ReferralID = s.lastID
	s.byReferralID[u.ReferralID] = u
	return u.ReferralID
}

// LastReferralID returns the most recently assigned referral ID.
func (s *UserStore) LastReferralID() uint64 {
	return s.lastID
}

// Len returns the number of known users.
func (s *UserStore) Len() int {
	return len(s.byAddress)
}

// All returns copies of every user ordered by referral ID, unregistered users last.
func (s *UserStore) All() []User {
	users := make([]User, 0, len(s.byAddress))
	for _, u := range s.byAddress {
		users = append(users, *u)
	}
	slices.SortFunc(users, func(a, b User) int {
		switch {
		case a.ReferralID == b.ReferralID:
			return a.Address.Cmp(b.Address)
		case a.ReferralID == 0:
			return 1
		case b.ReferralID == 0:
			return -1
		case a.ReferralID < b.ReferralID:
			return -1
		default:
			return 1
		}
	})
	return users
}

// Restore loads previously persisted users into an empty store.
func (s *UserStore) Restore(users []User) error {
	if len(s.byAddress) > 0 {
		return errors.Wrap(ErrAlreadyExists, "user store is not empty")
	}
	for i := range users {
		u := users[i]
		if _, ok := s.byAddress[u.Address]; ok {
			return errors.Wrapf(ErrAlreadyExists, "duplicate user %s", u.Address)
		}
		if u.ReferralID != 0 {
			if _, ok := s.byReferralID[u.ReferralID]; ok {
				return errors.Wrapf(ErrAlreadyExists, "duplicate referral id %d", u.ReferralID)
			}
			s.byReferralID[u.ReferralID] = &u
			s.lastID = max(s.lastID, u.ReferralID)
		}
		s.byAddress[u.Address] = &u
	}
	return nil
}
