// Package bolt is a TenxDataGateway stored in a single bbolt file, for
// deployments that need a durable journal without running postgres.
package bolt

import (
	"cmp"
	"context"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/RishalEP/tenx-blockchain/modules/tenx/datagateway"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/uint128"
	"go.etcd.io/bbolt"
)

var ErrTxAlreadyExists = errors.New("Transaction already exists. Call Commit() or Rollback() first.")

var (
	bucketEvents = []byte("events")
	bucketUsers  = []byte("users")
	bucketState  = []byte("state")

	keyState = []byte("state")
)

const openTimeout = 5 * time.Second

var _ datagateway.TenxDataGateway = (*Repository)(nil)

// Repository writes straight to the file, or stages writes and applies them
// in one bbolt transaction on Commit when it was returned by BeginTenxTx.
type Repository struct {
	db *bbolt.DB

	inTx    bool
	pending []func(*bbolt.Tx) error
}

// Open opens or creates the journal at path. The parent directory is created
// if it does not exist.
func Open(path string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "can't create journal directory")
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, errors.Wrapf(err, "can't open journal %q", path)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketEvents, bucketUsers, bucketState} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return errors.Wrapf(err, "can't create bucket %q", name)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.WithStack(err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return errors.WithStack(r.db.Close())
}

func (r *Repository) BeginTenxTx(context.Context) (datagateway.TenxDataGatewayWithTx, error) {
	if r.inTx {
		return nil, errors.WithStack(ErrTxAlreadyExists)
	}
	return &Repository{db: r.db, inTx: true}, nil
}

func (r *Repository) Commit(context.Context) error {
	if !r.inTx {
		return nil
	}
	pending := r.pending
	r.pending = nil
	r.inTx = false
	err := r.db.Update(func(tx *bbolt.Tx) error {
		for _, apply := range pending {
			if err := apply(tx); err != nil {
				return err
			}
		}
		return nil
	})
	return errors.Wrap(err, "failed to commit transaction")
}

func (r *Repository) Rollback(context.Context) error {
	r.pending = nil
	r.inTx = false
	return nil
}

func (r *Repository) write(apply func(*bbolt.Tx) error) error {
	if r.inTx {
		r.pending = append(r.pending, apply)
		return nil
	}
	return errors.WithStack(r.db.Update(apply))
}

func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}

type eventRecord struct {
	Name    entity.EventName `json:"name"`
	At      time.Time        `json:"at"`
	Account common.Address   `json:"account"`
	Payload json.RawMessage  `json:"payload"`
}

func (r *Repository) AddEvent(_ context.Context, record entity.Record) error {
	payload, err := json.Marshal(record.Event.Payload())
	if err != nil {
		return errors.Wrap(err, "can't encode event payload")
	}
	data, err := json.Marshal(eventRecord{
		Name:    record.Event.Name(),
		At:      record.At.UTC(),
		Account: entity.Subject(record.Event),
		Payload: payload,
	})
	if err != nil {
		return errors.Wrap(err, "can't encode event")
	}
	return r.write(func(tx *bbolt.Tx) error {
		return errors.Wrapf(tx.Bucket(bucketEvents).Put(seqKey(record.Seq), data), "can't add event %d", record.Seq)
	})
}

func (r *Repository) GetEvents(_ context.Context, params datagateway.GetEventsParams) ([]datagateway.Event, error) {
	var events []datagateway.Event
	err := r.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketEvents).Cursor()
		for k, v := c.Seek(seqKey(params.FromSeq)); k != nil; k, v = c.Next() {
			if params.Limit > 0 && len(events) >= int(params.Limit) {
				break
			}
			var record eventRecord
			if err := json.Unmarshal(v, &record); err != nil {
				return errors.Wrapf(err, "can't decode event %x", k)
			}
			if params.Account != (common.Address{}) && record.Account != params.Account {
				continue
			}
			payload := make(map[string]any)
			if err := json.Unmarshal(record.Payload, &payload); err != nil {
				return errors.Wrapf(err, "can't decode payload of event %x", k)
			}
			events = append(events, datagateway.Event{
				Seq:     binary.BigEndian.Uint64(k),
				Name:    record.Name,
				At:      record.At,
				Account: record.Account,
				Payload: payload,
			})
		}
		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return events, nil
}

type userRecord struct {
	ReferralID uint64         `json:"referralId"`
	ReferredBy common.Address `json:"referredBy"`
	ValidUntil time.Time      `json:"validUntil"`
	Suspended  bool           `json:"suspended"`
}

func (r *Repository) UpsertUsers(_ context.Context, users []entity.User) error {
	keys := make([][]byte, 0, len(users))
	values := make([][]byte, 0, len(users))
	for _, u := range users {
		data, err := json.Marshal(userRecord{
			ReferralID: u.ReferralID,
			ReferredBy: u.ReferredBy,
			ValidUntil: u.ValidUntil.UTC(),
			Suspended:  u.Suspended,
		})
		if err != nil {
			return errors.Wrapf(err, "can't encode user %s", u.Address)
		}
		keys = append(keys, u.Address.Bytes())
		values = append(values, data)
	}
	return r.write(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketUsers)
		for i := range keys {
			if err := b.Put(keys[i], values[i]); err != nil {
				return errors.Wrap(err, "can't upsert user")
			}
		}
		return nil
	})
}

func (r *Repository) GetUsers(context.Context) ([]entity.User, error) {
	var users []entity.User
	err := r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketUsers).ForEach(func(k, v []byte) error {
			var record userRecord
			if err := json.Unmarshal(v, &record); err != nil {
				return errors.Wrapf(err, "can't decode user %x", k)
			}
			users = append(users, entity.User{
				Address:    common.BytesToAddress(k),
				ReferralID: record.ReferralID,
				ReferredBy: record.ReferredBy,
				ValidUntil: record.ValidUntil,
				Suspended:  record.Suspended,
			})
			return nil
		})
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	slices.SortFunc(users, func(a, b entity.User) int {
		if c := cmp.Compare(a.ReferralID, b.ReferralID); c != 0 {
			return c
		}
		return a.Address.Cmp(b.Address)
	})
	return users, nil
}

type stateRecord struct {
	LastSeq         uint64 `json:"lastSeq"`
	FailedTransfers string `json:"failedTransfers"`
	Paused          bool   `json:"paused"`
}

func (r *Repository) SetState(_ context.Context, state datagateway.State) error {
	data, err := json.Marshal(stateRecord{
		LastSeq:         state.LastSeq,
		FailedTransfers: state.FailedTransfers.String(),
		Paused:          state.Paused,
	})
	if err != nil {
		return errors.Wrap(err, "can't encode state")
	}
	return r.write(func(tx *bbolt.Tx) error {
		return errors.Wrap(tx.Bucket(bucketState).Put(keyState, data), "can't set state")
	})
}

func (r *Repository) GetState(context.Context) (datagateway.State, error) {
	var state datagateway.State
	err := r.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketState).Get(keyState)
		if data == nil {
			return nil
		}
		var record stateRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return errors.Wrap(err, "can't decode state")
		}
		failed, err := uint128.FromString(record.FailedTransfers)
		if err != nil {
			return errors.Wrap(err, "invalid failed transfer amount")
		}
		state = datagateway.State{
			LastSeq:         record.LastSeq,
			FailedTransfers: failed,
			Paused:          record.Paused,
		}
		return nil
	})
	if err != nil {
		return datagateway.State{}, errors.WithStack(err)
	}
	return state, nil
}
