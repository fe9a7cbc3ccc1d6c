package postgres

import (
	"context"
	"encoding/json"

	"github.com/RishalEP/tenx-blockchain/internal/postgres"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/datagateway"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var _ datagateway.TenxDataGateway = (*Repository)(nil)

type Repository struct {
	db postgres.DB
	tx pgx.Tx
}

func NewRepository(db postgres.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) queryable() postgres.Queryable {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *Repository) sendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	if r.tx != nil {
		return r.tx.SendBatch(ctx, b)
	}
	return r.db.SendBatch(ctx, b)
}

const addEventQuery = `INSERT INTO tenx_events (seq, name, account, payload, created_at) VALUES ($1, $2, $3, $4, $5)`

func (r *Repository) AddEvent(ctx context.Context, record entity.Record) error {
	payload, err := json.Marshal(record.Event.Payload())
	if err != nil {
		return errors.Wrap(err, "can't encode event payload")
	}
	_, err = r.queryable().Exec(ctx, addEventQuery,
		int64(record.Seq),
		string(record.Event.Name()),
		addressToText(entity.Subject(record.Event)),
		payload,
		timestampFromTime(record.At),
	)
	if err != nil {
		return errors.Wrap(err, "can't add event")
	}
	return nil
}

const getEventsQuery = `SELECT seq, name, account, payload, created_at FROM tenx_events
WHERE seq >= $1 AND ($2::TEXT = '' OR account = $2)
ORDER BY seq ASC
LIMIT $3`

func (r *Repository) GetEvents(ctx context.Context, params datagateway.GetEventsParams) ([]datagateway.Event, error) {
	rows, err := r.queryable().Query(ctx, getEventsQuery, int64(params.FromSeq), addressToText(params.Account), params.Limit)
	if err != nil {
		return nil, errors.Wrap(err, "can't get events")
	}
	defer rows.Close()

	var events []datagateway.Event
	for rows.Next() {
		var row eventRow
		if err := rows.Scan(&row.Seq, &row.Name, &row.Account, &row.Payload, &row.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "can't scan event")
		}
		event, err := mapEventRowToType(row)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "can't read events")
	}
	return events, nil
}

const upsertUserQuery = `INSERT INTO tenx_users (address, referral_id, referred_by, valid_until, suspended) VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (address) DO UPDATE SET
	referral_id = EXCLUDED.referral_id,
	referred_by = EXCLUDED.referred_by,
	valid_until = EXCLUDED.valid_until,
	suspended = EXCLUDED.suspended`

func (r *Repository) UpsertUsers(ctx context.Context, users []entity.User) error {
	if len(users) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, u := range users {
		batch.Queue(upsertUserQuery,
			u.Address.Hex(),
			int64(u.ReferralID),
			addressToText(u.ReferredBy),
			timestampFromTime(u.ValidUntil),
			u.Suspended,
		)
	}
	results := r.sendBatch(ctx, batch)
	defer results.Close()
	for _, u := range users {
		if _, err := results.Exec(); err != nil {
			return errors.Wrapf(err, "can't upsert user %s", u.Address)
		}
	}
	return errors.Wrap(results.Close(), "can't close batch")
}

const getUsersQuery = `SELECT address, referral_id, referred_by, valid_until, suspended FROM tenx_users ORDER BY referral_id ASC, address ASC`

func (r *Repository) GetUsers(ctx context.Context) ([]entity.User, error) {
	rows, err := r.queryable().Query(ctx, getUsersQuery)
	if err != nil {
		return nil, errors.Wrap(err, "can't get users")
	}
	defer rows.Close()

	var users []entity.User
	for rows.Next() {
		var row userRow
		if err := rows.Scan(&row.Address, &row.ReferralID, &row.ReferredBy, &row.ValidUntil, &row.Suspended); err != nil {
			return nil, errors.Wrap(err, "can't scan user")
		}
		users = append(users, mapUserRowToType(row))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "can't read users")
	}
	return users, nil
}

const getStateQuery = `SELECT last_seq, failed_transfers, paused FROM tenx_state WHERE id = 1`

func (r *Repository) GetState(ctx context.Context) (datagateway.State, error) {
	var (
		lastSeq int64
		failed  pgtype.Numeric
		paused  bool
	)
	err := r.queryable().QueryRow(ctx, getStateQuery).Scan(&lastSeq, &failed, &paused)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return datagateway.State{}, nil
		}
		return datagateway.State{}, errors.Wrap(err, "can't get state")
	}
	failedTransfers, err := uint128FromNumeric(failed)
	if err != nil {
		return datagateway.State{}, errors.Wrap(err, "can't parse failed transfers")
	}
	return datagateway.State{
		LastSeq:         uint64(lastSeq),
		FailedTransfers: failedTransfers,
		Paused:          paused,
	}, nil
}

const setStateQuery = `INSERT INTO tenx_state (id, last_seq, failed_transfers, paused, updated_at) VALUES (1, $1, $2, $3, CURRENT_TIMESTAMP)
ON CONFLICT (id) DO UPDATE SET
	last_seq = EXCLUDED.last_seq,
	failed_transfers = EXCLUDED.failed_transfers,
	paused = EXCLUDED.paused,
	updated_at = EXCLUDED.updated_at`

func (r *Repository) SetState(ctx context.Context, state datagateway.State) error {
	failed, err := numericFromUint128(state.FailedTransfers)
	if err != nil {
		return errors.WithStack(err)
	}
	if _, err := r.queryable().Exec(ctx, setStateQuery, int64(state.LastSeq), failed, state.Paused); err != nil {
		return errors.Wrap(err, "can't set state")
	}
	return nil
}
