package postgres

import (
	"encoding/json"
	"time"

	"github.com/RishalEP/tenx-blockchain/modules/tenx/datagateway"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/uint128"
	"github.com/jackc/pgx/v5/pgtype"
)

func uint128FromNumeric(src pgtype.Numeric) (uint128.Uint128, error) {
	if !src.Valid {
		return uint128.Zero, nil
	}
	bytes, err := src.MarshalJSON()
	if err != nil {
		return uint128.Zero, errors.WithStack(err)
	}
	result, err := uint128.FromString(string(bytes))
	if err != nil {
		return uint128.Zero, errors.WithStack(err)
	}
	return result, nil
}

func numericFromUint128(src uint128.Uint128) (pgtype.Numeric, error) {
	var result pgtype.Numeric
	if err := result.UnmarshalJSON([]byte(src.String())); err != nil {
		return pgtype.Numeric{}, errors.WithStack(err)
	}
	return result, nil
}

func timestampFromTime(t time.Time) pgtype.Timestamp {
	if t.IsZero() {
		return pgtype.Timestamp{}
	}
	return pgtype.Timestamp{Time: t.UTC(), Valid: true}
}

func timeFromTimestamp(src pgtype.Timestamp) time.Time {
	if !src.Valid {
		return time.Time{}
	}
	return src.Time.UTC()
}

// addressToText stores the zero address as an empty string.
func addressToText(addr common.Address) string {
	if addr == (common.Address{}) {
		return ""
	}
	return addr.Hex()
}

func addressFromText(s string) common.Address {
	if s == "" {
		return common.Address{}
	}
	return common.HexToAddress(s)
}

type eventRow struct {
	Seq       int64
	Name      string
	Account   string
	Payload   []byte
	CreatedAt pgtype.Timestamp
}

func mapEventRowToType(src eventRow) (datagateway.Event, error) {
	payload := make(map[string]any)
	if err := json.Unmarshal(src.Payload, &payload); err != nil {
		return datagateway.Event{}, errors.Wrapf(err, "can't decode payload of event %d", src.Seq)
	}
	return datagateway.Event{
		Seq:     uint64(src.Seq),
		Name:    entity.EventName(src.Name),
		At:      timeFromTimestamp(src.CreatedAt),
		Account: addressFromText(src.Account),
		Payload: payload,
	}, nil
}

type userRow struct {
	Address    string
	ReferralID int64
	ReferredBy string
	ValidUntil pgtype.Timestamp
	Suspended  bool
}

func mapUserRowToType(src userRow) entity.User {
	return entity.User{
		Address:    common.HexToAddress(src.Address),
		ReferralID: uint64(src.ReferralID),
		ReferredBy: addressFromText(src.ReferredBy),
		ValidUntil: timeFromTimestamp(src.ValidUntil),
		Suspended:  src.Suspended,
	}
}
