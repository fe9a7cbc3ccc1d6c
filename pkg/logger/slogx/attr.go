package slogx

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/uint128"
)

// Keys for log attributes.
const (
	ErrorKey           = "error"
	ErrorVerboseKey    = "error_verbose"
	ErrorStackTraceKey = "error_stacktrace"
)

// Error returns an slog.Attr for an error value.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any(ErrorKey, err)
}

func String(key, value string) slog.Attr {
	return slog.String(key, value)
}

func Stringer(key string, value fmt.Stringer) slog.Attr {
	return slog.String(key, value.String())
}

func Int(key string, value int) slog.Attr {
	return slog.Int64(key, int64(value))
}

func Uint64(key string, v uint64) slog.Attr {
	return slog.Uint64(key, v)
}

// Time discards the monotonic portion of v.
func Time(key string, v time.Time) slog.Attr {
	return slog.Time(key, v)
}

// Address logs an account in its checksummed hex form.
func Address(key string, addr common.Address) slog.Attr {
	return slog.String(key, addr.Hex())
}

// Amount logs a base-unit amount as a decimal string so it survives JSON
// output without float rounding.
func Amount(key string, v uint128.Uint128) slog.Attr {
	return slog.String(key, v.String())
}
