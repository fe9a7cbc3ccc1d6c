package requestcontext

import (
	"context"

	"github.com/RishalEP/tenx-blockchain/pkg/logger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
)

type callerKey struct{}

// WithCaller stores the account named by header and adds it to the context logger.
// A malformed value is rejected with 400; a missing one is left to the handlers.
func WithCaller(header string) Option {
	return func(ctx context.Context, c *fiber.Ctx) (context.Context, error) {
		value := c.Get(header)
		if value == "" {
			return ctx, nil
		}
		if !common.IsHexAddress(value) {
			return nil, rejectError{status: fiber.StatusBadRequest, message: header + " is not an address"}
		}
		caller := common.HexToAddress(value)
		ctx = context.WithValue(ctx, callerKey{}, caller)
		return logger.WithContext(ctx, "caller", caller.Hex()), nil
	}
}

// GetCaller returns the account stored by [WithCaller].
func GetCaller(ctx context.Context) (common.Address, bool) {
	caller, ok := ctx.Value(callerKey{}).(common.Address)
	return caller, ok
}
