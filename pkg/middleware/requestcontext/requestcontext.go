// Package requestcontext copies per-request values such as the request id,
// client IP and acting account into the request's user context and logger.
package requestcontext

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/RishalEP/tenx-blockchain/pkg/logger"
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
)

type Response struct {
	Error string `json:"error"`
}

type Option func(ctx context.Context, c *fiber.Ctx) (context.Context, error)

func New(opts ...Option) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var err error
		ctx := c.UserContext()
		for i, opt := range opts {
			ctx, err = opt(ctx, c)
			if err == nil {
				continue
			}
			if reject := (rejectError{}); errors.As(err, &reject) {
				return errors.WithStack(c.Status(reject.status).JSON(Response{Error: reject.message}))
			}
			logger.ErrorContext(ctx, "failed to extract request context", err,
				slog.String("event", "requestcontext/error"),
				slog.Int("optionIndex", i),
			)
			return errors.WithStack(c.Status(http.StatusInternalServerError).JSON(Response{Error: "internal server error"}))
		}
		c.SetUserContext(ctx)
		return c.Next()
	}
}
