package errorhandler

import (
	"net/http"

	"github.com/RishalEP/tenx-blockchain/common/errs"
	"github.com/RishalEP/tenx-blockchain/pkg/logger"
	"github.com/RishalEP/tenx-blockchain/pkg/logger/slogx"
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
)

// StatusCode returns the HTTP status of an error category, or 0 if err carries none.
func StatusCode(err error) int {
	switch errs.Kind(err) {
	case errs.NotFound:
		return http.StatusNotFound
	case errs.Unauthorized:
		return http.StatusForbidden
	case errs.State:
		return http.StatusConflict
	case errs.Validation, errs.Referral, errs.Payment, errs.InvalidArgument:
		return http.StatusBadRequest
	case errs.TransferFailure:
		return http.StatusUnprocessableEntity
	default:
		return 0
	}
}

func NewHTTPErrorHandler() func(ctx *fiber.Ctx, err error) error {
	return func(ctx *fiber.Ctx, err error) error {
		if e := new(errs.PublicError); errors.As(err, &e) {
			status := StatusCode(err)
			if status == 0 {
				status = http.StatusBadRequest
			}
			return errors.WithStack(ctx.Status(status).JSON(map[string]any{
				"error": e.Message(),
				"code":  e.Code(),
			}))
		}
		if status := StatusCode(err); status != 0 {
			return errors.WithStack(ctx.Status(status).JSON(map[string]any{
				"error": err.Error(),
				"code":  string(errs.Kind(err)),
			}))
		}
		if e := new(fiber.Error); errors.As(err, &e) {
			return errors.WithStack(ctx.Status(e.Code).SendString(e.Error()))
		}

		logger.ErrorContext(ctx.UserContext(), "Something went wrong, unhandled api error", err,
			slogx.String("event", "api_unhandled_error"),
		)

		return errors.WithStack(ctx.Status(http.StatusInternalServerError).JSON(map[string]any{
			"error": "Internal Server Error",
		}))
	}
}
