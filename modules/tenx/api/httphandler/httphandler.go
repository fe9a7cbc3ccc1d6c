package httphandler

import (
	"github.com/RishalEP/tenx-blockchain/common/errs"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/accounting"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/datagateway"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/rails"
	"github.com/RishalEP/tenx-blockchain/pkg/decimals"
	"github.com/RishalEP/tenx-blockchain/pkg/middleware/requestcontext"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/uint128"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CallerHeader carries the account a request acts as. It is trusted as sent,
// so it must be set by an authenticating proxy.
const CallerHeader = "X-Caller"

type HttpHandler struct {
	core     *accounting.Core
	journal  datagateway.TenxReaderDataGateway
	rails    *rails.Memory
	validate *validator.Validate
}

func New(core *accounting.Core, journal datagateway.TenxReaderDataGateway, rails *rails.Memory) *HttpHandler {
	return &HttpHandler{
		core:     core,
		journal:  journal,
		rails:    rails,
		validate: validator.New(),
	}
}

// parse reads path params, query and body into req and validates it.
func (h *HttpHandler) parse(ctx *fiber.Ctx, req any) error {
	if err := ctx.ParamsParser(req); err != nil {
		return errors.WithStack(err)
	}
	if err := ctx.QueryParser(req); err != nil {
		return errors.WithStack(err)
	}
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(req); err != nil {
			return errs.WithPublicMessage(err, "invalid request body")
		}
	}
	if err := h.validate.Struct(req); err != nil {
		return errs.WithPublicMessage(err, "validation error")
	}
	return nil
}

// parseCaller returns the account the request acts as, taken from the request
// context when the caller middleware ran, else from the caller header.
func parseCaller(ctx *fiber.Ctx) (common.Address, error) {
	if caller, ok := requestcontext.GetCaller(ctx.UserContext()); ok {
		return caller, nil
	}
	value := ctx.Get(CallerHeader)
	if !common.IsHexAddress(value) {
		return common.Address{}, errors.Wrapf(entity.ErrUnauthorized, "%s header is missing or invalid", CallerHeader)
	}
	return common.HexToAddress(value), nil
}

// parseAddress parses a validated address field, mapping the empty string to the zero address.
func parseAddress(s string) common.Address {
	if s == "" {
		return common.Address{}
	}
	return common.HexToAddress(s)
}

func parseAmount(s string) (uint128.Uint128, error) {
	if s == "" {
		return uint128.Zero, nil
	}
	v, err := decimals.ParseUint128(s, 0)
	if err != nil {
		return uint128.Zero, errs.WithPublicMessage(err, "invalid amount")
	}
	return v, nil
}

func respond[T any](ctx *fiber.Ctx, result T) error {
	return errors.WithStack(ctx.JSON(HttpResponse[T]{Result: &result}))
}

type HttpResponse[T any] struct {
	Error  *string `json:"error"`
	Result *T      `json:"result,omitempty"`
}
