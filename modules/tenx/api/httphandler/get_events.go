package httphandler

import (
	"time"

	"github.com/RishalEP/tenx-blockchain/modules/tenx/datagateway"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

const defaultEventsLimit = 100

type getEventsRequest struct {
	Account string `query:"account" validate:"omitempty,eth_addr"`
	FromSeq uint64 `query:"fromSeq"`
	Limit   int32  `query:"limit" validate:"gte=0,lte=1000"`
}

type event struct {
	Seq     uint64           `json:"seq"`
	Name    entity.EventName `json:"name"`
	At      time.Time        `json:"at"`
	Payload map[string]any   `json:"payload"`
}

func (h *HttpHandler) GetEvents(ctx *fiber.Ctx) error {
	var req getEventsRequest
	if err := h.parse(ctx, &req); err != nil {
		return errors.WithStack(err)
	}
	if req.Limit == 0 {
		req.Limit = defaultEventsLimit
	}

	events, err := h.journal.GetEvents(ctx.UserContext(), datagateway.GetEventsParams{
		Account: parseAddress(req.Account),
		FromSeq: req.FromSeq,
		Limit:   req.Limit,
	})
	if err != nil {
		return errors.Wrap(err, "error during GetEvents")
	}
	return respond(ctx, lo.Map(events, func(e datagateway.Event, _ int) event {
		return event{Seq: e.Seq, Name: e.Name, At: e.At, Payload: e.Payload}
	}))
}
