package requestlogger

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/RishalEP/tenx-blockchain/common/errs"
	"github.com/RishalEP/tenx-blockchain/pkg/logger"
	"github.com/RishalEP/tenx-blockchain/pkg/logger/slogx"
	"github.com/RishalEP/tenx-blockchain/pkg/middleware/requestcontext"
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type Config struct {
	WithRequestHeader bool `mapstructure:"request_header"`

	// Disable drops INFO level request logs. Failed requests are still logged.
	Disable              bool     `mapstructure:"disable"`
	HiddenRequestHeaders []string `mapstructure:"hidden_request_headers"`
}

// New logs every completed request. Requests rejected with a domain error log
// at WARN with the error category, server errors at ERROR.
func New(config Config) fiber.Handler {
	hidden := lo.SliceToMap(config.HiddenRequestHeaders, func(h string) (string, struct{}) {
		return strings.TrimSpace(strings.ToLower(h)), struct{}{}
	})
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		latency := time.Since(start)
		status := c.Response().StatusCode()

		request := []any{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("route", c.Route().Path),
			slog.String("ip", requestcontext.GetClientIP(c.UserContext())),
			slog.String("user-agent", string(c.Context().UserAgent())),
			slog.Any("params", c.AllParams()),
			slog.Any("query", c.Queries()),
			slog.Int("length", len(c.Body())),
		}
		if caller, ok := requestcontext.GetCaller(c.UserContext()); ok {
			request = append(request, slogx.Address("caller", caller))
		}
		if config.WithRequestHeader {
			var headers []any
			for k, v := range c.GetReqHeaders() {
				if _, ok := hidden[strings.ToLower(k)]; !ok {
					headers = append(headers, slog.Any(k, v))
				}
			}
			request = append(request, slog.Group("header", headers...))
		}

		attrs := []slog.Attr{
			slog.String("event", "api_request"),
			slog.Group("request", request...),
			slog.Group("response",
				slog.Int("status", status),
				slog.Int("length", len(c.Response().Body())),
			),
			slog.Int64("latency", latency.Milliseconds()),
			slog.String("latencyHuman", latency.String()),
		}

		level := slog.LevelInfo
		switch {
		case err == nil && status >= http.StatusInternalServerError:
			level = slog.LevelError
			attrs = append(attrs, slog.Any("error", fiber.NewError(status)))
		case err != nil && isClientError(err):
			level = slog.LevelWarn
			attrs = append(attrs, slog.String("category", string(errs.Kind(err))), slog.String("error", err.Error()))
		case err != nil:
			level = slog.LevelError
			attrs = append(attrs, slog.Any("error", err))
		}

		if !config.Disable || level != slog.LevelInfo {
			logger.LogAttrs(c.UserContext(), level, "Request Completed", attrs...)
		}
		return errors.WithStack(err)
	}
}

// isClientError reports whether err will be answered with a 4xx by the error handler.
func isClientError(err error) bool {
	if errs.Kind(err) != "" {
		return true
	}
	public := new(errs.PublicError)
	if errors.As(err, &public) {
		return true
	}
	fiberErr := new(fiber.Error)
	return errors.As(err, &fiberErr) && fiberErr.Code < http.StatusInternalServerError
}
