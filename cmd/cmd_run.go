package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/RishalEP/tenx-blockchain/common/errs"
	"github.com/RishalEP/tenx-blockchain/core"
	"github.com/RishalEP/tenx-blockchain/internal/config"
	"github.com/RishalEP/tenx-blockchain/modules/tenx"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/api/httphandler"
	"github.com/RishalEP/tenx-blockchain/pkg/automaxprocs"
	"github.com/RishalEP/tenx-blockchain/pkg/errorhandler"
	"github.com/RishalEP/tenx-blockchain/pkg/logger"
	"github.com/RishalEP/tenx-blockchain/pkg/logger/slogx"
	"github.com/RishalEP/tenx-blockchain/pkg/middleware/requestcontext"
	"github.com/RishalEP/tenx-blockchain/pkg/middleware/requestlogger"
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/do/v2"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"golang.org/x/sync/errgroup"
)

// Register Modules
var Modules = do.Package(
	do.LazyNamed(tenx.Name, tenx.New),
)

func NewRunCommand() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Start tenx accounting service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := automaxprocs.Init(); err != nil {
				logger.Error("Failed to set GOMAXPROCS", slogx.Error(err))
			}
			return runHandler(cmd, args)
		},
	}

	flags := runCmd.Flags()
	flags.Bool("api-only", false, "Run only API server, without the event recorder")
	flags.String("modules", tenx.Name, "Enable specific modules to run. E.g. `tenx`")

	config.BindPFlag("api_only", flags.Lookup("api-only"))
	config.BindPFlag("enable_modules", flags.Lookup("modules"))

	return runCmd
}

const (
	shutdownTimeout = 60 * time.Second
)

func runHandler(cmd *cobra.Command, _ []string) error {
	conf := config.Load()

	if !conf.Network.IsSupported() {
		return errors.Wrapf(errs.Unsupported, "%q network is not supported", conf.Network.String())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	injector := do.New(Modules)
	do.ProvideValue(injector, conf)
	do.ProvideValue(injector, ctx)

	do.Provide(injector, func(i do.Injector) (*fiber.App, error) {
		clientIP, err := requestcontext.WithClientIP(conf.HTTPServer.RequestIP)
		if err != nil {
			return nil, errors.Wrap(err, "invalid request ip configuration")
		}

		app := fiber.New(fiber.Config{
			AppName:      "TenX",
			ErrorHandler: errorhandler.NewHTTPErrorHandler(),
		})
		app.
			Use(favicon.New()).
			Use(cors.New()).
			Use(requestid.New(requestid.Config{Generator: uuid.NewString})).
			Use(requestcontext.New(
				requestcontext.WithRequestId(),
				clientIP,
				requestcontext.WithCaller(httphandler.CallerHeader),
			)).
			Use(requestlogger.New(conf.HTTPServer.Logger)).
			Use(fiberrecover.New(fiberrecover.Config{
				EnableStackTrace: true,
				StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
					buf := make([]byte, 1024)
					buf = buf[:runtime.Stack(buf, false)]
					logger.ErrorContext(c.UserContext(), "Something went wrong, panic in http handler", errors.Errorf("panic: %v", e), slog.String("stacktrace", string(buf)))
				},
			})).
			Use(compress.New(compress.Config{
				Level: compress.LevelDefault,
			}))

		// Health check
		app.Get("/", func(c *fiber.Ctx) error {
			return errors.WithStack(c.SendStatus(http.StatusOK))
		})
		if !conf.HTTPServer.DisableMetrics {
			app.Get("/metrics", func(c *fiber.Ctx) error {
				fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())(c.Context())
				return nil
			})
		}
		return app, nil
	})

	// Workers outlive the signal context so they can flush during shutdown.
	ctxWorker, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	ctxWorker = logger.WithContext(ctxWorker, slogx.Stringer("network", conf.Network))

	group, groupCtx := errgroup.WithContext(ctxWorker)

	modules := lo.Uniq(conf.EnableModules)
	modules = lo.Map(modules, func(item string, _ int) string { return strings.TrimSpace(item) })
	modules = lo.Filter(modules, func(item string, _ int) bool { return item != "" })
	for _, module := range modules {
		ctx := logger.WithContext(groupCtx, slogx.String("module", module))

		worker, err := do.InvokeNamed[core.Worker](injector, module)
		if err != nil {
			if errors.Is(err, do.ErrServiceNotFound) {
				return errors.Errorf("Module %q is not supported", module)
			}
			return errors.Wrapf(err, "can't init module %q", module)
		}
		if conf.APIOnly {
			continue
		}
		group.Go(func() error {
			logger.InfoContext(ctx, "Starting worker")
			return errors.Wrapf(worker.Run(ctx), "worker of module %q", module)
		})
	}

	httpServer := do.MustInvoke[*fiber.App](injector)
	go func() {
		defer stop()

		logger.InfoContext(ctx, "Started HTTP server", slog.Int("port", conf.HTTPServer.Port))
		if err := httpServer.Listen(fmt.Sprintf(":%d", conf.HTTPServer.Port)); err != nil {
			logger.ErrorContext(ctx, "Something went wrong, error during running HTTP server", err)
		}
	}()

	// stop the application when any worker stops
	go func() {
		defer stop()
		if err := group.Wait(); err != nil {
			logger.ErrorContext(ctx, "Worker stopped with error", err)
			return
		}
		logger.InfoContext(ctx, "Workers stopped. Stopping application...")
	}()

	logger.InfoContext(ctxWorker, "TenX started")

	<-ctx.Done()

	// Force shutdown if timeout exceeded or got signal again
	go func() {
		defer os.Exit(1)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		select {
		case <-ctx.Done():
			logger.FatalContext(ctx, "Received exit signal again. Force shutdown...")
		case <-time.After(shutdownTimeout + 15*time.Second):
			logger.FatalContext(ctx, "Shutdown timeout exceeded. Force shutdown...")
		}
	}()

	if err := httpServer.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.ErrorContext(ctx, "Failed to shutdown HTTP server", err)
	}
	if err := injector.Shutdown(); err != nil {
		logger.PanicContext(ctx, "Failed while gracefully shutting down", slogx.Error(err))
	}

	return nil
}
