package httpserver

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cristianortiz/harvestBid/internal/shared/apperr"
	"github.com/cristianortiz/harvestBid/internal/shared/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Server struct {
	app *fiber.App
}

var log = logger.GetLogger()

// Route registers a module's endpoints on the shared app.
type Route interface {
	Register(r fiber.Router)
}

// NewServer builds the fiber app with request logging, error mapping, /health and, when
// gatherer is not nil, /metrics.
func NewServer(gatherer prometheus.Gatherer, routes ...Route) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "harvestBid",
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler,
	})

	app.Use(func(c *fiber.Ctx) error {
		started := time.Now()
		err := c.Next()
		log.Info("HTTP request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("remote_addr", c.IP()),
			zap.Duration("took", time.Since(started)),
		)
		return err
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	for _, r := range routes {
		r.Register(app)
	}
	return &Server{app: app}
}

// App exposes the fiber app, mostly for app.Test in handler tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start listens on addr until SIGINT/SIGTERM, then drains in-flight requests.
func (s *Server) Start(addr string) error {
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		log.Info("Shutting down HTTP server...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.app.ShutdownWithContext(ctx)
	}()

	log.Info("HTTP server started", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// ErrorHandler turns use case errors into JSON answers. Unknown errors are logged and
// answered with a generic 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	status := apperr.HTTPStatus(err)
	if status == fiber.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(status).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
