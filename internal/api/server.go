package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/insightdelivered/statement-ledger/internal/logger"
)

// ServerConfig configures the fiber app.
type ServerConfig struct {
	BodyLimitMB int
	// Gatherer, when set, is served at /metrics.
	Gatherer prometheus.Gatherer
}

// NewApp builds the fiber app with middleware and routes.
func NewApp(h *Handler, cfg ServerConfig) *fiber.App {
	limit := cfg.BodyLimitMB
	if limit <= 0 {
		limit = 32
	}
	app := fiber.New(fiber.Config{
		AppName:               "statement-ledger",
		BodyLimit:             limit << 20,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	app.Use(requestLogger)

	if cfg.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}
	h.RegisterRoutes(app)
	return app
}

// requestLogger tags the request context with an ID and logs the outcome.
func requestLogger(c *fiber.Ctx) error {
	id := c.Get(fiber.HeaderXRequestID)
	if id == "" {
		id = logger.GenerateRequestID()
	}
	c.Set(fiber.HeaderXRequestID, id)

	ctx := logger.WithRequestID(c.UserContext(), id)
	c.SetUserContext(ctx)

	err := c.Next()
	logger.FromContext(ctx).Info("request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
	)
	return err
}

func errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	return writeError(c, status, err.Error())
}
