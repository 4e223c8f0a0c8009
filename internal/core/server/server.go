package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"storefront-api/internal/core/config"
	"storefront-api/internal/core/logger"

	"github.com/gofiber/contrib/fiberzap/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	_ "storefront-api/docs/swagger"
)

const tracerName = "storefront-api/http"

// HealthCheck is a named dependency probe run by GET /healthz.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Server holds the Fiber application and configuration.
type Server struct {
	// App is the main Fiber application instance.
	App *fiber.App
	// cfg holds the application configuration.
	cfg    *config.AppConfig
	checks []HealthCheck
}

// New creates a new Server instance with configured middleware. gatherer backs
// GET /metrics; nil disables the endpoint.
func New(cfg *config.AppConfig, gatherer prometheus.Gatherer, checks ...HealthCheck) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		AppName:               "storefront-api",
	})

	app.Use(recover.New())

	app.Use(requestid.New(requestid.Config{
		Header: "X-Ray-ID",
	}))

	app.Use(traceRequest)

	app.Use(fiberzap.New(fiberzap.Config{
		Logger: logger.Get(),
	}))

	app.Use(requestLogger)

	app.Get("/swagger/*", swagger.HandlerDefault)

	s := &Server{
		App:    app,
		cfg:    cfg,
		checks: checks,
	}

	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	app.Get("/healthz", s.health)

	return s
}

// traceRequest continues the caller's W3C trace, or starts one, and runs the
// rest of the chain inside a server span.
func traceRequest(c *fiber.Ctx) error {
	ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))
	ctx, span := otel.Tracer(tracerName).Start(ctx, c.Method(),
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.request.method", c.Method()),
			attribute.String("url.path", c.Path()),
			attribute.String("ray_id", RayID(c)),
		),
	)
	defer span.End()
	c.SetUserContext(ctx)

	err := c.Next()

	status := c.Response().StatusCode()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	span.SetName(c.Method() + " " + c.Route().Path)
	span.SetAttributes(attribute.Int("http.response.status_code", status))
	if err != nil {
		span.RecordError(err)
	}
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
	return err
}

// requestLogger puts a logger tagged with the ray id on the request context.
func requestLogger(c *fiber.Ctx) error {
	l := logger.Get().With(zap.String("ray_id", RayID(c)))
	c.SetUserContext(logger.WithContext(c.UserContext(), l))
	return c.Next()
}

// health handles GET /healthz.
// @Summary Liveness and dependency check
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /healthz [get]
func (s *Server) health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok"}
	status := http.StatusOK
	for _, check := range s.checks {
		if resp.Checks == nil {
			resp.Checks = make(map[string]string, len(s.checks))
		}
		if err := check.Ping(ctx); err != nil {
			logger.FromContext(ctx).Warn("Health check failed", zap.String("check", check.Name), zap.Error(err))
			resp.Checks[check.Name] = "down"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[check.Name] = "up"
	}
	return c.Status(status).JSON(resp)
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.cfg.ServerPort)
	logger.Get().Info("Starting server", zap.String("address", addr))
	return s.App.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.App.ShutdownWithContext(ctx)
}
