package api

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	otelglobal "go.opentelemetry.io/otel"
	"golang.org/x/time/rate"

	"github.com/openlob/openlob/pkg/otel"
)

// RequestLogger logs one line per request with method, path, status
// and latency.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		log.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("ip", c.IP()).
			Int("status", c.Response().StatusCode()).
			Int64("latency_ms", time.Since(start).Milliseconds()).
			Msg("HTTP request")

		return err
	}
}

// RateLimiter applies a per-client token bucket. Clients are keyed by
// IP; buckets are created on first sight and never expire, which is
// acceptable for the expected client population.
type RateLimiter struct {
	rps   rate.Limit
	burst int

	mu      sync.Mutex
	clients map[string]*rate.Limiter
}

// NewRateLimiter creates a limiter allowing rps sustained requests per
// second with the given burst per client.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		clients: make(map[string]*rate.Limiter),
	}
}

func (rl *RateLimiter) limiter(clientIP string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	lim, ok := rl.clients[clientIP]
	if !ok {
		lim = rate.NewLimiter(rl.rps, rl.burst)
		rl.clients[clientIP] = lim
	}
	return lim
}

// Middleware rejects requests over the limit with 429
func (rl *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !rl.limiter(c.IP()).Allow() {
			log.Warn().
				Str("client_ip", c.IP()).
				Str("path", c.Path()).
				Str("method", c.Method()).
				Msg("Rate limit exceeded")
			return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
				Error: "Rate limit exceeded",
			})
		}
		return c.Next()
	}
}

// Telemetry records request counts, latency and error totals for every
// route. A failed instrument setup disables the middleware rather than
// the server.
func Telemetry() fiber.Handler {
	metrics, err := otel.GetHTTPServerMetrics(otelglobal.GetMeterProvider().Meter("github.com/openlob/openlob/pkg/api"))
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize HTTP metrics - continuing without them")
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		start := time.Now()

		metrics.IncRequests(ctx, c.Method(), c.Path())
		metrics.AddInFlightRequests(ctx, 1)

		err := c.Next()

		metrics.AddInFlightRequests(ctx, -1)
		status := c.Response().StatusCode()
		metrics.RecordLatency(ctx, c.Method(), c.Route().Path, time.Since(start), status)
		if status >= fiber.StatusInternalServerError {
			metrics.IncErrors(ctx, c.Method(), c.Route().Path, status)
		}

		return err
	}
}
