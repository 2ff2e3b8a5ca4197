package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RouterConfig carries the middleware knobs for SetupRoutes
type RouterConfig struct {
	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int
}

// SetupRoutes wires the HTTP and WebSocket surface onto the app. The
// hub is optional; without it /ws is not registered.
func SetupRoutes(app *fiber.App, handler *Handler, hub *Hub, cfg RouterConfig) {
	app.Use(RequestLogger())
	app.Use(Telemetry())

	if cfg.RateLimitEnabled {
		limiter := NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		app.Use(limiter.Middleware())
	}

	app.Get("/health", handler.Health)
	app.Get("/depth", handler.GetDepth)
	app.Get("/stats", handler.GetStats)
	app.Post("/order", handler.CreateOrder)
	app.Delete("/order", handler.CancelOrder)

	if hub != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", websocket.New(hub.Handler()))
	}
}

// NewApp creates the fiber application with JSON error handling
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		AppName:               ServiceName,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(ErrorResponse{Error: err.Error()})
		},
	})
}
