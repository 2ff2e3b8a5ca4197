package api

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/nikolaydubina/fpdecimal"
	"github.com/rs/zerolog/log"

	"github.com/openlob/openlob/pkg/engine"
	"github.com/openlob/openlob/pkg/messaging"
)

// ServiceName is reported by the health endpoint
const ServiceName = "openlob"

// Handler owns the HTTP surface over one Book. The optional sender
// publishes execution results to the broker after each mutation; a nil
// sender disables publishing.
type Handler struct {
	book   *engine.Book
	sender messaging.MessageSender

	defaultDepthLevels int
	maxDepthLevels     int
}

// NewHandler creates a Handler. sender may be nil.
func NewHandler(book *engine.Book, sender messaging.MessageSender, defaultDepthLevels, maxDepthLevels int) *Handler {
	if defaultDepthLevels <= 0 {
		defaultDepthLevels = 20
	}
	if maxDepthLevels <= 0 {
		maxDepthLevels = 100
	}
	return &Handler{
		book:               book,
		sender:             sender,
		defaultDepthLevels: defaultDepthLevels,
		maxDepthLevels:     maxDepthLevels,
	}
}

// CreateOrder handles POST /order
func (h *Handler) CreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn().
			Err(err).
			Str("ip", c.IP()).
			Str("path", c.Path()).
			Msg("Invalid request: malformed JSON")
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Invalid request: malformed JSON",
		})
	}

	side, ok := parseSide(req.Side)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Invalid order: side must be Buy or Sell",
		})
	}

	orderType, ok := parseOrderType(req.OrderType)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Invalid order: order_type must be Limit or Market",
		})
	}

	if req.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Invalid order: user_id is required",
		})
	}

	report, err := h.book.AddOrder(
		c.UserContext(),
		req.UserID,
		side,
		orderType,
		fpdecimal.FromFloat(req.Price),
		fpdecimal.FromFloat(req.Quantity),
	)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrInvalidQuantity):
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error: "Invalid order: quantity must be positive",
			})
		case errors.Is(err, engine.ErrInvalidPrice):
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error: "Invalid order: price must be positive for Limit orders",
			})
		default:
			log.Error().Err(err).Str("user_id", req.UserID).Msg("Error processing order")
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
				Error: "Internal server error",
			})
		}
	}

	log.Info().
		Uint64("order_id", report.OrderID).
		Str("user_id", req.UserID).
		Str("side", req.Side).
		Str("type", string(orderType)).
		Str("status", string(report.Status)).
		Int("fills", len(report.Fills)).
		Msg("Order processed")

	h.publish(toExecutionMessage(report))

	return c.Status(fiber.StatusOK).JSON(toCreateOrderResponse(report))
}

// CancelOrder handles DELETE /order
func (h *Handler) CancelOrder(c *fiber.Ctx) error {
	var req DeleteOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Invalid request: malformed JSON",
		})
	}

	orderID, err := strconv.ParseUint(req.OrderID, 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Invalid order_id",
		})
	}

	// Look up the side before the order disappears; only used for the
	// published message.
	var side engine.Side
	if o := h.book.GetOrder(orderID); o != nil {
		side = o.Side()
	}

	report, err := h.book.CancelOrder(c.UserContext(), orderID, req.UserID)
	if err != nil {
		// A failed lookup or ownership check is a normal outcome, not a
		// transport error: success=false with zeroed quantities.
		switch {
		case errors.Is(err, engine.ErrOrderNotFound):
			log.Warn().
				Uint64("order_id", orderID).
				Str("ip", c.IP()).
				Msg("Cancel order: order not found")
		case errors.Is(err, engine.ErrUnauthorized):
			log.Warn().
				Uint64("order_id", orderID).
				Str("user_id", req.UserID).
				Msg("Cancel order: not the owner")
		default:
			log.Error().Err(err).Uint64("order_id", orderID).Msg("Error cancelling order")
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
				Error: "Internal server error",
			})
		}
		return c.Status(fiber.StatusOK).JSON(DeleteOrderResponse{Success: false})
	}

	log.Info().
		Uint64("order_id", orderID).
		Str("user_id", req.UserID).
		Msg("Order cancelled")

	h.publish(cancelToExecutionMessage(report, req.UserID, side))

	return c.Status(fiber.StatusOK).JSON(DeleteOrderResponse{
		Success:           true,
		RemainingQuantity: report.RemainingQty.Float64(),
		FilledQuantity:    report.FilledQty.Float64(),
	})
}

// GetDepth handles GET /depth
func (h *Handler) GetDepth(c *fiber.Ctx) error {
	levels := c.QueryInt("levels", h.defaultDepthLevels)
	if levels <= 0 {
		levels = h.defaultDepthLevels
	}
	if levels > h.maxDepthLevels {
		levels = h.maxDepthLevels
	}

	return c.Status(fiber.StatusOK).JSON(toDepthResponse(h.book.Depth(levels)))
}

// GetStats handles GET /stats
func (h *Handler) GetStats(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(toStatsResponse(h.book.Stats()))
}

// Health handles GET /health
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(HealthResponse{
		Status:  "healthy",
		Service: ServiceName,
	})
}

// publish sends an execution message to the broker without blocking
// the request path.
func (h *Handler) publish(msg *messaging.ExecutionMessage) {
	if h.sender == nil {
		return
	}
	go func() {
		if err := h.sender.SendExecutionMessage(context.Background(), msg); err != nil {
			log.Warn().Err(err).Uint64("order_id", msg.OrderID).Msg("Failed to publish execution message")
		}
	}()
}

func parseSide(s string) (engine.Side, bool) {
	switch s {
	case "Buy":
		return engine.Buy, true
	case "Sell":
		return engine.Sell, true
	default:
		return 0, false
	}
}

func parseOrderType(s string) (engine.OrderType, bool) {
	switch s {
	case "", string(engine.TypeLimit):
		// Limit when omitted.
		return engine.TypeLimit, true
	case string(engine.TypeMarket):
		return engine.TypeMarket, true
	default:
		return "", false
	}
}
