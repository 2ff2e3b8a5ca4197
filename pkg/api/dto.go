package api

import (
	"strconv"

	"github.com/openlob/openlob/pkg/engine"
	"github.com/openlob/openlob/pkg/messaging"
)

// CreateOrderRequest is the POST /order body. Order type defaults to
// Limit when omitted.
type CreateOrderRequest struct {
	Price     float64 `json:"price"`
	Quantity  float64 `json:"quantity"`
	UserID    string  `json:"user_id"`
	Side      string  `json:"side"`
	OrderType string  `json:"order_type"`
}

// CreateOrderResponse reports the outcome of one submission
type CreateOrderResponse struct {
	OrderID           string     `json:"order_id"`
	FilledQuantity    float64    `json:"filled_quantity"`
	RemainingQuantity float64    `json:"remaining_quantity"`
	AveragePrice      float64    `json:"average_price"`
	Fills             []FillInfo `json:"fills"`
	Status            string     `json:"status"`
}

// FillInfo is one execution inside a CreateOrderResponse
type FillInfo struct {
	TradeID      string  `json:"trade_id"`
	Quantity     float64 `json:"quantity"`
	Price        float64 `json:"price"`
	MakerOrderID string  `json:"maker_order_id"`
	TakerOrderID string  `json:"taker_order_id"`
	Timestamp    int64   `json:"timestamp"`
}

// DeleteOrderRequest is the DELETE /order body
type DeleteOrderRequest struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
}

// DeleteOrderResponse reports the outcome of a cancellation
type DeleteOrderResponse struct {
	Success           bool    `json:"success"`
	RemainingQuantity float64 `json:"remaining_quantity"`
	FilledQuantity    float64 `json:"filled_quantity"`
}

// DepthLevel is one (price, aggregate quantity) pair
type DepthLevel struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// DepthResponse is the GET /depth body, levels ordered best-first
type DepthResponse struct {
	Bids []DepthLevel `json:"bids"`
	Asks []DepthLevel `json:"asks"`
}

// StatsResponse is the GET /stats body. Pointer fields are omitted as
// null when the relevant side of the book is empty.
type StatsResponse struct {
	TotalOrdersCreated   uint64   `json:"total_orders_created"`
	TotalOrdersMatched   uint64   `json:"total_orders_matched"`
	TotalOrdersCancelled uint64   `json:"total_orders_cancelled"`
	TotalVolumeTraded    float64  `json:"total_volume_traded"`
	BestBid              *float64 `json:"best_bid"`
	BestAsk              *float64 `json:"best_ask"`
	Spread               *float64 `json:"spread"`
	MidPrice             *float64 `json:"mid_price"`
	LastMatchTime        *int64   `json:"last_match_time"`
}

// HealthResponse is the GET /health body
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// ErrorResponse carries a machine-readable error string
type ErrorResponse struct {
	Error string `json:"error"`
}

func toCreateOrderResponse(report *engine.ExecReport) CreateOrderResponse {
	fills := make([]FillInfo, 0, len(report.Fills))
	for _, f := range report.Fills {
		fills = append(fills, FillInfo{
			TradeID:      f.TradeID,
			Quantity:     f.Quantity.Float64(),
			Price:        f.Price.Float64(),
			MakerOrderID: strconv.FormatUint(f.MakerOrderID, 10),
			TakerOrderID: strconv.FormatUint(f.TakerOrderID, 10),
			Timestamp:    f.Timestamp.UnixMilli(),
		})
	}

	return CreateOrderResponse{
		OrderID:           strconv.FormatUint(report.OrderID, 10),
		FilledQuantity:    report.FilledQty.Float64(),
		RemainingQuantity: report.RemainingQty.Float64(),
		AveragePrice:      report.AvgFillPrice,
		Fills:             fills,
		Status:            string(report.Status),
	}
}

func toDepthResponse(snap engine.DepthSnapshot) DepthResponse {
	bids := make([]DepthLevel, 0, len(snap.Bids))
	for _, lvl := range snap.Bids {
		bids = append(bids, DepthLevel{Price: lvl.Price.Float64(), Quantity: lvl.Quantity.Float64()})
	}
	asks := make([]DepthLevel, 0, len(snap.Asks))
	for _, lvl := range snap.Asks {
		asks = append(asks, DepthLevel{Price: lvl.Price.Float64(), Quantity: lvl.Quantity.Float64()})
	}
	return DepthResponse{Bids: bids, Asks: asks}
}

func toStatsResponse(snap engine.StatsSnapshot) StatsResponse {
	resp := StatsResponse{
		TotalOrdersCreated:   snap.OrdersCreated,
		TotalOrdersMatched:   snap.OrdersMatched,
		TotalOrdersCancelled: snap.OrdersCancelled,
		TotalVolumeTraded:    snap.VolumeTraded.Float64(),
		BestBid:              snap.BestBid,
		BestAsk:              snap.BestAsk,
		Spread:               snap.Spread,
		MidPrice:             snap.MidPrice,
	}
	if !snap.LastMatchTime.IsZero() {
		ms := snap.LastMatchTime.UnixMilli()
		resp.LastMatchTime = &ms
	}
	return resp
}

func toExecutionMessage(report *engine.ExecReport) *messaging.ExecutionMessage {
	fills := make([]messaging.FillMessage, 0, len(report.Fills))
	for _, f := range report.Fills {
		fills = append(fills, messaging.FillMessage{
			TradeID:      f.TradeID,
			MakerOrderID: f.MakerOrderID,
			TakerOrderID: f.TakerOrderID,
			Price:        f.Price.String(),
			Quantity:     f.Quantity.String(),
			Timestamp:    f.Timestamp.UnixMilli(),
		})
	}

	return &messaging.ExecutionMessage{
		OrderID:      report.OrderID,
		UserID:       report.UserID,
		Side:         report.Side.String(),
		OrderType:    string(report.OrderType),
		Status:       string(report.Status),
		FilledQty:    report.FilledQty.String(),
		RemainingQty: report.RemainingQty.String(),
		Fills:        fills,
	}
}

func cancelToExecutionMessage(report *engine.CancelReport, userID string, side engine.Side) *messaging.ExecutionMessage {
	return &messaging.ExecutionMessage{
		OrderID:      report.OrderID,
		UserID:       userID,
		Side:         side.String(),
		Status:       string(engine.StatusCancelled),
		FilledQty:    report.FilledQty.String(),
		RemainingQty: report.RemainingQty.String(),
	}
}
