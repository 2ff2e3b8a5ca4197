package messaging

import "context"

// MessageSender defines an interface for publishing execution results.
// This keeps the engine and API packages decoupled from the concrete
// broker implementation in the queue package.
type MessageSender interface {
	SendExecutionMessage(ctx context.Context, msg *ExecutionMessage) error
	Close() error
}

// ExecutionMessage is the broker representation of one processed order
// submission or cancellation. Decimal quantities travel as strings so
// downstream consumers never lose precision to float parsing.
type ExecutionMessage struct {
	OrderID      uint64        `json:"order_id"`
	UserID       string        `json:"user_id"`
	Side         string        `json:"side"`
	OrderType    string        `json:"order_type,omitempty"`
	Status       string        `json:"status"`
	FilledQty    string        `json:"filled_qty"`
	RemainingQty string        `json:"remaining_qty"`
	Fills        []FillMessage `json:"fills,omitempty"`
}

// FillMessage is a single execution within an ExecutionMessage
type FillMessage struct {
	TradeID      string `json:"trade_id"`
	MakerOrderID uint64 `json:"maker_order_id"`
	TakerOrderID uint64 `json:"taker_order_id"`
	Price        string `json:"price"`
	Quantity     string `json:"quantity"`
	Timestamp    int64  `json:"timestamp"`
}
