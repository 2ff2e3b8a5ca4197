package engine

import (
	"time"

	"github.com/nikolaydubina/fpdecimal"
)

// Side represents buy or sell side of an order
type Side int

// Order sides
const (
	Sell Side = iota
	Buy
)

// String returns side as string
func (s Side) String() string {
	switch s {
	case Buy:
		return "Buy"
	case Sell:
		return "Sell"
	default:
		return "Unknown"
	}
}

// Opposite returns the other side of the book
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// OrderType represents type of the order
type OrderType string

// Order types
const (
	TypeLimit  OrderType = "Limit"
	TypeMarket OrderType = "Market"
)

// OrderStatus is the terminal state of a processed submission
type OrderStatus string

// Order statuses
const (
	StatusOpen            OrderStatus = "Open"
	StatusPartiallyFilled OrderStatus = "PartiallyFilled"
	StatusFilled          OrderStatus = "Filled"
	StatusCancelled       OrderStatus = "Cancelled"
)

// Order stores information about a single order. Remaining quantity is
// mutated only by the Book while holding its exclusive lock.
type Order struct {
	id          uint64
	userID      string
	orderType   OrderType
	side        Side
	price       fpdecimal.Decimal
	originalQty fpdecimal.Decimal
	remaining   fpdecimal.Decimal
	seq         uint64
	createdAt   time.Time
}

// NewLimitOrder creates a limit order, validating price and quantity
func NewLimitOrder(id uint64, userID string, side Side, quantity, price fpdecimal.Decimal, seq uint64, createdAt time.Time) (*Order, error) {
	if quantity.LessThanOrEqual(fpdecimal.Zero) {
		return nil, ErrInvalidQuantity
	}
	if price.LessThanOrEqual(fpdecimal.Zero) {
		return nil, ErrInvalidPrice
	}

	return &Order{
		id:          id,
		userID:      userID,
		orderType:   TypeLimit,
		side:        side,
		price:       price,
		originalQty: quantity,
		remaining:   quantity,
		seq:         seq,
		createdAt:   createdAt,
	}, nil
}

// NewMarketOrder creates a market order. Price is not part of a market
// order; any submitted value is ignored.
func NewMarketOrder(id uint64, userID string, side Side, quantity fpdecimal.Decimal, seq uint64, createdAt time.Time) (*Order, error) {
	if quantity.LessThanOrEqual(fpdecimal.Zero) {
		return nil, ErrInvalidQuantity
	}

	return &Order{
		id:          id,
		userID:      userID,
		orderType:   TypeMarket,
		side:        side,
		price:       fpdecimal.Zero,
		originalQty: quantity,
		remaining:   quantity,
		seq:         seq,
		createdAt:   createdAt,
	}, nil
}

// ID returns the order identifier
func (o *Order) ID() uint64 {
	return o.id
}

// UserID returns the owner identifier
func (o *Order) UserID() string {
	return o.userID
}

// Side returns side of the order
func (o *Order) Side() Side {
	return o.side
}

// OrderType returns the order type
func (o *Order) OrderType() OrderType {
	return o.orderType
}

// Price returns the limit price (zero for market orders)
func (o *Order) Price() fpdecimal.Decimal {
	return o.price
}

// OriginalQty returns the submitted quantity
func (o *Order) OriginalQty() fpdecimal.Decimal {
	return o.originalQty
}

// Remaining returns the unfilled quantity
func (o *Order) Remaining() fpdecimal.Decimal {
	return o.remaining
}

// FilledQty returns the quantity executed so far
func (o *Order) FilledQty() fpdecimal.Decimal {
	return o.originalQty.Sub(o.remaining)
}

// Seq returns the arrival sequence number
func (o *Order) Seq() uint64 {
	return o.seq
}

// CreatedAt returns the creation timestamp
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// IsMarketOrder returns true if the order is Market
func (o *Order) IsMarketOrder() bool {
	return o.orderType == TypeMarket
}

// IsLimitOrder returns true if the order is Limit
func (o *Order) IsLimitOrder() bool {
	return o.orderType == TypeLimit
}

// decreaseRemaining reduces the unfilled quantity by the executed amount
func (o *Order) decreaseRemaining(quantity fpdecimal.Decimal) {
	o.remaining = o.remaining.Sub(quantity)
}
