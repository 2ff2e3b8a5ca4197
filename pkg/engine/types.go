package engine

import (
	"time"

	"github.com/nikolaydubina/fpdecimal"
)

// Fill records one execution between a resting maker and an incoming
// taker. The executed price is always the maker's resting price.
type Fill struct {
	TradeID      string
	MakerOrderID uint64
	TakerOrderID uint64
	Price        fpdecimal.Decimal
	Quantity     fpdecimal.Decimal
	Timestamp    time.Time
}

// ExecReport is the result of one AddOrder call: the fills produced, in
// consumption order (best price first, FIFO within a level), and the
// terminal status of the incoming order.
type ExecReport struct {
	OrderID      uint64
	UserID       string
	Side         Side
	OrderType    OrderType
	Status       OrderStatus
	OriginalQty  fpdecimal.Decimal
	FilledQty    fpdecimal.Decimal
	RemainingQty fpdecimal.Decimal
	AvgFillPrice float64
	Fills        []Fill
}

// CancelReport is the result of a successful CancelOrder call
type CancelReport struct {
	OrderID      uint64
	FilledQty    fpdecimal.Decimal
	RemainingQty fpdecimal.Decimal
}

// avgFillPrice computes the quantity-weighted average price of a fill
// list. Display metric only; book arithmetic stays fixed-point.
func avgFillPrice(fills []Fill) float64 {
	if len(fills) == 0 {
		return 0
	}
	var notional, qty float64
	for _, f := range fills {
		notional += f.Price.Float64() * f.Quantity.Float64()
		qty += f.Quantity.Float64()
	}
	if qty == 0 {
		return 0
	}
	return notional / qty
}
