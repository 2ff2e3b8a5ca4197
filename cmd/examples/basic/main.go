package main

import (
	"context"
	"fmt"

	"github.com/nikolaydubina/fpdecimal"

	"github.com/openlob/openlob/pkg/engine"
)

func main() {
	ctx := context.Background()
	book := engine.NewBook()

	// Rest a sell limit order
	sellReport, err := book.AddOrder(ctx, "alice", engine.Sell, engine.TypeLimit,
		fpdecimal.FromFloat(10.0), fpdecimal.FromFloat(10.0))
	if err != nil {
		panic(err)
	}
	fmt.Printf("Created sell order: %d (%s)\n", sellReport.OrderID, sellReport.Status)

	// A crossing buy takes half of it
	buyReport, err := book.AddOrder(ctx, "bob", engine.Buy, engine.TypeLimit,
		fpdecimal.FromFloat(10.0), fpdecimal.FromFloat(5.0))
	if err != nil {
		panic(err)
	}

	fmt.Printf("Processing buy order: %d\n", buyReport.OrderID)
	for _, fill := range buyReport.Fills {
		fmt.Printf("Trade executed: %s @ %s (maker=%d, taker=%d)\n",
			fill.Quantity, fill.Price, fill.MakerOrderID, fill.TakerOrderID)
	}
	fmt.Printf("Buy order status: %s, filled=%s\n", buyReport.Status, buyReport.FilledQty)

	// Summary
	fmt.Println("\nBook state:")
	depth := book.Depth(10)
	for _, level := range depth.Asks {
		fmt.Printf("- ASK %s x %s\n", level.Price, level.Quantity)
	}
	for _, level := range depth.Bids {
		fmt.Printf("- BID %s x %s\n", level.Price, level.Quantity)
	}

	stats := book.Stats()
	fmt.Printf("\nOrders created: %d, matched: %d, volume traded: %s\n",
		stats.OrdersCreated, stats.OrdersMatched, stats.VolumeTraded)
}
