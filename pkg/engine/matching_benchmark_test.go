package engine

import (
	"context"
	"testing"

	"github.com/nikolaydubina/fpdecimal"
)

// BenchmarkMarketOrderMatching tests the performance of market order matching
func BenchmarkMarketOrderMatching(b *testing.B) {
	book := NewBook()
	ctx := context.Background()

	// Prepare the book with sell orders at different price levels,
	// 100.00 up to 110.00 with varying sizes.
	for i := 0; i < 100; i++ {
		price := fpdecimal.FromFloat(100.0 + float64(i)*0.1)
		quantity := fpdecimal.FromFloat(1.0 + float64(i%5))
		_, _ = book.AddOrder(ctx, "maker", Sell, TypeLimit, price, quantity)
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		// Small enough to not deplete the book.
		_, _ = book.AddOrder(ctx, "taker", Buy, TypeMarket, fpdecimal.Zero, fpdecimal.FromFloat(0.001))
	}
}

// BenchmarkLimitOrderMatching tests the performance of limit order matching
func BenchmarkLimitOrderMatching(b *testing.B) {
	book := NewBook()
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		price := fpdecimal.FromFloat(100.0 + float64(i)*0.1)
		quantity := fpdecimal.FromFloat(1.0 + float64(i%5))
		_, _ = book.AddOrder(ctx, "maker", Sell, TypeLimit, price, quantity)
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		// Crosses the bottom of the ask side without sweeping it.
		_, _ = book.AddOrder(ctx, "taker", Buy, TypeLimit, fpdecimal.FromFloat(100.0), fpdecimal.FromFloat(0.001))
	}
}

// BenchmarkPassiveInsert measures resting orders that never match
func BenchmarkPassiveInsert(b *testing.B) {
	book := NewBook()
	ctx := context.Background()

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		price := fpdecimal.FromFloat(99.0 - float64(i%100)*0.1)
		_, _ = book.AddOrder(ctx, "maker", Buy, TypeLimit, price, fpdecimal.FromFloat(1.0))
	}
}

// BenchmarkAddCancel measures the add-then-cancel round trip
func BenchmarkAddCancel(b *testing.B) {
	book := NewBook()
	ctx := context.Background()

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		report, err := book.AddOrder(ctx, "maker", Buy, TypeLimit, fpdecimal.FromFloat(99.0), fpdecimal.FromFloat(1.0))
		if err != nil {
			b.Fatal(err)
		}
		if _, err := book.CancelOrder(ctx, report.OrderID, "maker"); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkDepthSnapshot measures the read path against a populated book
func BenchmarkDepthSnapshot(b *testing.B) {
	book := NewBook()
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		_, _ = book.AddOrder(ctx, "maker", Buy, TypeLimit, fpdecimal.FromFloat(99.0-float64(i)*0.1), fpdecimal.FromFloat(1.0))
		_, _ = book.AddOrder(ctx, "maker", Sell, TypeLimit, fpdecimal.FromFloat(101.0+float64(i)*0.1), fpdecimal.FromFloat(1.0))
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = book.Depth(20)
	}
}
