package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/nikolaydubina/fpdecimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(f float64) fpdecimal.Decimal {
	return fpdecimal.FromFloat(f)
}

func TestNewBook(t *testing.T) {
	book := NewBook()
	assert.NotNil(t, book)
	assert.Equal(t, 0, book.RestingOrders())

	depth := book.Depth(10)
	assert.Empty(t, depth.Bids)
	assert.Empty(t, depth.Asks)
}

func TestAddOrder_RestsWhenNoCross(t *testing.T) {
	book := NewBook()
	ctx := context.Background()

	report, err := book.AddOrder(ctx, "alice", Buy, TypeLimit, d(100.0), d(2.0))
	require.NoError(t, err)

	assert.Equal(t, StatusOpen, report.Status)
	assert.Empty(t, report.Fills)
	assert.True(t, report.RemainingQty.Equal(d(2.0)))
	assert.Equal(t, 1, book.RestingOrders())

	best, ok := book.BestBid()
	require.True(t, ok)
	assert.True(t, best.Equal(d(100.0)))
}

func TestAddOrder_InvalidInput(t *testing.T) {
	book := NewBook()
	ctx := context.Background()

	_, err := book.AddOrder(ctx, "alice", Buy, TypeLimit, d(100.0), fpdecimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = book.AddOrder(ctx, "alice", Buy, TypeLimit, d(100.0), d(-1.0))
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = book.AddOrder(ctx, "alice", Buy, TypeLimit, fpdecimal.Zero, d(1.0))
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = book.AddOrder(ctx, "alice", Sell, TypeMarket, fpdecimal.Zero, d(-0.5))
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	// Rejected orders leave no trace.
	assert.Equal(t, 0, book.RestingOrders())
	stats := book.Stats()
	assert.Equal(t, uint64(0), stats.OrdersCreated)
}

func TestAddOrder_PartialFillAtBestLevel(t *testing.T) {
	book := NewBook()
	ctx := context.Background()

	// Resting bid of 1.2 at 43250.
	bid, err := book.AddOrder(ctx, "maker", Buy, TypeLimit, d(43250.0), d(1.2))
	require.NoError(t, err)
	require.Equal(t, StatusOpen, bid.Status)

	// Incoming sell of 0.5 at the same price fills fully against it.
	report, err := book.AddOrder(ctx, "taker", Sell, TypeLimit, d(43250.0), d(0.5))
	require.NoError(t, err)

	assert.Equal(t, StatusFilled, report.Status)
	require.Len(t, report.Fills, 1)

	fill := report.Fills[0]
	assert.Equal(t, bid.OrderID, fill.MakerOrderID)
	assert.Equal(t, report.OrderID, fill.TakerOrderID)
	assert.True(t, fill.Price.Equal(d(43250.0)))
	assert.True(t, fill.Quantity.Equal(d(0.5)))
	assert.NotEmpty(t, fill.TradeID)

	// The maker stays resting with 0.7 left; the level aggregate follows.
	depth := book.Depth(1)
	require.Len(t, depth.Bids, 1)
	assert.True(t, depth.Bids[0].Price.Equal(d(43250.0)))
	assert.True(t, depth.Bids[0].Quantity.Equal(d(0.7)))

	maker := book.GetOrder(bid.OrderID)
	require.NotNil(t, maker)
	assert.True(t, maker.Remaining().Equal(d(0.7)))
	assert.True(t, maker.FilledQty().Equal(d(0.5)))
}

func TestMarketBuy_SweepsLevels(t *testing.T) {
	book := NewBook()
	ctx := context.Background()

	ask1, err := book.AddOrder(ctx, "maker", Sell, TypeLimit, d(43255.0), d(2.0))
	require.NoError(t, err)
	ask2, err := book.AddOrder(ctx, "maker", Sell, TypeLimit, d(43260.0), d(1.5))
	require.NoError(t, err)

	report, err := book.AddOrder(ctx, "taker", Buy, TypeMarket, fpdecimal.Zero, d(3.0))
	require.NoError(t, err)

	assert.Equal(t, StatusFilled, report.Status)
	require.Len(t, report.Fills, 2)

	// Best price consumed first, then the next level.
	assert.Equal(t, ask1.OrderID, report.Fills[0].MakerOrderID)
	assert.True(t, report.Fills[0].Price.Equal(d(43255.0)))
	assert.True(t, report.Fills[0].Quantity.Equal(d(2.0)))

	assert.Equal(t, ask2.OrderID, report.Fills[1].MakerOrderID)
	assert.True(t, report.Fills[1].Price.Equal(d(43260.0)))
	assert.True(t, report.Fills[1].Quantity.Equal(d(1.0)))

	// First ask fully consumed and gone; second keeps 0.5.
	assert.Nil(t, book.GetOrder(ask1.OrderID))
	remaining := book.GetOrder(ask2.OrderID)
	require.NotNil(t, remaining)
	assert.True(t, remaining.Remaining().Equal(d(0.5)))

	depth := book.Depth(5)
	require.Len(t, depth.Asks, 1)
	assert.True(t, depth.Asks[0].Price.Equal(d(43260.0)))
	assert.True(t, depth.Asks[0].Quantity.Equal(d(0.5)))
}

func TestMarketOrder_NoLiquidity(t *testing.T) {
	book := NewBook()
	ctx := context.Background()

	report, err := book.AddOrder(ctx, "taker", Buy, TypeMarket, fpdecimal.Zero, d(1.0))
	require.NoError(t, err)

	// Nothing to match against and market remainders never rest.
	assert.Equal(t, StatusCancelled, report.Status)
	assert.Empty(t, report.Fills)
	assert.True(t, report.RemainingQty.Equal(d(1.0)))
	assert.Equal(t, 0, book.RestingOrders())
}

func TestMarketOrder_PartialLiquidity(t *testing.T) {
	book := NewBook()
	ctx := context.Background()

	_, err := book.AddOrder(ctx, "maker", Sell, TypeLimit, d(100.0), d(1.0))
	require.NoError(t, err)

	report, err := book.AddOrder(ctx, "taker", Buy, TypeMarket, fpdecimal.Zero, d(3.0))
	require.NoError(t, err)

	assert.Equal(t, StatusPartiallyFilled, report.Status)
	require.Len(t, report.Fills, 1)
	assert.True(t, report.FilledQty.Equal(d(1.0)))
	assert.True(t, report.RemainingQty.Equal(d(2.0)))

	// The unfilled remainder is discarded, not rested.
	assert.Equal(t, 0, book.RestingOrders())
	_, ok := book.BestBid()
	assert.False(t, ok)
}

func TestLimitOrder_PriceTimePriority(t *testing.T) {
	book := NewBook()
	ctx := context.Background()

	// Two asks at the same price; the older one must fill first.
	first, err := book.AddOrder(ctx, "maker1", Sell, TypeLimit, d(100.0), d(1.0))
	require.NoError(t, err)
	second, err := book.AddOrder(ctx, "maker2", Sell, TypeLimit, d(100.0), d(1.0))
	require.NoError(t, err)

	report, err := book.AddOrder(ctx, "taker", Buy, TypeLimit, d(100.0), d(1.5))
	require.NoError(t, err)

	require.Len(t, report.Fills, 2)
	assert.Equal(t, first.OrderID, report.Fills[0].MakerOrderID)
	assert.True(t, report.Fills[0].Quantity.Equal(d(1.0)))
	assert.Equal(t, second.OrderID, report.Fills[1].MakerOrderID)
	assert.True(t, report.Fills[1].Quantity.Equal(d(0.5)))

	assert.Equal(t, StatusFilled, report.Status)
}

func TestLimitOrder_PriceImprovement(t *testing.T) {
	book := NewBook()
	ctx := context.Background()

	_, err := book.AddOrder(ctx, "maker", Sell, TypeLimit, d(100.0), d(1.0))
	require.NoError(t, err)

	// Aggressive buy at 105 executes at the resting price, not its own.
	report, err := book.AddOrder(ctx, "taker", Buy, TypeLimit, d(105.0), d(1.0))
	require.NoError(t, err)

	require.Len(t, report.Fills, 1)
	assert.True(t, report.Fills[0].Price.Equal(d(100.0)))
	assert.Equal(t, StatusFilled, report.Status)
}

func TestLimitOrder_PartialThenRest(t *testing.T) {
	book := NewBook()
	ctx := context.Background()

	_, err := book.AddOrder(ctx, "maker", Sell, TypeLimit, d(100.0), d(1.0))
	require.NoError(t, err)

	// Buy 3.0 at 100: fills 1.0, rests 2.0 on the bid side.
	report, err := book.AddOrder(ctx, "taker", Buy, TypeLimit, d(100.0), d(3.0))
	require.NoError(t, err)

	assert.Equal(t, StatusPartiallyFilled, report.Status)
	assert.True(t, report.FilledQty.Equal(d(1.0)))
	assert.True(t, report.RemainingQty.Equal(d(2.0)))

	best, ok := book.BestBid()
	require.True(t, ok)
	assert.True(t, best.Equal(d(100.0)))

	resting := book.GetOrder(report.OrderID)
	require.NotNil(t, resting)
	assert.True(t, resting.Remaining().Equal(d(2.0)))
}

func TestBookNeverCrossed(t *testing.T) {
	book := NewBook()
	ctx := context.Background()

	// A mix of passive and aggressive flow around 100.
	_, _ = book.AddOrder(ctx, "u", Buy, TypeLimit, d(99.0), d(1.0))
	_, _ = book.AddOrder(ctx, "u", Sell, TypeLimit, d(101.0), d(1.0))
	_, _ = book.AddOrder(ctx, "u", Buy, TypeLimit, d(101.0), d(0.4))
	_, _ = book.AddOrder(ctx, "u", Sell, TypeLimit, d(99.0), d(0.4))
	_, _ = book.AddOrder(ctx, "u", Buy, TypeLimit, d(100.0), d(2.0))
	_, _ = book.AddOrder(ctx, "u", Sell, TypeLimit, d(100.5), d(2.0))

	bid, hasBid := book.BestBid()
	ask, hasAsk := book.BestAsk()
	if hasBid && hasAsk {
		assert.True(t, bid.LessThan(ask), "book crossed: bid %s >= ask %s", bid.String(), ask.String())
	}
}

func TestConservation(t *testing.T) {
	book := NewBook()
	ctx := context.Background()

	_, err := book.AddOrder(ctx, "maker", Sell, TypeLimit, d(100.0), d(2.5))
	require.NoError(t, err)

	report, err := book.AddOrder(ctx, "taker", Buy, TypeLimit, d(100.0), d(4.0))
	require.NoError(t, err)

	// filled + remaining == original, and fills sum to filled.
	sum := fpdecimal.Zero
	for _, f := range report.Fills {
		sum = sum.Add(f.Quantity)
	}
	assert.True(t, sum.Equal(report.FilledQty))
	assert.True(t, report.FilledQty.Add(report.RemainingQty).Equal(report.OriginalQty))
}

func TestCancelOrder(t *testing.T) {
	book := NewBook()
	ctx := context.Background()

	report, err := book.AddOrder(ctx, "alice", Buy, TypeLimit, d(100.0), d(2.0))
	require.NoError(t, err)

	cancel, err := book.CancelOrder(ctx, report.OrderID, "alice")
	require.NoError(t, err)
	assert.Equal(t, report.OrderID, cancel.OrderID)
	assert.True(t, cancel.FilledQty.Equal(fpdecimal.Zero))
	assert.True(t, cancel.RemainingQty.Equal(d(2.0)))

	assert.Equal(t, 0, book.RestingOrders())
	_, ok := book.BestBid()
	assert.False(t, ok)

	// Second cancel of the same order: gone is gone.
	_, err = book.CancelOrder(ctx, report.OrderID, "alice")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCancelOrder_NeverExisted(t *testing.T) {
	book := NewBook()

	_, err := book.CancelOrder(context.Background(), 424242, "alice")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCancelOrder_WrongOwner(t *testing.T) {
	book := NewBook()
	ctx := context.Background()

	report, err := book.AddOrder(ctx, "alice", Buy, TypeLimit, d(100.0), d(1.0))
	require.NoError(t, err)

	_, err = book.CancelOrder(ctx, report.OrderID, "mallory")
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Still resting and still cancellable by the owner.
	assert.Equal(t, 1, book.RestingOrders())
	_, err = book.CancelOrder(ctx, report.OrderID, "alice")
	assert.NoError(t, err)
}

func TestCancelOrder_AfterPartialFill(t *testing.T) {
	book := NewBook()
	ctx := context.Background()

	bid, err := book.AddOrder(ctx, "alice", Buy, TypeLimit, d(100.0), d(3.0))
	require.NoError(t, err)

	_, err = book.AddOrder(ctx, "bob", Sell, TypeLimit, d(100.0), d(1.0))
	require.NoError(t, err)

	cancel, err := book.CancelOrder(ctx, bid.OrderID, "alice")
	require.NoError(t, err)
	assert.True(t, cancel.FilledQty.Equal(d(1.0)))
	assert.True(t, cancel.RemainingQty.Equal(d(2.0)))
}

func TestCancelOrder_FullyFilledIsNotFound(t *testing.T) {
	book := NewBook()
	ctx := context.Background()

	bid, err := book.AddOrder(ctx, "alice", Buy, TypeLimit, d(100.0), d(1.0))
	require.NoError(t, err)

	_, err = book.AddOrder(ctx, "bob", Sell, TypeLimit, d(100.0), d(1.0))
	require.NoError(t, err)

	_, err = book.CancelOrder(ctx, bid.OrderID, "alice")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestDepth(t *testing.T) {
	book := NewBook()
	ctx := context.Background()

	// Three bid levels, two ask levels, multiple orders on 99.
	_, _ = book.AddOrder(ctx, "u", Buy, TypeLimit, d(99.0), d(1.0))
	_, _ = book.AddOrder(ctx, "u", Buy, TypeLimit, d(99.0), d(2.0))
	_, _ = book.AddOrder(ctx, "u", Buy, TypeLimit, d(98.0), d(1.0))
	_, _ = book.AddOrder(ctx, "u", Buy, TypeLimit, d(97.0), d(1.0))
	_, _ = book.AddOrder(ctx, "u", Sell, TypeLimit, d(101.0), d(1.0))
	_, _ = book.AddOrder(ctx, "u", Sell, TypeLimit, d(102.0), d(1.0))

	depth := book.Depth(2)

	// Bids best-first (descending), aggregated per level, truncated to 2.
	require.Len(t, depth.Bids, 2)
	assert.True(t, depth.Bids[0].Price.Equal(d(99.0)))
	assert.True(t, depth.Bids[0].Quantity.Equal(d(3.0)))
	assert.True(t, depth.Bids[1].Price.Equal(d(98.0)))

	// Asks best-first (ascending).
	require.Len(t, depth.Asks, 2)
	assert.True(t, depth.Asks[0].Price.Equal(d(101.0)))
	assert.True(t, depth.Asks[1].Price.Equal(d(102.0)))

	// A wider request returns everything there is.
	full := book.Depth(10)
	assert.Len(t, full.Bids, 3)
	assert.Len(t, full.Asks, 2)

	// Zero levels yields an empty but non-nil snapshot.
	empty := book.Depth(0)
	assert.NotNil(t, empty.Bids)
	assert.Empty(t, empty.Bids)
}

func TestStats(t *testing.T) {
	book := NewBook()
	ctx := context.Background()

	initial := book.Stats()
	assert.Equal(t, uint64(0), initial.OrdersCreated)
	assert.Nil(t, initial.BestBid)
	assert.Nil(t, initial.Spread)
	assert.True(t, initial.LastMatchTime.IsZero())

	_, err := book.AddOrder(ctx, "u", Buy, TypeLimit, d(100.0), d(2.0))
	require.NoError(t, err)
	_, err = book.AddOrder(ctx, "u", Sell, TypeLimit, d(102.0), d(1.0))
	require.NoError(t, err)
	report, err := book.AddOrder(ctx, "u", Sell, TypeLimit, d(100.0), d(0.5))
	require.NoError(t, err)
	require.Equal(t, StatusFilled, report.Status)

	cancelTarget, err := book.AddOrder(ctx, "u", Buy, TypeLimit, d(95.0), d(1.0))
	require.NoError(t, err)
	_, err = book.CancelOrder(ctx, cancelTarget.OrderID, "u")
	require.NoError(t, err)

	stats := book.Stats()
	assert.Equal(t, uint64(4), stats.OrdersCreated)
	assert.Equal(t, uint64(1), stats.OrdersMatched)
	assert.Equal(t, uint64(1), stats.OrdersCancelled)
	assert.True(t, stats.VolumeTraded.Equal(d(0.5)))
	assert.False(t, stats.LastMatchTime.IsZero())

	require.NotNil(t, stats.BestBid)
	require.NotNil(t, stats.BestAsk)
	assert.InDelta(t, 100.0, *stats.BestBid, 1e-9)
	assert.InDelta(t, 102.0, *stats.BestAsk, 1e-9)

	require.NotNil(t, stats.Spread)
	require.NotNil(t, stats.MidPrice)
	assert.InDelta(t, 2.0, *stats.Spread, 1e-9)
	assert.InDelta(t, 101.0, *stats.MidPrice, 1e-9)
}

func TestStats_OneSidedBook(t *testing.T) {
	book := NewBook()
	ctx := context.Background()

	_, err := book.AddOrder(ctx, "u", Buy, TypeLimit, d(100.0), d(1.0))
	require.NoError(t, err)

	stats := book.Stats()
	require.NotNil(t, stats.BestBid)
	assert.Nil(t, stats.BestAsk)
	assert.Nil(t, stats.Spread)
	assert.Nil(t, stats.MidPrice)
}

func TestSelfTrade(t *testing.T) {
	book := NewBook()
	ctx := context.Background()

	// Same user on both sides matches like anyone else.
	_, err := book.AddOrder(ctx, "alice", Sell, TypeLimit, d(100.0), d(1.0))
	require.NoError(t, err)

	report, err := book.AddOrder(ctx, "alice", Buy, TypeLimit, d(100.0), d(1.0))
	require.NoError(t, err)
	assert.Equal(t, StatusFilled, report.Status)
}

func TestGetOrder_ReturnsSnapshot(t *testing.T) {
	book := NewBook()
	ctx := context.Background()

	rested, err := book.AddOrder(ctx, "alice", Sell, TypeLimit, d(100.0), d(2.0))
	require.NoError(t, err)

	before := book.GetOrder(rested.OrderID)
	require.NotNil(t, before)
	assert.True(t, before.Remaining().Equal(d(2.0)))

	// Partially consume the resting order; the earlier snapshot must
	// not move with it.
	_, err = book.AddOrder(ctx, "bob", Buy, TypeLimit, d(100.0), d(0.5))
	require.NoError(t, err)

	assert.True(t, before.Remaining().Equal(d(2.0)))

	after := book.GetOrder(rested.OrderID)
	require.NotNil(t, after)
	assert.True(t, after.Remaining().Equal(d(1.5)))
	assert.True(t, after.FilledQty().Equal(d(0.5)))
}

func TestConcurrentAddAndCancel(t *testing.T) {
	book := NewBook()
	ctx := context.Background()

	const workers = 8
	const perWorker = 200

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			user := fmt.Sprintf("user-%d", w)
			for i := 0; i < perWorker; i++ {
				side := Buy
				price := d(99.0 - float64(i%10)*0.5)
				if (w+i)%2 == 0 {
					side = Sell
					price = d(101.0 + float64(i%10)*0.5)
				}

				report, err := book.AddOrder(ctx, user, side, TypeLimit, price, d(1.0))
				if err != nil {
					t.Error(err)
					return
				}

				// Cancel every third order straight away; the outcome
				// must be a clean success or a clean NotFound, nothing
				// in between.
				if i%3 == 0 {
					_, err := book.CancelOrder(ctx, report.OrderID, user)
					if err != nil && err != ErrOrderNotFound {
						t.Errorf("cancel: %v", err)
						return
					}
				}
			}
		}(w)
	}

	// Concurrent readers exercising the snapshot paths.
	stop := make(chan struct{})
	var readers sync.WaitGroup
	for r := 0; r < 4; r++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				depth := book.Depth(10)
				for _, lvl := range depth.Bids {
					if lvl.Quantity.LessThanOrEqual(fpdecimal.Zero) {
						t.Error("non-positive bid level aggregate")
						return
					}
				}
				_ = book.Stats()
			}
		}()
	}

	wg.Wait()
	close(stop)
	readers.Wait()

	stats := book.Stats()
	assert.Equal(t, uint64(workers*perWorker), stats.OrdersCreated)

	// Not crossed after the dust settles.
	bid, hasBid := book.BestBid()
	ask, hasAsk := book.BestAsk()
	if hasBid && hasAsk {
		assert.True(t, bid.LessThan(ask))
	}
}

func TestConcurrentCrossingFlows(t *testing.T) {
	// Both flows meet at a single price, so concurrent submissions
	// genuinely execute against each other. Whatever the interleaving,
	// every report must be internally consistent: fills plus remainder
	// always add up to the submitted quantity, and the status agrees
	// with both.
	book := NewBook()
	ctx := context.Background()

	const workers = 16
	const perWorker = 100

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			user := fmt.Sprintf("user-%d", w)
			for i := 0; i < perWorker; i++ {
				var report *ExecReport
				var err error
				if w%2 == 0 {
					report, err = book.AddOrder(ctx, user, Buy, TypeLimit, d(100.0), d(1.0))
				} else {
					report, err = book.AddOrder(ctx, user, Sell, TypeMarket, fpdecimal.Zero, d(1.0))
				}
				if err != nil {
					t.Error(err)
					return
				}

				var fillSum fpdecimal.Decimal
				for _, f := range report.Fills {
					fillSum = fillSum.Add(f.Quantity)
				}
				if !fillSum.Add(report.RemainingQty).Equal(report.OriginalQty) {
					t.Errorf("report not conserved: fills=%s remaining=%s original=%s status=%s",
						fillSum, report.RemainingQty, report.OriginalQty, report.Status)
					return
				}

				switch report.Status {
				case StatusFilled:
					if !report.RemainingQty.Equal(fpdecimal.Zero) || len(report.Fills) == 0 {
						t.Errorf("Filled report with remaining=%s, %d fills",
							report.RemainingQty, len(report.Fills))
						return
					}
				case StatusPartiallyFilled:
					if report.RemainingQty.Equal(fpdecimal.Zero) || len(report.Fills) == 0 {
						t.Errorf("PartiallyFilled report with remaining=%s, %d fills",
							report.RemainingQty, len(report.Fills))
						return
					}
				case StatusOpen, StatusCancelled:
					if len(report.Fills) != 0 {
						t.Errorf("%s report carrying %d fills", report.Status, len(report.Fills))
						return
					}
				}
			}
		}(w)
	}
	wg.Wait()

	stats := book.Stats()
	assert.Equal(t, uint64(workers*perWorker), stats.OrdersCreated)
}

func TestConcurrentCancelRace(t *testing.T) {
	// Race a cancel against a matching order for the same resting
	// maker. Exactly one must win: a successful cancel means no fill,
	// a NotFound means the match consumed it.
	for i := 0; i < 100; i++ {
		book := NewBook()
		ctx := context.Background()

		maker, err := book.AddOrder(ctx, "maker", Sell, TypeLimit, d(100.0), d(1.0))
		require.NoError(t, err)

		var wg sync.WaitGroup
		var cancelErr error
		var report *ExecReport

		wg.Add(2)
		go func() {
			defer wg.Done()
			_, cancelErr = book.CancelOrder(ctx, maker.OrderID, "maker")
		}()
		go func() {
			defer wg.Done()
			report, _ = book.AddOrder(ctx, "taker", Buy, TypeLimit, d(100.0), d(1.0))
		}()
		wg.Wait()

		require.NotNil(t, report)
		if cancelErr == nil {
			// Cancel won: the taker found nothing and rested.
			assert.Equal(t, StatusOpen, report.Status)
		} else {
			// Match won: the cancel must have seen NotFound.
			assert.ErrorIs(t, cancelErr, ErrOrderNotFound)
			assert.Equal(t, StatusFilled, report.Status)
		}
	}
}
