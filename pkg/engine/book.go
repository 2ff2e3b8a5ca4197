package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nikolaydubina/fpdecimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/openlob/openlob/pkg/otel"
)

// Book is the matching core: it owns both sides, the order index and
// the stats tracker, and is the single point of truth for book state.
// One instance is constructed at service start and shared by reference
// across all callers for the process lifetime.
//
// Concurrency discipline: the match-then-rest sequence of AddOrder and
// the unlink sequence of CancelOrder run under the exclusive side of
// mu; depth and stats queries take the read side. The lock is held only
// for the in-memory mutation window, never across I/O.
type Book struct {
	mu    sync.RWMutex
	bids  *bookSide
	asks  *bookSide
	index *orderIndex
	stats *statsTracker

	nextOrderID atomic.Uint64
	nextSeq     atomic.Uint64
}

// NewBook creates an empty order book
func NewBook() *Book {
	return &Book{
		bids:  newBookSide(Buy),
		asks:  newBookSide(Sell),
		index: newOrderIndex(),
		stats: newStatsTracker(),
	}
}

// AddOrder validates and processes one incoming order: match against
// the opposite side under price-time priority, then rest any limit
// remainder on its own side. Market remainders are discarded, never
// rested.
func (b *Book) AddOrder(ctx context.Context, userID string, side Side, orderType OrderType, price, quantity fpdecimal.Decimal) (*ExecReport, error) {
	_, span := otel.StartOrderSpan(ctx, otel.SpanAddOrder,
		attribute.String(otel.AttributeOrderSide, side.String()),
		attribute.String(otel.AttributeOrderType, string(orderType)),
		attribute.String(otel.AttributeOrderQuantity, quantity.String()),
		attribute.String(otel.AttributeOrderPrice, price.String()),
	)
	defer span.End()

	// Reject before any mutation.
	if quantity.LessThanOrEqual(fpdecimal.Zero) {
		return nil, ErrInvalidQuantity
	}
	if orderType == TypeLimit && price.LessThanOrEqual(fpdecimal.Zero) {
		return nil, ErrInvalidPrice
	}

	now := time.Now()

	b.mu.Lock()

	// Sequence and identifier are assigned inside the exclusive
	// section, so relative priority of two orders is exactly their
	// lock acquisition order.
	id := b.nextOrderID.Add(1)
	seq := b.nextSeq.Add(1)

	var (
		order *Order
		err   error
	)
	if orderType == TypeMarket {
		order, err = NewMarketOrder(id, userID, side, quantity, seq, now)
	} else {
		order, err = NewLimitOrder(id, userID, side, quantity, price, seq, now)
	}
	if err != nil {
		b.mu.Unlock()
		return nil, err
	}

	fills := b.match(order, now)

	rested := false
	if order.IsLimitOrder() && order.Remaining().GreaterThan(fpdecimal.Zero) {
		b.rest(order)
		rested = true
	}

	// Snapshot the report fields before releasing the lock: a rested
	// order is visible to concurrent matchers the instant mu drops, so
	// any later read of its remaining quantity would race.
	original := order.OriginalQty()
	filled := order.FilledQty()
	remaining := order.Remaining()
	status := reportStatus(remaining, len(fills), rested)

	b.mu.Unlock()

	// Fire-and-forget side effects; a concurrent stats read may see
	// them land individually.
	b.stats.recordCreated()
	b.stats.recordFills(len(fills), filled, now)

	report := &ExecReport{
		OrderID:      id,
		UserID:       userID,
		Side:         side,
		OrderType:    orderType,
		Status:       status,
		OriginalQty:  original,
		FilledQty:    filled,
		RemainingQty: remaining,
		AvgFillPrice: avgFillPrice(fills),
		Fills:        fills,
	}

	otel.AddAttributes(span,
		attribute.Int64(otel.AttributeOrderID, int64(id)),
		attribute.String(otel.AttributeOrderStatus, string(report.Status)),
		attribute.Int(otel.AttributeTradeCount, len(fills)),
	)
	otel.GetBookMetrics().RecordFills(ctx, string(orderType), int64(len(fills)), filled.Float64())

	return report, nil
}

// match consumes the opposite side while the crossing condition holds.
// Caller holds the exclusive lock.
func (b *Book) match(taker *Order, now time.Time) []Fill {
	var fills []Fill

	opposite := b.asks
	if taker.Side() == Sell {
		opposite = b.bids
	}

	for taker.Remaining().GreaterThan(fpdecimal.Zero) {
		best := opposite.best()
		if best == nil {
			break
		}
		if taker.IsLimitOrder() && !crosses(taker.Side(), taker.Price(), best.Price()) {
			break
		}

		// Consume the level oldest-first.
		for taker.Remaining().GreaterThan(fpdecimal.Zero) && !best.empty() {
			maker := best.headOrder()

			fillQty := taker.Remaining()
			if maker.Remaining().LessThan(fillQty) {
				fillQty = maker.Remaining()
			}

			taker.decreaseRemaining(fillQty)
			best.fillHead(fillQty)

			fills = append(fills, Fill{
				TradeID:      uuid.New().String(),
				MakerOrderID: maker.ID(),
				TakerOrderID: taker.ID(),
				Price:        best.Price(),
				Quantity:     fillQty,
				Timestamp:    now,
			})

			if maker.Remaining().Equal(fpdecimal.Zero) {
				best.unlink(best.head)
				b.index.delete(maker.ID())
			}
		}

		if best.empty() {
			opposite.removeLevel(best)
		}
	}

	return fills
}

// rest inserts a limit remainder on its own side and registers it in
// the index. Caller holds the exclusive lock.
func (b *Book) rest(order *Order) {
	own := b.bids
	if order.Side() == Sell {
		own = b.asks
	}

	lvl := own.getOrCreate(order.Price())
	node := lvl.append(order)
	b.index.put(order.ID(), &orderRef{
		order: order,
		side:  order.Side(),
		level: lvl,
		node:  node,
	})
}

// CancelOrder removes a resting order. NotFound covers already filled,
// already cancelled, and never existed alike: the book keeps no
// history. A cancel racing a match that fully consumes the order
// observes NotFound; the two outcomes are mutually exclusive.
func (b *Book) CancelOrder(ctx context.Context, orderID uint64, userID string) (*CancelReport, error) {
	_, span := otel.StartOrderSpan(ctx, otel.SpanCancelOrder,
		attribute.Int64(otel.AttributeOrderID, int64(orderID)),
	)
	defer span.End()

	// Cheap pre-checks on the concurrent index, outside the book lock.
	ref, ok := b.index.get(orderID)
	if !ok {
		return nil, ErrOrderNotFound
	}
	if ref.order.UserID() != userID {
		return nil, ErrUnauthorized
	}

	b.mu.Lock()

	// Re-validate under exclusivity: a concurrent match may have
	// consumed the order between lookup and lock.
	ref, ok = b.index.get(orderID)
	if !ok {
		b.mu.Unlock()
		return nil, ErrOrderNotFound
	}
	if ref.order.UserID() != userID {
		b.mu.Unlock()
		return nil, ErrUnauthorized
	}

	ref.level.unlink(ref.node)
	if ref.level.empty() {
		side := b.bids
		if ref.side == Sell {
			side = b.asks
		}
		side.removeLevel(ref.level)
	}
	b.index.delete(orderID)

	filled := ref.order.FilledQty()
	remaining := ref.order.Remaining()

	b.mu.Unlock()

	b.stats.recordCancelled()

	return &CancelReport{
		OrderID:      orderID,
		FilledQty:    filled,
		RemainingQty: remaining,
	}, nil
}

// GetOrder returns a point-in-time copy of a resting order, or nil if
// it is not resting. The copy is taken under the book lock, so its
// quantities are consistent; the live order stays private to the Book.
func (b *Book) GetOrder(orderID uint64) *Order {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ref, ok := b.index.get(orderID)
	if !ok {
		return nil
	}
	snapshot := *ref.order
	return &snapshot
}

// Depth returns up to levels price levels per side, best-first
func (b *Book) Depth(levels int) DepthSnapshot {
	snap := DepthSnapshot{
		Bids: make([]LevelSnapshot, 0, levels),
		Asks: make([]LevelSnapshot, 0, levels),
	}
	if levels <= 0 {
		return snap
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	collect := func(side *bookSide, out *[]LevelSnapshot) {
		side.ascend(func(lvl *priceLevel) bool {
			*out = append(*out, LevelSnapshot{Price: lvl.Price(), Quantity: lvl.Total()})
			return len(*out) < levels
		})
	}
	collect(b.bids, &snap.Bids)
	collect(b.asks, &snap.Asks)

	return snap
}

// BestBid returns the highest resting bid price
func (b *Book) BestBid() (fpdecimal.Decimal, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	lvl := b.bids.best()
	if lvl == nil {
		return fpdecimal.Zero, false
	}
	return lvl.Price(), true
}

// BestAsk returns the lowest resting ask price
func (b *Book) BestAsk() (fpdecimal.Decimal, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	lvl := b.asks.best()
	if lvl == nil {
		return fpdecimal.Zero, false
	}
	return lvl.Price(), true
}

// Stats returns the counters plus best bid/ask, spread and mid price.
// Derived fields are computed here from live book state, never stored.
func (b *Book) Stats() StatsSnapshot {
	snap := StatsSnapshot{
		OrdersCreated:   b.stats.ordersCreated.Load(),
		OrdersMatched:   b.stats.ordersMatched.Load(),
		OrdersCancelled: b.stats.ordersCancelled.Load(),
		VolumeTraded:    b.stats.volumeTraded(),
		LastMatchTime:   b.stats.lastMatch(),
	}

	b.mu.RLock()
	bidLvl := b.bids.best()
	askLvl := b.asks.best()
	b.mu.RUnlock()

	if bidLvl != nil {
		bid := bidLvl.Price().Float64()
		snap.BestBid = &bid
	}
	if askLvl != nil {
		ask := askLvl.Price().Float64()
		snap.BestAsk = &ask
	}
	if snap.BestBid != nil && snap.BestAsk != nil {
		spread := *snap.BestAsk - *snap.BestBid
		mid := (*snap.BestAsk + *snap.BestBid) / 2
		snap.Spread = &spread
		snap.MidPrice = &mid
	}

	return snap
}

// RestingOrders reports how many orders are currently resting
func (b *Book) RestingOrders() int {
	return b.index.len()
}

// crosses reports whether a limit taker price is compatible with the
// opposite best price.
func crosses(side Side, takerPrice, bookPrice fpdecimal.Decimal) bool {
	if side == Buy {
		return takerPrice.GreaterThanOrEqual(bookPrice)
	}
	return takerPrice.LessThanOrEqual(bookPrice)
}

// reportStatus maps the outcome of one submission to its wire status.
// remaining is the taker's remainder as observed under the book lock.
func reportStatus(remaining fpdecimal.Decimal, fills int, rested bool) OrderStatus {
	switch {
	case remaining.Equal(fpdecimal.Zero):
		return StatusFilled
	case fills > 0:
		return StatusPartiallyFilled
	case rested:
		return StatusOpen
	default:
		// Market order that found no liquidity at all.
		return StatusCancelled
	}
}
