package engine

import (
	"time"

	"github.com/nikolaydubina/fpdecimal"
)

// LevelSnapshot is one (price, aggregate quantity) pair of a depth view
type LevelSnapshot struct {
	Price    fpdecimal.Decimal
	Quantity fpdecimal.Decimal
}

// DepthSnapshot is a point-in-time view of the top of the book, levels
// ordered best-first per side. Read-committed: consistent within each
// level, possibly stale relative to writes racing the read.
type DepthSnapshot struct {
	Bids []LevelSnapshot
	Asks []LevelSnapshot
}

// StatsSnapshot carries the monotonic counters plus derived market
// fields. Derived fields are nil when the relevant side is empty; they
// are computed on demand, never stored.
type StatsSnapshot struct {
	OrdersCreated   uint64
	OrdersMatched   uint64
	OrdersCancelled uint64
	VolumeTraded    fpdecimal.Decimal
	BestBid         *float64
	BestAsk         *float64
	Spread          *float64
	MidPrice        *float64
	LastMatchTime   time.Time
}
