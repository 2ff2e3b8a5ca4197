package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/nikolaydubina/fpdecimal"
)

// statsTracker holds independent monotonic counters updated as side
// effects of book operations. Counters are not a transactional group: a
// reader may observe one incremented and not yet another.
type statsTracker struct {
	ordersCreated   atomic.Uint64
	ordersMatched   atomic.Uint64
	ordersCancelled atomic.Uint64
	lastMatchMilli  atomic.Int64

	mu     sync.Mutex
	volume fpdecimal.Decimal
}

func newStatsTracker() *statsTracker {
	return &statsTracker{}
}

func (t *statsTracker) recordCreated() {
	t.ordersCreated.Add(1)
}

func (t *statsTracker) recordCancelled() {
	t.ordersCancelled.Add(1)
}

// recordFills accounts one match event: fill count, traded quantity,
// and the last-match timestamp.
func (t *statsTracker) recordFills(fills int, quantity fpdecimal.Decimal, at time.Time) {
	if fills == 0 {
		return
	}
	t.ordersMatched.Add(uint64(fills))
	t.lastMatchMilli.Store(at.UnixMilli())

	t.mu.Lock()
	t.volume = t.volume.Add(quantity)
	t.mu.Unlock()
}

func (t *statsTracker) volumeTraded() fpdecimal.Decimal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.volume
}

// lastMatch returns the time of the most recent fill, or a zero time if
// nothing has matched yet.
func (t *statsTracker) lastMatch() time.Time {
	ms := t.lastMatchMilli.Load()
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
