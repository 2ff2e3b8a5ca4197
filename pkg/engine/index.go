package engine

import "sync"

// indexShards bounds contention to colliding buckets; order IDs are
// monotonic so consecutive orders land on distinct shards.
const indexShards = 64

// orderRef locates a resting order: its side, its price level, and its
// node within the level, so cancellation needs no scan.
type orderRef struct {
	order *Order
	side  Side
	level *priceLevel
	node  *levelNode
}

type indexShard struct {
	mu   sync.RWMutex
	refs map[uint64]*orderRef
}

// orderIndex is a sharded map from order ID to location. Reads are
// concurrent; writes lock only the owning shard.
type orderIndex struct {
	shards [indexShards]indexShard
}

func newOrderIndex() *orderIndex {
	idx := &orderIndex{}
	for i := range idx.shards {
		idx.shards[i].refs = make(map[uint64]*orderRef)
	}
	return idx
}

func (idx *orderIndex) shard(orderID uint64) *indexShard {
	return &idx.shards[orderID%indexShards]
}

func (idx *orderIndex) get(orderID uint64) (*orderRef, bool) {
	s := idx.shard(orderID)
	s.mu.RLock()
	ref, ok := s.refs[orderID]
	s.mu.RUnlock()
	return ref, ok
}

func (idx *orderIndex) put(orderID uint64, ref *orderRef) {
	s := idx.shard(orderID)
	s.mu.Lock()
	s.refs[orderID] = ref
	s.mu.Unlock()
}

func (idx *orderIndex) delete(orderID uint64) {
	s := idx.shard(orderID)
	s.mu.Lock()
	delete(s.refs, orderID)
	s.mu.Unlock()
}

// len reports the number of resting orders across all shards
func (idx *orderIndex) len() int {
	total := 0
	for i := range idx.shards {
		idx.shards[i].mu.RLock()
		total += len(idx.shards[i].refs)
		idx.shards[i].mu.RUnlock()
	}
	return total
}
