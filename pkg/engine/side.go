package engine

import (
	"github.com/google/btree"
	"github.com/nikolaydubina/fpdecimal"
)

// bookSide holds the price levels of one direction, ordered best-first:
// bids descend, asks ascend, so tree.Min is always the best level.
type bookSide struct {
	tree *btree.BTreeG[*priceLevel]
	side Side
}

func newBookSide(side Side) *bookSide {
	less := func(a, b *priceLevel) bool {
		if side == Buy {
			return a.price.GreaterThan(b.price)
		}
		return a.price.LessThan(b.price)
	}
	return &bookSide{
		tree: btree.NewG(32, less),
		side: side,
	}
}

// best returns the top-priority level, or nil if the side is empty
func (s *bookSide) best() *priceLevel {
	lvl, ok := s.tree.Min()
	if !ok {
		return nil
	}
	return lvl
}

// get returns the level at the given price, or nil
func (s *bookSide) get(price fpdecimal.Decimal) *priceLevel {
	lvl, ok := s.tree.Get(&priceLevel{price: price})
	if !ok {
		return nil
	}
	return lvl
}

// getOrCreate returns the level at the given price, creating it lazily
// on the first resting order.
func (s *bookSide) getOrCreate(price fpdecimal.Decimal) *priceLevel {
	if lvl := s.get(price); lvl != nil {
		return lvl
	}
	lvl := newPriceLevel(price)
	s.tree.ReplaceOrInsert(lvl)
	return lvl
}

// removeLevel drops an emptied level from the side
func (s *bookSide) removeLevel(lvl *priceLevel) {
	s.tree.Delete(lvl)
}

// ascend visits levels in priority order until fn returns false
func (s *bookSide) ascend(fn func(lvl *priceLevel) bool) {
	s.tree.Ascend(func(lvl *priceLevel) bool {
		return fn(lvl)
	})
}

// Len returns the number of non-empty price levels
func (s *bookSide) Len() int {
	return s.tree.Len()
}
