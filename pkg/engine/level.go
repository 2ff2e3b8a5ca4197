package engine

import (
	"fmt"

	"github.com/nikolaydubina/fpdecimal"
)

// levelNode is the intrusive list node holding one resting order. The
// node pointer is kept in the order index so cancellation can unlink in
// O(1) without scanning the level.
type levelNode struct {
	order *Order
	prev  *levelNode
	next  *levelNode
}

// priceLevel is a FIFO queue of resting orders at one price with an
// incrementally maintained aggregate quantity. It has no lock of its
// own: all access happens under the Book's exclusivity.
type priceLevel struct {
	price fpdecimal.Decimal
	head  *levelNode
	tail  *levelNode
	size  int
	total fpdecimal.Decimal
}

func newPriceLevel(price fpdecimal.Decimal) *priceLevel {
	return &priceLevel{price: price}
}

// Price returns the level's price
func (l *priceLevel) Price() fpdecimal.Decimal {
	return l.price
}

// Total returns the aggregate remaining quantity of all member orders
func (l *priceLevel) Total() fpdecimal.Decimal {
	return l.total
}

// Len returns the number of resting orders at this level
func (l *priceLevel) Len() int {
	return l.size
}

func (l *priceLevel) empty() bool {
	return l.size == 0
}

// append adds a new resting order at the back of the queue and returns
// its node for index registration.
func (l *priceLevel) append(o *Order) *levelNode {
	n := &levelNode{order: o}
	if l.tail == nil {
		l.head = n
		l.tail = n
	} else {
		n.prev = l.tail
		l.tail.next = n
		l.tail = n
	}
	l.size++
	l.total = l.total.Add(o.Remaining())
	return n
}

// headOrder returns the oldest resting order, or nil if the level is empty
func (l *priceLevel) headOrder() *Order {
	if l.head == nil {
		return nil
	}
	return l.head.order
}

// fillHead consumes quantity from the oldest order, keeping the
// aggregate in sync. The caller removes the head once its remaining
// quantity reaches zero.
func (l *priceLevel) fillHead(quantity fpdecimal.Decimal) {
	l.head.order.decreaseRemaining(quantity)
	l.total = l.total.Sub(quantity)
}

// unlink removes a node from anywhere in the queue. Aggregate quantity
// drops by the order's remaining quantity, which is zero for a fully
// consumed head.
func (l *priceLevel) unlink(n *levelNode) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev = nil
	n.next = nil
	l.size--
	l.total = l.total.Sub(n.order.Remaining())

	if l.size == 0 && !l.total.Equal(fpdecimal.Zero) {
		// Aggregate diverging from membership means the matching
		// discipline itself is broken; refuse to run on.
		panic(fmt.Sprintf("price level %s: empty but aggregate %s", l.price.String(), l.total.String()))
	}
}
