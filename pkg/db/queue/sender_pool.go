package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/openlob/openlob/pkg/messaging"
)

var (
	senderPool   chan messaging.MessageSender
	poolInitOnce sync.Once
	maxPoolSize  = 32
)

// initSenderPool initializes the sender pool
func initSenderPool() {
	poolInitOnce.Do(func() {
		senderPool = make(chan messaging.MessageSender, maxPoolSize)
		// Pre-populate the entire pool
		for i := 0; i < maxPoolSize; i++ {
			sender, err := NewQueueMessageSender()
			if err != nil {
				fmt.Printf("Error creating sender: %v\n", err)
				continue
			}
			if sender != nil {
				senderPool <- sender
			}
		}
	})
}

// GetSender gets a sender from the pool
func GetSender() messaging.MessageSender {
	initSenderPool()

	select {
	case sender := <-senderPool:
		return sender
	default:
		// Pool exhausted: every sender is mid-send or the broker was
		// unreachable at init.
		fmt.Printf("Warning: sender pool is empty\n")
		return nil
	}
}

// ReturnSender returns a sender to the pool
func ReturnSender(sender messaging.MessageSender) {
	if sender == nil {
		return
	}

	select {
	case senderPool <- sender:
	default:
		fmt.Printf("Warning: sender pool is full\n")
		_ = sender.Close()
	}
}

// PooledSender is a MessageSender that borrows a producer from the
// pool for each send. Close is a no-op; pooled producers live for the
// process lifetime.
type PooledSender struct{}

// NewPooledSender returns a sender backed by the pool
func NewPooledSender() *PooledSender {
	return &PooledSender{}
}

// SendExecutionMessage sends through a pooled producer
func (p *PooledSender) SendExecutionMessage(ctx context.Context, msg *messaging.ExecutionMessage) error {
	return SendMessage(ctx, msg)
}

// Close implements MessageSender
func (p *PooledSender) Close() error {
	return nil
}

var _ messaging.MessageSender = (*PooledSender)(nil)

// SendMessage sends an execution message using a pooled sender
func SendMessage(ctx context.Context, msg *messaging.ExecutionMessage) error {
	sender := GetSender()
	if sender == nil {
		return fmt.Errorf("failed to get message sender from pool")
	}

	if err := sender.SendExecutionMessage(ctx, msg); err != nil {
		// Likely a broken connection; drop the sender instead of
		// returning it to the pool.
		_ = sender.Close()
		return err
	}

	ReturnSender(sender)
	return nil
}
