package messaging

import (
	"context"
	"sync"
)

// MockMessageSender records messages in memory for testing.
type MockMessageSender struct {
	mu   sync.Mutex
	sent []*ExecutionMessage
}

// NewMockMessageSender creates a new MockMessageSender.
func NewMockMessageSender() *MockMessageSender {
	return &MockMessageSender{}
}

// SendExecutionMessage records the message.
func (m *MockMessageSender) SendExecutionMessage(_ context.Context, msg *ExecutionMessage) error {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	return nil
}

// Sent returns a copy of everything recorded so far.
func (m *MockMessageSender) Sent() []*ExecutionMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*ExecutionMessage, len(m.sent))
	copy(out, m.sent)
	return out
}

// Close does nothing.
func (m *MockMessageSender) Close() error {
	return nil
}

// Ensure MockMessageSender implements MessageSender
var _ MessageSender = (*MockMessageSender)(nil)
