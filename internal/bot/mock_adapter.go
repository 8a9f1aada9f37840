package bot

import (
	"context"
	"sync"
)

// MockAdapter is an in-memory Adapter for tests. It records everything sent
// and lets tests feed inbound events through SimulateInbound.
type MockAdapter struct {
	mu        sync.Mutex
	connected bool
	nextID    int
	sent      []Outbound
	deleted   []int
	acked     []string
	events    chan Inbound
}

// NewMockAdapter creates a MockAdapter.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{events: make(chan Inbound, 16)}
}

// Connect marks the adapter as connected.
func (m *MockAdapter) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = true
	return nil
}

// Listen returns the simulated event channel.
func (m *MockAdapter) Listen(ctx context.Context) (<-chan Inbound, error) {
	return m.events, nil
}

// Send records the message and returns a monotonically increasing ID.
func (m *MockAdapter) Send(ctx context.Context, msg Outbound) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.sent = append(m.sent, msg)
	return m.nextID, nil
}

// DeleteMessage records the deleted message ID.
func (m *MockAdapter) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, messageID)
	return nil
}

// AckCallback records the acknowledged callback ID.
func (m *MockAdapter) AckCallback(ctx context.Context, callbackID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acked = append(m.acked, callbackID)
	return nil
}

// Close closes the simulated event channel.
func (m *MockAdapter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.connected {
		m.connected = false
		close(m.events)
	}
	return nil
}

// SimulateInbound injects an event as if it arrived from the platform.
func (m *MockAdapter) SimulateInbound(ev Inbound) {
	m.events <- ev
}

// Sent returns a copy of all messages sent so far.
func (m *MockAdapter) Sent() []Outbound {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Outbound, len(m.sent))
	copy(out, m.sent)
	return out
}

// LastSent returns the most recently sent message, or a zero Outbound.
func (m *MockAdapter) LastSent() Outbound {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return Outbound{}
	}
	return m.sent[len(m.sent)-1]
}

// Deleted returns the IDs of all deleted messages.
func (m *MockAdapter) Deleted() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, len(m.deleted))
	copy(out, m.deleted)
	return out
}

// Acked returns the IDs of all acknowledged callbacks.
func (m *MockAdapter) Acked() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.acked))
	copy(out, m.acked)
	return out
}
