package events

import (
	"context"
	"sync"
)

// MockPublisher is an in-memory Publisher used by service tests. It
// records published events and fans them out to local subscribers.
type MockPublisher struct {
	mu        sync.RWMutex
	published []Event
	subs      map[string][]chan Event
	failWith  error
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		subs: make(map[string][]chan Event),
	}
}

// FailWith makes every subsequent Publish return err.
func (m *MockPublisher) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

// Published returns a copy of all events published so far.
func (m *MockPublisher) Published() []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Event, len(m.published))
	copy(out, m.published)
	return out
}

func (m *MockPublisher) Publish(ctx context.Context, driverID string, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWith != nil {
		return m.failWith
	}

	m.published = append(m.published, event)
	for _, ch := range m.subs[driverID] {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (m *MockPublisher) Subscribe(ctx context.Context, driverID string, subscriberID string, filters ...EventType) (<-chan Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan Event, 16)
	m.subs[driverID] = append(m.subs[driverID], ch)
	return ch, nil
}

func (m *MockPublisher) Unsubscribe(ctx context.Context, driverID string, subscriberID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, ch := range m.subs[driverID] {
		close(ch)
	}
	delete(m.subs, driverID)
	return nil
}

func (m *MockPublisher) Shutdown(ctx context.Context) error {
	return nil
}
