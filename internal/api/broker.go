package api

import (
	"sync"
)

// SSEEvent is one plan lifecycle event pushed to streaming clients.
type SSEEvent struct {
	Type string
	Data map[string]any
}

// Broker is the in-process fan-out of plan events, keyed by convoy id.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan SSEEvent]struct{} // convoyId -> set of channels
}

func NewBroker() *Broker {
	return &Broker{subs: map[string]map[chan SSEEvent]struct{}{}}
}

func (b *Broker) Subscribe(convoyID string) chan SSEEvent {
	ch := make(chan SSEEvent, 8)
	b.mu.Lock()
	if b.subs[convoyID] == nil {
		b.subs[convoyID] = map[chan SSEEvent]struct{}{}
	}
	b.subs[convoyID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(convoyID string, ch chan SSEEvent) {
	b.mu.Lock()
	if m := b.subs[convoyID]; m != nil {
		delete(m, ch)
		if len(m) == 0 {
			delete(b.subs, convoyID)
		}
	}
	b.mu.Unlock()
	close(ch)
}

func (b *Broker) Publish(convoyID string, evt SSEEvent) {
	b.mu.Lock()
	m := b.subs[convoyID]
	for ch := range m {
		select {
		case ch <- evt:
		default:
		}
	}
	b.mu.Unlock()
}
