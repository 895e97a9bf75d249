package realtime

import (
	"sync"

	"github.com/codrift/codrift/backend/go-services/pkg/metrics"
)

// Hub is an in-process topic fan-out. Sends never block: a subscriber that
// cannot keep up loses events rather than stalling the publisher.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[int]chan Event
	next int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int]chan Event)}
}

// Subscribe attaches a buffered channel to topic. The returned cancel
// function detaches and closes it; calling cancel more than once is safe.
func (h *Hub) Subscribe(topic string, buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	h.mu.Lock()
	id := h.next
	h.next++
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[int]chan Event)
	}
	h.subs[topic][id] = ch
	h.mu.Unlock()
	metrics.RealtimeSubscribers.Inc()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if m, ok := h.subs[topic]; ok {
				delete(m, id)
				if len(m) == 0 {
					delete(h.subs, topic)
				}
			}
			h.mu.Unlock()
			close(ch)
			metrics.RealtimeSubscribers.Dec()
		})
	}
	return ch, cancel
}

// Publish delivers ev to every current subscriber of topic.
func (h *Hub) Publish(topic string, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs[topic] {
		select {
		case ch <- ev:
		default:
			// subscriber buffer full, drop
		}
	}
}
