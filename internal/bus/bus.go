package bus

import (
	"sync"

	"github.com/XavierBriggs/fortuna/services/player-explorer/pkg/models"
)

// Listener receives the current filtered view. The slice is shared with every
// other listener and must be treated as read-only; copy before sorting.
type Listener func(view []models.Player)

// Bus delivers filtered-view changes to listeners synchronously, in the order
// they subscribed.
type Bus struct {
	mu        sync.RWMutex
	listeners []Listener
	published int64
}

// New creates an empty bus
func New() *Bus {
	return &Bus{}
}

// Subscribe registers a listener
func (b *Bus) Subscribe(l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, l)
}

// Publish calls every listener with view and returns once all have returned
func (b *Bus) Publish(view []models.Player) {
	b.mu.Lock()
	listeners := append([]Listener(nil), b.listeners...)
	b.published++
	b.mu.Unlock()

	for _, l := range listeners {
		l(view)
	}
}

// ListenerCount returns the number of registered listeners
func (b *Bus) ListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

// Published returns how many times Publish has run
func (b *Bus) Published() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.published
}
