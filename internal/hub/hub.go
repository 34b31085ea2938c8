package hub

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/bus"
	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/client"
	"github.com/XavierBriggs/fortuna/services/player-explorer/pkg/models"
)

// Source is the read side of the explorer the hub snapshots from
type Source interface {
	Filters() models.FilterConfig
	Selected() []models.Player
}

// Hub maintains the set of live dashboard connections and fans view updates out to them
type Hub struct {
	// Registered clients
	clients   map[*client.Client]bool
	clientsMu sync.RWMutex

	// Outbound messages from bus listeners
	broadcast chan models.ServerMessage

	// Register requests from clients
	register chan *client.Client

	// Unregister requests from clients
	unregister chan *client.Client

	// Closed once Run has shut down
	done chan struct{}

	// Metrics
	totalConnections int64
	totalMessages    int64
	droppedMessages  int64
	metricsMu        sync.Mutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client.Client]bool),
		broadcast:  make(chan models.ServerMessage, 256),
		register:   make(chan *client.Client),
		unregister: make(chan *client.Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run(ctx context.Context) {
	fmt.Println("✓ Hub started")

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case c := <-h.register:
			h.registerClient(c)

		case c := <-h.unregister:
			h.unregisterClient(c)

		case msg := <-h.broadcast:
			h.broadcastMessage(msg)
		}
	}
}

// Register adds a client to the hub. After shutdown the client is closed instead.
func (h *Hub) Register(c *client.Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.Close()
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(c *client.Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues a message for every client without blocking the caller.
// Bus listeners call it synchronously, so a full queue drops the message.
func (h *Hub) Broadcast(msg models.ServerMessage) {
	select {
	case h.broadcast <- msg:
	default:
		h.metricsMu.Lock()
		h.droppedMessages++
		h.metricsMu.Unlock()
		fmt.Println("⚠️  Broadcast buffer full, dropping message")
	}
}

// ViewListener returns a bus listener pushing each filtered view to clients
func (h *Hub) ViewListener(src Source) bus.Listener {
	return func(view []models.Player) {
		h.Broadcast(ViewMessage(src, view))
	}
}

// SelectionListener returns a bus listener pushing selection changes to clients
func (h *Hub) SelectionListener() bus.Listener {
	return func(selected []models.Player) {
		h.Broadcast(models.ServerMessage{
			Type:      models.MessageTypeSelection,
			Payload:   selected,
			Timestamp: time.Now(),
		})
	}
}

// ViewMessage wraps a filtered view with the filters and selection it was computed under
func ViewMessage(src Source, view []models.Player) models.ServerMessage {
	return models.ServerMessage{
		Type: models.MessageTypeFilteredView,
		Payload: models.ViewUpdate{
			Filters:  src.Filters(),
			Players:  view,
			Count:    len(view),
			Selected: models.Names(src.Selected()),
		},
		Timestamp: time.Now(),
	}
}

// registerClient adds a client to the active clients map
func (h *Hub) registerClient(c *client.Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.clients[c] = true

	h.metricsMu.Lock()
	h.totalConnections++
	h.metricsMu.Unlock()

	fmt.Printf("client %s connected (total: %d)\n", c.ID, len(h.clients))
}

// unregisterClient removes a client from the active clients map
func (h *Hub) unregisterClient(c *client.Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.Close()
		fmt.Printf("client %s disconnected (total: %d)\n", c.ID, len(h.clients))
	}
}

// broadcastMessage sends a message to all clients
func (h *Hub) broadcastMessage(msg models.ServerMessage) {
	h.clientsMu.RLock()
	clients := make([]*client.Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	sent := 0
	dropped := 0

	for _, c := range clients {
		if c.TrySend(msg) {
			sent++
		} else {
			dropped++
			// Client buffer full - they're too slow, disconnect them
			fmt.Printf("⚠️  client %s buffer full, disconnecting\n", c.ID)
			go h.Unregister(c)
		}
	}

	if sent > 0 {
		h.metricsMu.Lock()
		h.totalMessages++
		h.metricsMu.Unlock()
	}

	if dropped > 0 {
		fmt.Printf("⚠️  Dropped %d messages (slow clients)\n", dropped)
	}
}

// GetMetrics returns hub metrics
func (h *Hub) GetMetrics() map[string]interface{} {
	h.clientsMu.RLock()
	activeClients := len(h.clients)
	h.clientsMu.RUnlock()

	h.metricsMu.Lock()
	defer h.metricsMu.Unlock()

	return map[string]interface{}{
		"active_clients":     activeClients,
		"total_connections":  h.totalConnections,
		"total_messages":     h.totalMessages,
		"dropped_messages":   h.droppedMessages,
		"broadcast_capacity": cap(h.broadcast),
		"broadcast_usage":    len(h.broadcast),
	}
}

// GetClientCount returns the number of active clients
func (h *Hub) GetClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// shutdown closes all client connections
func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	fmt.Printf("🛑 Shutting down hub (%d active clients)\n", len(h.clients))
	close(h.done)

	for c := range h.clients {
		c.Close()
		delete(h.clients, c)
	}
}
