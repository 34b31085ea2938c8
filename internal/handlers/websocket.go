package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/client"
	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/hub"
	"github.com/XavierBriggs/fortuna/services/player-explorer/pkg/models"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// Origins are enforced by the CORS layer
		return true
	},
}

// HandleWebSocket upgrades a dashboard page to a live connection. The page
// receives the current view and selection immediately, then every change.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		fmt.Printf("⚠️  WebSocket upgrade error: %v\n", err)
		return
	}

	clientID := uuid.New().String()
	c := client.NewClient(clientID, conn, h.hub, h.manager)

	h.hub.Register(c)

	c.TrySend(hub.ViewMessage(h.manager, h.manager.Filtered()))
	c.TrySend(models.ServerMessage{
		Type:      models.MessageTypeSelection,
		Payload:   h.manager.Selected(),
		Timestamp: time.Now(),
	})

	// Start client pumps (use handler context, not request context)
	go c.WritePump(h.ctx)
	go c.ReadPump(h.ctx)

	fmt.Printf("✓ WebSocket connection established: %s\n", clientID)
}
