package hub_test

import (
	"context"
	"testing"
	"time"

	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/client"
	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/hub"
	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/testutil"
	"github.com/XavierBriggs/fortuna/services/player-explorer/pkg/models"
)

// MockSource is a fixed explorer state
type MockSource struct {
	filters  models.FilterConfig
	selected []models.Player
}

func (m *MockSource) Filters() models.FilterConfig { return m.filters }
func (m *MockSource) Selected() []models.Player    { return m.selected }

// MockController ignores every command
type MockController struct{}

func (MockController) UpdateFilters(update models.FilterUpdate) error { return nil }
func (MockController) ToggleByName(ctx context.Context, name string) (bool, error) {
	return false, nil
}

func receive(t *testing.T, c *client.Client) models.ServerMessage {
	t.Helper()
	select {
	case msg, ok := <-c.Send:
		if !ok {
			t.Fatal("send channel closed")
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
	return models.ServerMessage{}
}

func TestViewMessage(t *testing.T) {
	squad := testutil.MockSquad()
	src := &MockSource{filters: models.DefaultFilterConfig(), selected: squad[3:]}

	msg := hub.ViewMessage(src, squad[:2])

	if msg.Type != models.MessageTypeFilteredView {
		t.Errorf("type = %s", msg.Type)
	}
	update := msg.Payload.(models.ViewUpdate)
	if update.Count != 2 || len(update.Players) != 2 {
		t.Errorf("count = %d, players = %d", update.Count, len(update.Players))
	}
	if len(update.Selected) != 1 || update.Selected[0] != "Delta" {
		t.Errorf("selected = %v", update.Selected)
	}
}

func TestHub_BroadcastsBusUpdates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := hub.NewHub()
	go h.Run(ctx)

	c := client.NewClient("c1", nil, h, MockController{})
	h.Register(c)

	src := &MockSource{filters: models.DefaultFilterConfig()}
	h.ViewListener(src)(testutil.MockSquad())

	msg := receive(t, c)
	if msg.Type != models.MessageTypeFilteredView {
		t.Fatalf("type = %s, want filtered_view", msg.Type)
	}
	if n := msg.Payload.(models.ViewUpdate).Count; n != 4 {
		t.Errorf("count = %d, want 4", n)
	}

	h.SelectionListener()(testutil.MockSquad()[:1])
	msg = receive(t, c)
	if msg.Type != models.MessageTypeSelection {
		t.Fatalf("type = %s, want selection", msg.Type)
	}

	if h.GetClientCount() != 1 {
		t.Errorf("client count = %d, want 1", h.GetClientCount())
	}
	metrics := h.GetMetrics()
	if metrics["total_connections"].(int64) != 1 {
		t.Errorf("total_connections = %v", metrics["total_connections"])
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := hub.NewHub()
	go h.Run(ctx)

	c := client.NewClient("c1", nil, h, MockController{})
	h.Register(c)
	h.Unregister(c)

	select {
	case _, ok := <-c.Send:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("send channel not closed")
	}
}

func TestHub_BroadcastDoesNotBlock(t *testing.T) {
	h := hub.NewHub()

	// Run is not started, so the queue fills up
	done := make(chan struct{})
	go func() {
		for i := 0; i < 300; i++ {
			h.Broadcast(models.ServerMessage{Type: models.MessageTypeSelection})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Broadcast blocked on a full queue")
	}

	if dropped := h.GetMetrics()["dropped_messages"].(int64); dropped != 300-256 {
		t.Errorf("dropped = %d, want %d", dropped, 300-256)
	}
}

// waitClosed blocks until the hub has closed c.Send
func waitClosed(t *testing.T, c *client.Client) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-c.Send:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("send channel not closed")
		}
	}
}

func TestHub_RepliesAfterUnregister(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := hub.NewHub()
	go h.Run(ctx)

	c := client.NewClient("c1", nil, h, MockController{})
	h.Register(c)
	h.Unregister(c)
	waitClosed(t, c)

	// The read side can still be handling a command
	c.HandleMessage(ctx, models.ClientMessage{Type: models.MessageTypeHeartbeat})
	c.HandleMessage(ctx, models.ClientMessage{Type: "bogus"})

	if c.TrySend(models.ServerMessage{Type: models.MessageTypeSelection}) {
		t.Error("TrySend succeeded after unregister")
	}
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	h := hub.NewHub()
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	c := client.NewClient("c1", nil, h, MockController{})
	h.Register(c)

	cancel()
	<-stopped
	waitClosed(t, c)

	c.HandleMessage(context.Background(), models.ClientMessage{Type: models.MessageTypeHeartbeat})

	// Late pump teardown and new connections do not block
	returned := make(chan struct{})
	go func() {
		h.Unregister(c)
		h.Register(client.NewClient("c2", nil, h, MockController{}))
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("Register/Unregister blocked after shutdown")
	}

	if h.GetClientCount() != 0 {
		t.Errorf("client count = %d, want 0", h.GetClientCount())
	}
}
