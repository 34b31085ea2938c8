package models

import "time"

// Message types for WebSocket communication
const (
	MessageTypeFilteredView    = "filtered_view"
	MessageTypeSelection       = "selection"
	MessageTypeUpdateFilters   = "update_filters"
	MessageTypeToggleSelection = "toggle_selection"
	MessageTypeHeartbeat       = "heartbeat"
	MessageTypeError           = "error"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ViewUpdate is the payload pushed to live clients whenever the filtered view changes
type ViewUpdate struct {
	Filters  FilterConfig `json:"filters"`
	Players  []Player     `json:"players"`
	Count    int          `json:"count"`
	Selected []string     `json:"selected"`
}

// ToggleRequest identifies the player to lock or unlock
type ToggleRequest struct {
	Name string `json:"name"`
}

// ConnectionStats represents connection statistics
type ConnectionStats struct {
	ClientID          string    `json:"client_id"`
	ConnectedAt       time.Time `json:"connected_at"`
	MessagesSent      int64     `json:"messages_sent"`
	MessagesReceived  int64     `json:"messages_received"`
	LastMessageAt     time.Time `json:"last_message_at"`
	BufferSize        int       `json:"buffer_size"`
	BufferUtilization float64   `json:"buffer_utilization"` // Percentage
}

// ErrorMessage represents an error message
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the JSON body of every failed HTTP request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
