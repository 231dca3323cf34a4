// Package events contains the WebSocket message contracts shared by the dashboard
// server and the browser client.
package events

import (
	"encoding/json"
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Client to server: a new filter state.
	MessageTypeFilter MessageType = "filter"

	// Server to client: the formatted dashboard for the last filter.
	MessageTypeDashboard MessageType = "dashboard"

	// Connection messages
	MessageTypeConnect MessageType = "connect"
	MessageTypeError   MessageType = "error"

	// Server to client: lifecycle notices such as shutdown.
	MessageTypeSystemStatus MessageType = "system:status"
)

// SystemStatus is the data of a system:status message.
type SystemStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
	ReplyTo   string      `json:"reply_to,omitempty"`
}

// WebSocketMessage is an outbound message with an arbitrary payload.
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// ClientMessage is an inbound message. Data is decoded according to Type.
type ClientMessage struct {
	ID   string          `json:"id,omitempty"`
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ErrorPayload is the data of an error message.
type ErrorPayload struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Retry   bool        `json:"retry"`
	Fatal   bool        `json:"fatal"`
}

// NewMessage stamps an outbound message.
func NewMessage(t MessageType, data interface{}) WebSocketMessage {
	return WebSocketMessage{
		BaseMessage: BaseMessage{Type: t, Timestamp: time.Now().UTC()},
		Data:        data,
	}
}
