package events

import "time"

// Protocol version
const (
	ProtocolVersion = "1.0"
	ProtocolName    = "mta-dashboard-protocol"
)

// Protocol error codes
const (
	ErrCodeInvalidFrame    = "INVALID_FRAME"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeMessageTooLarge = "MESSAGE_TOO_LARGE"
	ErrCodeUnsupportedType = "UNSUPPORTED_TYPE"
	ErrCodeServerError     = "SERVER_ERROR"
)

// ConnectionLimits represents connection limits
type ConnectionLimits struct {
	MaxMessageSize    int64 `json:"max_message_size"` // bytes
	MaxMessagesPerSec int   `json:"max_messages_per_sec"`
	IdleTimeout       int   `json:"idle_timeout"` // seconds
}

// Welcome is sent once after the upgrade. Dataset carries the selector choices
// and coverage so the page can build its controls.
type Welcome struct {
	Protocol   string            `json:"protocol"`
	Version    string            `json:"version"`
	SessionID  string            `json:"session_id"`
	ServerTime time.Time         `json:"server_time"`
	Heartbeat  int               `json:"heartbeat_interval"` // seconds
	Limits     *ConnectionLimits `json:"limits,omitempty"`
	Dataset    interface{}       `json:"dataset,omitempty"`
}
