package websocket

import (
	"context"
	"net"
	"time"

	"github.com/gorilla/websocket"

	"mtapulse/internal/presentation"
	"mtapulse/internal/services"
	"mtapulse/pkg/contracts/domain"
)

// Connection is the subset of *websocket.Conn used by a Client.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(appData string) error)
	RemoteAddr() net.Addr
}

var _ Connection = (*websocket.Conn)(nil)

// DashboardService is what a client needs to answer filter messages.
type DashboardService interface {
	ResolveFilter(req services.FilterRequest) (domain.FilterState, error)
	View(ctx context.Context, state domain.FilterState) (presentation.DashboardView, error)
	DatasetInfo() services.DatasetInfo
}

var _ DashboardService = (*services.DashboardService)(nil)
