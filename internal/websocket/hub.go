package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"

	"mtapulse/internal/infrastructure"
	"mtapulse/pkg/contracts/events"
)

// Hub maintains the set of active clients and fans out broadcasts.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu      sync.RWMutex
	metrics *infrastructure.DashboardMetrics
	logger  *slog.Logger

	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	totalConnections atomic.Int64
	messagesSent     atomic.Int64
}

// HubStats is a point-in-time snapshot of hub activity.
type HubStats struct {
	Clients          int   `json:"clients"`
	TotalConnections int64 `json:"total_connections"`
	MessagesSent     int64 `json:"messages_sent"`
}

// NewHub creates a hub. metrics may be nil.
func NewHub(metrics *infrastructure.DashboardMetrics, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		metrics:    metrics,
		logger:     logger.With(slog.String("component", "websocket_hub")),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start runs the hub loop in its own goroutine.
func (h *Hub) Start() {
	go h.Run()
}

// Run processes registrations and broadcasts until Stop is called.
func (h *Hub) Run() {
	defer close(h.done)
	ctx := context.Background()

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()

			h.totalConnections.Add(1)
			h.metrics.RecordWebSocketConnection(ctx, 1)
			h.logger.Info("client connected",
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr),
				slog.Int("clients", count))

		case client := <-h.unregister:
			if h.remove(client) {
				h.metrics.RecordWebSocketConnection(ctx, -1)
				h.logger.Info("client disconnected",
					slog.String("client_id", client.id),
					slog.Int("clients", h.ClientCount()))
			}

		case message := <-h.broadcast:
			h.mu.RLock()
			var slow []*Client
			for client := range h.clients {
				if client.enqueue(message) {
					h.messagesSent.Add(1)
				} else {
					slow = append(slow, client)
				}
			}
			h.mu.RUnlock()

			for _, client := range slow {
				if h.remove(client) {
					h.metrics.RecordWebSocketConnection(ctx, -1)
					h.logger.Warn("dropped slow client", slog.String("client_id", client.id))
				}
			}

		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				client.closeSend()
				delete(h.clients, client)
				h.metrics.RecordWebSocketConnection(ctx, -1)
			}
			h.mu.Unlock()
			h.logger.Info("hub stopped")
			return
		}
	}
}

func (h *Hub) remove(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return false
	}
	delete(h.clients, client)
	client.closeSend()
	return true
}

// Register adds a client. It is a no-op once the hub has stopped.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
		client.closeSend()
	}
}

// Unregister removes a client. It is a no-op once the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// Broadcast sends msg to every connected client.
func (h *Hub) Broadcast(msg events.WebSocketMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- data:
	case <-h.quit:
	}
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns hub counters.
func (h *Hub) Stats() HubStats {
	return HubStats{
		Clients:          h.ClientCount(),
		TotalConnections: h.totalConnections.Load(),
		MessagesSent:     h.messagesSent.Load(),
	}
}

// Stop closes every client and ends Run. It waits for Run to exit when it was
// started.
func (h *Hub) Stop(ctx context.Context) error {
	h.stopOnce.Do(func() { close(h.quit) })
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
