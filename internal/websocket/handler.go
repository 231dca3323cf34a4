package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	apierrors "mtapulse/internal/errors"
	"mtapulse/internal/infrastructure"
	"mtapulse/pkg/contracts/events"
)

// HandlerOptions configure the upgrade endpoint.
type HandlerOptions struct {
	Client          Options
	ReadBufferSize  int
	WriteBufferSize int
	// AllowedOrigins lists cross-origin pages allowed to connect. "*" allows
	// any origin. Same-host requests are always accepted.
	AllowedOrigins []string
}

// Handler upgrades HTTP requests to dashboard websocket sessions.
type Handler struct {
	hub          *Hub
	service      DashboardService
	opts         HandlerOptions
	upgrader     websocket.Upgrader
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewHandler creates the /ws handler.
func NewHandler(hub *Hub, service DashboardService, opts HandlerOptions, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	opts.Client = opts.Client.withDefaults()
	h := &Handler{
		hub:          hub,
		service:      service,
		opts:         opts,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "websocket")),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  opts.ReadBufferSize,
		WriteBufferSize: opts.WriteBufferSize,
		CheckOrigin:     h.checkOrigin,
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			h.errorHandler.HandleError(w, r, apierrors.New(status, "WEBSOCKET_UPGRADE_FAILED", reason.Error()))
		},
	}
	return h
}

// ServeHTTP upgrades the connection, sends the welcome frame and starts the
// client pumps.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	traceID := chimw.GetReqID(r.Context())
	if traceID == "" {
		traceID = infrastructure.GenerateTraceID()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			slog.String("trace_id", traceID),
			slog.String("error", err.Error()))
		return
	}

	client := NewClient(h.hub, conn, h.service, h.opts.Client, traceID, h.logger)
	client.sendMessage(events.MessageTypeConnect, "", h.welcome(client))
	h.hub.Register(client)

	// The request context ends when this handler returns.
	ctx := infrastructure.WithTraceID(context.Background(), traceID)
	go client.WritePump()
	go client.ReadPump(ctx)
}

func (h *Handler) welcome(c *Client) events.Welcome {
	return events.Welcome{
		Protocol:   events.ProtocolName,
		Version:    events.ProtocolVersion,
		SessionID:  c.id,
		ServerTime: time.Now().UTC(),
		Heartbeat:  int(c.opts.PingPeriod / time.Second),
		Limits: &events.ConnectionLimits{
			MaxMessageSize:    c.opts.MaxMessageSize,
			MaxMessagesPerSec: int(c.opts.MessagesPerSecond),
			IdleTimeout:       int(c.opts.PongWait / time.Second),
		},
		Dataset: h.service.DatasetInfo(),
	}
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, allowed := range h.opts.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(strings.TrimSuffix(allowed, "/"), origin) {
			return true
		}
	}
	h.logger.Warn("websocket origin rejected", slog.String("origin", origin))
	return false
}
