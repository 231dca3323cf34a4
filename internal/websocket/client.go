package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	apierrors "mtapulse/internal/errors"
	"mtapulse/internal/infrastructure"
	"mtapulse/internal/services"
	"mtapulse/pkg/contracts/events"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	defaultSendBuffer = 256
)

// Options tune a client connection.
type Options struct {
	PingPeriod        time.Duration
	PongWait          time.Duration
	MaxMessageSize    int64
	SendBuffer        int
	MessagesPerSecond float64
	Burst             int
	// RequestTimeout bounds the work done for a single filter message.
	RequestTimeout time.Duration
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		PingPeriod:        30 * time.Second,
		PongWait:          60 * time.Second,
		MaxMessageSize:    4096,
		SendBuffer:        defaultSendBuffer,
		MessagesPerSecond: 10,
		Burst:             20,
		RequestTimeout:    30 * time.Second,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.PongWait <= 0 {
		o.PongWait = d.PongWait
	}
	if o.PingPeriod <= 0 || o.PingPeriod >= o.PongWait {
		o.PingPeriod = o.PongWait * 9 / 10
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = d.MaxMessageSize
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = d.SendBuffer
	}
	if o.MessagesPerSecond <= 0 {
		o.MessagesPerSecond = d.MessagesPerSecond
	}
	if o.Burst <= 0 {
		o.Burst = d.Burst
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = d.RequestTimeout
	}
	return o
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub     *Hub
	conn    Connection
	service DashboardService
	opts    Options
	limiter *rate.Limiter

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	id          string
	traceID     string
	remoteAddr  string
	connectedAt time.Time
	logger      *slog.Logger
}

// NewClient wraps conn. traceID tags every outbound message and log line.
func NewClient(hub *Hub, conn Connection, service DashboardService, opts Options, traceID string, logger *slog.Logger) *Client {
	opts = opts.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New().String()
	remote := ""
	if addr := conn.RemoteAddr(); addr != nil {
		remote = addr.String()
	}
	return &Client{
		hub:         hub,
		conn:        conn,
		service:     service,
		opts:        opts,
		limiter:     rate.NewLimiter(rate.Limit(opts.MessagesPerSecond), opts.Burst),
		send:        make(chan []byte, opts.SendBuffer),
		done:        make(chan struct{}),
		id:          id,
		traceID:     traceID,
		remoteAddr:  remote,
		connectedAt: time.Now(),
		logger: logger.With(
			slog.String("component", "websocket_client"),
			slog.String("client_id", id),
			slog.String("trace_id", traceID)),
	}
}

// ID returns the session id.
func (c *Client) ID() string {
	return c.id
}

// closeSend stops the write pump. Safe to call more than once.
func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.done) })
}

// enqueue queues a frame without blocking. It reports false when the client
// is closed or its buffer is full.
func (c *Client) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// ReadPump reads client messages until the connection fails, answering each
// one in order. The write pump closes the connection once ReadPump returns.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		if c.hub != nil {
			c.hub.Unregister(c)
		}
		c.closeSend()
	}()

	c.conn.SetReadLimit(c.opts.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if errors.Is(err, websocket.ErrReadLimit) {
				c.sendError("", events.ErrCodeMessageTooLarge, "message exceeds the size limit", false, true)
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read failed", slog.String("error", err.Error()))
			}
			return
		}
		c.handleMessage(ctx, data)
	}
}

func (c *Client) handleMessage(ctx context.Context, data []byte) {
	var msg events.ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
		c.sendError("", events.ErrCodeInvalidFrame, "message is not a valid frame", false, false)
		return
	}

	if !c.limiter.Allow() {
		c.sendError(msg.ID, events.ErrCodeRateLimited, "too many messages", true, false)
		return
	}
	c.metrics().RecordWebSocketMessage(ctx, string(msg.Type))

	switch msg.Type {
	case events.MessageTypeFilter:
		c.handleFilter(ctx, msg)
	default:
		c.sendError(msg.ID, events.ErrCodeUnsupportedType, "unsupported message type: "+string(msg.Type), false, false)
	}
}

func (c *Client) handleFilter(ctx context.Context, msg events.ClientMessage) {
	var req services.FilterRequest
	if len(msg.Data) > 0 && string(msg.Data) != "null" {
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			c.sendError(msg.ID, events.ErrCodeInvalidFrame, "filter data is malformed", false, false)
			return
		}
	}

	state, err := c.service.ResolveFilter(req)
	if err != nil {
		c.sendServiceError(ctx, msg.ID, err)
		return
	}

	viewCtx, cancel := context.WithTimeout(ctx, c.opts.RequestTimeout)
	defer cancel()

	view, err := c.service.View(viewCtx, state)
	if err != nil {
		c.sendServiceError(ctx, msg.ID, err)
		return
	}

	c.logger.Debug("dashboard pushed",
		slog.String("filter", state.Key()),
		slog.Int("records", view.RecordCount))
	c.sendMessage(events.MessageTypeDashboard, msg.ID, view)
}

func (c *Client) sendServiceError(ctx context.Context, replyTo string, err error) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		c.sendError(replyTo, events.ErrCodeServerError, "request timed out", true, false)
		return
	}

	apiErr := apierrors.ToAPIError(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		c.metrics().RecordSystemError(ctx, "websocket")
		c.logger.Error("filter request failed", slog.String("error", err.Error()))
	}
	c.sendMessage(events.MessageTypeError, replyTo, events.ErrorPayload{
		Code:    apiErr.ErrorCode,
		Message: apiErr.Message,
		Details: apiErr.Details,
		Retry:   apiErr.StatusCode >= http.StatusInternalServerError,
	})
}

func (c *Client) sendError(replyTo, code, message string, retry, fatal bool) {
	c.sendMessage(events.MessageTypeError, replyTo, events.ErrorPayload{
		Code:    code,
		Message: message,
		Retry:   retry,
		Fatal:   fatal,
	})
}

// sendMessage queues a stamped message for the write pump.
func (c *Client) sendMessage(t events.MessageType, replyTo string, data interface{}) bool {
	msg := events.NewMessage(t, data)
	msg.ID = uuid.New().String()
	msg.TraceID = c.traceID
	msg.ReplyTo = replyTo

	payload, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("failed to encode message", slog.String("type", string(t)), slog.String("error", err.Error()))
		return false
	}
	if !c.enqueue(payload) {
		c.logger.Warn("outbound message dropped", slog.String("type", string(t)))
		return false
	}
	return true
}

// WritePump drains the send queue and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.drain()
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// drain writes whatever is still queued when the client closes.
func (c *Client) drain() {
	for {
		select {
		case message := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *Client) metrics() *infrastructure.DashboardMetrics {
	if c.hub == nil {
		return nil
	}
	return c.hub.metrics
}
