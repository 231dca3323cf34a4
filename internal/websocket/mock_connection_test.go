package websocket

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// fakeConn is an in-memory Connection. Reads block until a frame is queued
// or the connection is closed.
type fakeConn struct {
	mu      sync.Mutex
	frames  chan []byte
	written [][]byte
	types   []int
	closed  chan struct{}
	once    sync.Once
	limit   int64
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		frames: make(chan []byte, 16),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) queue(frame string) {
	c.frames <- []byte(frame)
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case frame := <-c.frames:
		c.mu.Lock()
		limit := c.limit
		c.mu.Unlock()
		if limit > 0 && int64(len(frame)) > limit {
			return 0, nil, websocket.ErrReadLimit
		}
		return websocket.TextMessage, frame, nil
	case <-c.closed:
		return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
	}
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	select {
	case <-c.closed:
		return errors.New("connection closed")
	default:
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.types = append(c.types, messageType)
	c.written = append(c.written, append([]byte(nil), data...))
	return nil
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// textFrames returns the text frames written so far.
func (c *fakeConn) textFrames() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out [][]byte
	for i, t := range c.types {
		if t == websocket.TextMessage {
			out = append(out, c.written[i])
		}
	}
	return out
}

func (c *fakeConn) sawType(messageType int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.types {
		if t == messageType {
			return true
		}
	}
	return false
}

func (c *fakeConn) SetReadDeadline(time.Time) error  { return nil }
func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }
func (c *fakeConn) SetPongHandler(func(string) error) {}

func (c *fakeConn) SetReadLimit(limit int64) {
	c.mu.Lock()
	c.limit = limit
	c.mu.Unlock()
}

func (c *fakeConn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 50000}
}
