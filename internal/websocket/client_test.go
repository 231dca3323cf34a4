package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtapulse/internal/presentation"
	"mtapulse/internal/services"
	"mtapulse/internal/shared/testutil"
	"mtapulse/pkg/contracts/events"
)

type frame struct {
	ID      string             `json:"id"`
	Type    events.MessageType `json:"type"`
	TraceID string             `json:"trace_id"`
	ReplyTo string             `json:"reply_to"`
	Data    json.RawMessage    `json:"data"`
}

func decodeFrame(t *testing.T, data []byte) frame {
	t.Helper()
	var f frame
	require.NoError(t, json.Unmarshal(data, &f))
	return f
}

func decodeError(t *testing.T, f frame) events.ErrorPayload {
	t.Helper()
	require.Equal(t, events.MessageTypeError, f.Type)
	var payload events.ErrorPayload
	require.NoError(t, json.Unmarshal(f.Data, &payload))
	return payload
}

func receive(t *testing.T, c *Client) frame {
	t.Helper()
	select {
	case data := <-c.send:
		return decodeFrame(t, data)
	case <-time.After(2 * time.Second):
		t.Fatal("no message queued")
		return frame{}
	}
}

func newService(t *testing.T) *services.DashboardService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	svc, err := services.NewDashboardService(testutil.NewDataset(14), services.DashboardOptions{
		CacheEnabled: true,
		CacheSize:    8,
		CacheTTL:     time.Minute,
	}, logger)
	require.NoError(t, err)
	return svc
}

func newTestClient(t *testing.T, hub *Hub, conn Connection, opts Options) *Client {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewClient(hub, conn, newService(t), opts, "trace-1", logger)
}

func TestClient_HandleMessage(t *testing.T) {
	tests := []struct {
		name         string
		message      string
		expectedType events.MessageType
		expectedCode string
		replyTo      string
		check        func(t *testing.T, view presentation.DashboardView)
	}{
		{
			name:         "default filter",
			message:      `{"id":"m1","type":"filter"}`,
			expectedType: events.MessageTypeDashboard,
			replyTo:      "m1",
			check: func(t *testing.T, view presentation.DashboardView) {
				assert.Equal(t, []string{"subways", "buses", "bridges-tunnels"}, view.Filter.Modes)
				assert.Equal(t, 14, view.RecordCount)
			},
		},
		{
			name:         "monthly lirr",
			message:      `{"id":"m2","type":"filter","data":{"modes":["lirr"],"granularity":"ME"}}`,
			expectedType: events.MessageTypeDashboard,
			replyTo:      "m2",
			check: func(t *testing.T, view presentation.DashboardView) {
				assert.Equal(t, []string{"lirr"}, view.Filter.Modes)
				require.Len(t, view.AreaChart.Series, 1)
				assert.Len(t, view.AreaChart.Series[0].Points, 1)
			},
		},
		{
			name:         "empty selection",
			message:      `{"id":"m3","type":"filter","data":{"modes":[]}}`,
			expectedType: events.MessageTypeDashboard,
			replyTo:      "m3",
			check: func(t *testing.T, view presentation.DashboardView) {
				assert.Empty(t, view.Filter.Modes)
				assert.Empty(t, view.AreaChart.Series)
			},
		},
		{
			name:         "range without data",
			message:      `{"id":"m4","type":"filter","data":{"start_date":"2030-01-01","end_date":"2030-12-31"}}`,
			expectedType: events.MessageTypeDashboard,
			replyTo:      "m4",
			check: func(t *testing.T, view presentation.DashboardView) {
				assert.True(t, view.Empty)
			},
		},
		{
			name:         "unknown granularity",
			message:      `{"id":"m5","type":"filter","data":{"granularity":"hourly"}}`,
			expectedType: events.MessageTypeError,
			expectedCode: "INVALID_FILTER",
			replyTo:      "m5",
		},
		{
			name:         "malformed filter data",
			message:      `{"id":"m6","type":"filter","data":{"modes":"subways"}}`,
			expectedType: events.MessageTypeError,
			expectedCode: events.ErrCodeInvalidFrame,
			replyTo:      "m6",
		},
		{
			name:         "unsupported type",
			message:      `{"id":"m7","type":"subscribe"}`,
			expectedType: events.MessageTypeError,
			expectedCode: events.ErrCodeUnsupportedType,
			replyTo:      "m7",
		},
		{
			name:         "not json",
			message:      `filter please`,
			expectedType: events.MessageTypeError,
			expectedCode: events.ErrCodeInvalidFrame,
		},
		{
			name:         "missing type",
			message:      `{"id":"m9"}`,
			expectedType: events.MessageTypeError,
			expectedCode: events.ErrCodeInvalidFrame,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, nil, newFakeConn(), Options{})
			c.handleMessage(context.Background(), []byte(tt.message))

			f := receive(t, c)
			assert.Equal(t, tt.expectedType, f.Type)
			assert.Equal(t, tt.replyTo, f.ReplyTo)
			assert.Equal(t, "trace-1", f.TraceID)
			assert.NotEmpty(t, f.ID)

			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, f).Code)
				return
			}
			var view presentation.DashboardView
			require.NoError(t, json.Unmarshal(f.Data, &view))
			tt.check(t, view)
		})
	}
}

func TestClient_RateLimited(t *testing.T) {
	c := newTestClient(t, nil, newFakeConn(), Options{MessagesPerSecond: 0.001, Burst: 1})

	c.handleMessage(context.Background(), []byte(`{"id":"a","type":"filter"}`))
	assert.Equal(t, events.MessageTypeDashboard, receive(t, c).Type)

	c.handleMessage(context.Background(), []byte(`{"id":"b","type":"filter"}`))
	f := receive(t, c)
	payload := decodeError(t, f)
	assert.Equal(t, events.ErrCodeRateLimited, payload.Code)
	assert.True(t, payload.Retry)
	assert.Equal(t, "b", f.ReplyTo)
}

func TestClient_Pumps(t *testing.T) {
	conn := newFakeConn()
	c := newTestClient(t, nil, conn, Options{})

	readDone := make(chan struct{})
	go c.WritePump()
	go func() {
		c.ReadPump(context.Background())
		close(readDone)
	}()

	conn.queue(`{"id":"p1","type":"filter","data":{"granularity":"D"}}`)
	require.Eventually(t, func() bool { return len(conn.textFrames()) == 1 }, 2*time.Second, 10*time.Millisecond)

	f := decodeFrame(t, conn.textFrames()[0])
	assert.Equal(t, events.MessageTypeDashboard, f.Type)
	assert.Equal(t, "p1", f.ReplyTo)

	require.NoError(t, conn.Close())
	select {
	case <-readDone:
	case <-time.After(2 * time.Second):
		t.Fatal("read pump did not stop")
	}
}

func TestClient_MessageTooLarge(t *testing.T) {
	conn := newFakeConn()
	c := newTestClient(t, nil, conn, Options{MaxMessageSize: 16})

	go c.WritePump()
	conn.queue(`{"id":"big","type":"filter","data":{"granularity":"QE"}}`)
	c.ReadPump(context.Background())

	require.Eventually(t, conn.isClosed, 2*time.Second, 10*time.Millisecond)
	frames := conn.textFrames()
	require.Len(t, frames, 1)
	payload := decodeError(t, decodeFrame(t, frames[0]))
	assert.Equal(t, events.ErrCodeMessageTooLarge, payload.Code)
	assert.True(t, payload.Fatal)
	assert.True(t, conn.sawType(websocket.CloseMessage))
}

func TestOptions_WithDefaults(t *testing.T) {
	opts := Options{PongWait: 10 * time.Second, PingPeriod: 20 * time.Second}.withDefaults()
	assert.Equal(t, 9*time.Second, opts.PingPeriod)
	assert.Equal(t, int64(4096), opts.MaxMessageSize)
	assert.Equal(t, defaultSendBuffer, opts.SendBuffer)
	assert.Equal(t, 20, opts.Burst)
}
