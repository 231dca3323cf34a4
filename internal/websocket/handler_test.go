package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "mtapulse/internal/errors"
	"mtapulse/internal/services"
	"mtapulse/internal/shared/testutil"
	"mtapulse/pkg/contracts/events"
)

func newTestServer(t *testing.T, allowedOrigins []string) (*httptest.Server, *Hub) {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	hub := newTestHub(t)
	handler := NewHandler(hub, newService(t), HandlerOptions{
		Client:         Options{PingPeriod: time.Second, PongWait: 2 * time.Second},
		AllowedOrigins: allowedOrigins,
	}, apierrors.NewErrorHandler(logger, false), logger)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, hub
}

func dial(t *testing.T, srv *httptest.Server, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	return websocket.DefaultDialer.Dial(url, header)
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	return decodeFrame(t, data)
}

func TestHandler_Session(t *testing.T) {
	srv, hub := newTestServer(t, nil)

	conn, _, err := dial(t, srv, nil)
	require.NoError(t, err)
	defer conn.Close()

	welcome := readFrame(t, conn)
	require.Equal(t, events.MessageTypeConnect, welcome.Type)

	var w struct {
		Protocol  string                  `json:"protocol"`
		SessionID string                  `json:"session_id"`
		Heartbeat int                     `json:"heartbeat_interval"`
		Limits    events.ConnectionLimits `json:"limits"`
		Dataset   services.DatasetInfo    `json:"dataset"`
	}
	require.NoError(t, json.Unmarshal(welcome.Data, &w))
	assert.Equal(t, events.ProtocolName, w.Protocol)
	assert.NotEmpty(t, w.SessionID)
	assert.Equal(t, 1, w.Heartbeat)
	assert.Equal(t, int64(4096), w.Limits.MaxMessageSize)
	assert.Equal(t, 14, w.Dataset.Records)
	assert.Equal(t, "2021-01-17", w.Dataset.MaxDate)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"id":"f1","type":"filter","data":{"modes":["subways"],"granularity":"D"}}`)))
	dash := readFrame(t, conn)
	assert.Equal(t, events.MessageTypeDashboard, dash.Type)
	assert.Equal(t, "f1", dash.ReplyTo)
	assert.Equal(t, welcome.TraceID, dash.TraceID)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"id":"f2","type":"filter","data":{"end_date":"tomorrow"}}`)))
	errFrame := readFrame(t, conn)
	assert.Equal(t, "INVALID_FILTER", decodeError(t, errFrame).Code)
	assert.Equal(t, "f2", errFrame.ReplyTo)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_CheckOrigin(t *testing.T) {
	srv, _ := newTestServer(t, []string{"http://localhost:8063"})

	tests := []struct {
		name    string
		origin  string
		allowed bool
	}{
		{name: "no origin", allowed: true},
		{name: "same host", origin: srv.URL, allowed: true},
		{name: "configured origin", origin: "http://localhost:8063", allowed: true},
		{name: "foreign origin", origin: "http://evil.example", allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.origin != "" {
				header.Set("Origin", tt.origin)
			}
			conn, resp, err := dial(t, srv, header)
			if tt.allowed {
				require.NoError(t, err)
				conn.Close()
				return
			}
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		})
	}
}

func TestHandler_PlainHTTP(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var problem map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&problem))
	assert.Equal(t, apierrors.TypeValidation, problem["type"])
	assert.Equal(t, "WEBSOCKET_UPGRADE_FAILED", problem["error_code"])
}
