package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12 // 4 KB
)

// Live-channel event names; consumed verbatim by the UI layer.
const (
	eventSensorData        = "sensorData"
	eventSensorError       = "sensorError"
	eventRequestSensorData = "requestSensorData"
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type wsError struct {
	Message string `json:"message"`
}

// Upgrader for HTTP -> WebSocket. Consider tightening CheckOrigin in production.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConnect upgrades the connection and streams scheduled snapshots to it.
// Inbound requestSensorData messages trigger a single-requester snapshot
// that never persists and is never fanned out to other connections.
func (h *Handler) wsConnect(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	sub := h.services.Broadcaster.Subscribe()
	defer h.services.Broadcaster.Unsubscribe(sub)

	// Configure read limits and pong handler to extend read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Reader goroutine handles control frames, detects disconnects, and
	// forwards on-demand requests.
	requests := make(chan struct{}, 1)
	done := make(chan struct{})
	go h.startReader(conn, requests, done)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case snap, ok := <-sub.Snapshots():
			if !ok {
				// Broadcaster shut down.
				return
			}
			if err := h.writeEvent(conn, wsEnvelope{Type: eventSensorData, Data: snap}); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		case <-requests:
			if err := h.replyOnDemand(c.Request.Context(), conn); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		}
	}
}

// startReader drains incoming messages, forwarding on-demand requests and
// closing done on disconnect. Bursts of requests collapse into one pending
// request.
func (h *Handler) startReader(conn *websocket.Conn, requests chan<- struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
		if isSensorDataRequest(msg) {
			select {
			case requests <- struct{}{}:
			default:
			}
		}
	}
}

// isSensorDataRequest accepts either a bare requestSensorData token or an
// envelope {"type":"requestSensorData"}.
func isSensorDataRequest(msg []byte) bool {
	if strings.TrimSpace(string(msg)) == eventRequestSensorData {
		return true
	}
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg, &env); err != nil {
		return false
	}
	return env.Type == eventRequestSensorData
}

// replyOnDemand answers one on-demand request on this connection only.
// A failed snapshot is reported to the requester as a sensorError event,
// never broadcast. The returned error is a write failure.
func (h *Handler) replyOnDemand(ctx context.Context, conn *websocket.Conn) error {
	snap, err := h.services.Broadcaster.OnDemand(ctx)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_on_demand_failed", "err", err)
		}
		return h.writeEvent(conn, wsEnvelope{Type: eventSensorError, Data: wsError{Message: errGetSensorData}})
	}
	return h.writeEvent(conn, wsEnvelope{Type: eventSensorData, Data: snap})
}

func (h *Handler) writeEvent(conn *websocket.Conn, env wsEnvelope) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(env)
}
