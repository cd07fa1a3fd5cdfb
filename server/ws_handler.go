package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/harshvasudeva/dialog-companion/dialog"
	"github.com/harshvasudeva/dialog-companion/logger"
)

const (
	MaxMessageSize       = 64 * 1024 // 64 KB
	RateLimitWindow      = 10 * time.Second
	RateLimitMaxMessages = 50
)

// clientConn holds per-connection state.
type clientConn struct {
	ws            *websocket.Conn
	msgTimestamps []time.Time
	mu            sync.Mutex // protects ws writes AND msgTimestamps
}

// isRateLimited checks if this connection exceeds 50 msgs in 10 seconds.
func (c *clientConn) isRateLimited() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-RateLimitWindow)

	filtered := c.msgTimestamps[:0]
	for _, t := range c.msgTimestamps {
		if t.After(cutoff) {
			filtered = append(filtered, t)
		}
	}
	filtered = append(filtered, now)
	c.msgTimestamps = filtered
	return len(filtered) > RateLimitMaxMessages
}

// sendJSON marshals msg and writes it to the websocket (thread-safe).
func (c *clientConn) sendJSON(msg interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(msg)
}

// connectionRegistry tracks live connections so Stop can close them.
type connectionRegistry struct {
	mu    sync.RWMutex
	conns map[*clientConn]struct{}
}

func newConnectionRegistry() *connectionRegistry {
	return &connectionRegistry{
		conns: make(map[*clientConn]struct{}),
	}
}

func (r *connectionRegistry) add(conn *clientConn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[conn] = struct{}{}
}

func (r *connectionRegistry) delete(conn *clientConn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, conn)
}

// count returns the number of live connections.
func (r *connectionRegistry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

func (r *connectionRegistry) closeAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for conn := range r.conns {
		_ = conn.ws.Close()
	}
}

// inboundMsg is the discriminated union for all inbound WS messages.
type inboundMsg struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Title   string `json:"title"`
}

// resultMsg reports a closed dialog back to the client that asked for it.
type resultMsg struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	dialogResponse
}

// errorMsg reports a request that produced no dialog outcome.
type errorMsg struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message"`
}

// HandleConnection is called once per new WebSocket upgrade. Each "show"
// message opens its own dialog; results are sent back tagged with the
// request id as the dialogs close, in whatever order that happens.
func HandleConnection(ws *websocket.Conn, s *Server) {
	conn := &clientConn{ws: ws}
	s.reg.add(conn)
	logger.Debug("[ws] client connected (%d live)", s.reg.count())

	defer func() {
		ws.Close()
		s.reg.delete(conn)
		logger.Debug("[ws] client disconnected")
	}()

	ws.SetReadLimit(MaxMessageSize)

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived) {
				logger.Debug("WS read error: %v", err)
			}
			return
		}

		if conn.isRateLimited() {
			_ = conn.sendJSON(errorMsg{Type: "error", Message: "Rate limited"})
			continue
		}

		var msg inboundMsg
		if err := json.Unmarshal(raw, &msg); err != nil {
			_ = conn.sendJSON(errorMsg{Type: "error", Message: "Invalid JSON"})
			continue
		}

		logger.Debug("[MSG] type=%s id=%s len=%d", msg.Type, msg.ID, len(raw))

		switch msg.Type {
		case "show":
			handleShow(conn, msg, s)
		case "ping":
			_ = conn.sendJSON(map[string]string{"type": "pong", "id": msg.ID})
		default:
			_ = conn.sendJSON(errorMsg{Type: "error", ID: msg.ID, Message: "Unknown message type"})
		}
	}
}

func handleShow(conn *clientConn, msg inboundMsg, s *Server) {
	// Results arrive out of order; the client needs an id to match them.
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	req := dialog.Request{Kind: kindOrDefault(msg.Kind), Message: msg.Message, Title: msg.Title}
	err := s.ShowAsync(req, func(out dialog.Outcome, err error) {
		if err != nil {
			_ = conn.sendJSON(errorMsg{Type: "error", ID: msg.ID, Message: err.Error()})
			return
		}
		if err := conn.sendJSON(resultMsg{Type: "result", ID: msg.ID, dialogResponse: newDialogResponse(out)}); err != nil {
			logger.Debug("[ws] result for %s not delivered: %v", msg.ID, err)
		}
	})
	if err != nil {
		_ = conn.sendJSON(errorMsg{Type: "error", ID: msg.ID, Message: err.Error()})
	}
}
