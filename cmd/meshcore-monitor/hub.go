package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/meshcore-go/companion/codec"
	"github.com/meshcore-go/companion/session"
)

const (
	writeWait      = 10 * time.Second
	clientSendSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Any origin may connect: this bridge is meant for a developer's own
	// dashboard on their own network, not a public multi-tenant service.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// hub fans out one session's event stream to every connected browser.
type hub struct {
	sess   *session.Session
	logger *zap.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte
}

func newHub(sess *session.Session, logger *zap.Logger) *hub {
	return &hub{sess: sess, logger: logger, clients: make(map[*websocket.Conn]chan []byte)}
}

// run drains the session's event stream and broadcasts each one, for
// as long as the session stays open.
func (h *hub) run() {
	for ev := range h.sess.Events() {
		data, err := json.Marshal(newBridgeEvent(ev))
		if err != nil {
			h.logger.Warn("failed to marshal event for broadcast", zap.Error(err))
			continue
		}
		h.broadcast(data)
	}
}

func (h *hub) broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, send := range h.clients {
		select {
		case send <- data:
		default:
			h.logger.Warn("dropping slow WebSocket client")
			delete(h.clients, conn)
			close(send)
			_ = conn.Close()
		}
	}
}

func (h *hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	send := make(chan []byte, clientSendSize)
	h.mu.Lock()
	h.clients[conn] = send
	h.mu.Unlock()
	h.logger.Info("WebSocket client connected", zap.String("remote_addr", r.RemoteAddr))

	go h.readPump(conn)
	h.writePump(conn, send)
}

// readPump only exists to notice the client going away (gorilla requires
// someone to keep calling ReadMessage so control frames are processed).
func (h *hub) readPump(conn *websocket.Conn) {
	defer h.disconnect(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *hub) writePump(conn *websocket.Conn, send chan []byte) {
	defer h.disconnect(conn)
	for data := range send {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

func (h *hub) disconnect(conn *websocket.Conn) {
	h.mu.Lock()
	if send, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(send)
	}
	h.mu.Unlock()
	_ = conn.Close()
}

// bridgeEvent is the JSON shape broadcast to browsers: a flattened,
// hex-friendly projection of codec.Event rather than the Go struct
// itself, since Event's fixed-size byte arrays marshal as awkward
// number arrays otherwise.
type bridgeEvent struct {
	Time     time.Time `json:"time"`
	Code     string    `json:"code"`
	Category string    `json:"category"`
	Push     bool      `json:"push"`
	Summary  string    `json:"summary,omitempty"`
}

func newBridgeEvent(ev codec.Event) bridgeEvent {
	return bridgeEvent{
		Time:     time.Now(),
		Code:     ev.Code.String(),
		Category: categoryName(ev.Category),
		Push:     ev.Code.IsPush(),
		Summary:  summarize(ev),
	}
}

func categoryName(c codec.ResponseCategory) string {
	switch c {
	case codec.CategoryDevice:
		return "device"
	case codec.CategoryContact:
		return "contact"
	case codec.CategoryMessage:
		return "message"
	case codec.CategoryPush:
		return "push"
	default:
		return "unknown"
	}
}

func summarize(ev codec.Event) string {
	switch {
	case ev.ParseFailure != nil:
		return ev.ParseFailure.Reason
	case ev.ContactMessage != nil:
		return ev.ContactMessage.Text
	case ev.NewContact != nil:
		return ev.NewContact.Name
	case ev.SelfInfo != nil:
		return ev.SelfInfo.Name
	default:
		return ""
	}
}
