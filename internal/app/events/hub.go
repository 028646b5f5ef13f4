package events

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/FundPool-Network/funding_ledger/internal/app/system"
	"github.com/FundPool-Network/funding_ledger/pkg/logger"
)

// Hub broadcasts ledger events to connected websocket clients. It is a
// lifecycle-managed component; events published before Start or after Stop
// are dropped.
type Hub struct {
	log      *logger.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte
	running bool
}

var _ system.Service = (*Hub)(nil)
var _ Publisher = (*Hub)(nil)

// NewHub creates a websocket event hub.
func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.NewDefault("events-hub")
	}
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 10 * time.Second,
			CheckOrigin:      func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]chan []byte),
	}
}

func (h *Hub) Name() string { return "events-hub" }

func (h *Hub) Start(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.running = true
	return nil
}

func (h *Hub) Stop(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.running = false
	for conn, send := range h.clients {
		close(send)
		conn.Close()
		delete(h.clients, conn)
	}
	return nil
}

// ServeHTTP upgrades the request and streams events until the client
// disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	send := make(chan []byte, 16)

	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[conn] = send
	h.mu.Unlock()

	go h.writePump(conn, send)

	// Drain the read side so close frames are processed.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.drop(conn)
}

func (h *Hub) writePump(conn *websocket.Conn, send chan []byte) {
	for msg := range send {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.drop(conn)
			return
		}
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if send, ok := h.clients[conn]; ok {
		close(send)
		delete(h.clients, conn)
	}
	conn.Close()
}

// Publish broadcasts the event to every connected client. Slow clients are
// disconnected rather than allowed to block the ledger.
func (h *Hub) Publish(_ context.Context, evt Event) {
	payload, err := json.Marshal(NewEnvelope(evt))
	if err != nil {
		h.log.WithError(err).Warn("marshal event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running {
		return
	}
	for conn, send := range h.clients {
		select {
		case send <- payload:
		default:
			close(send)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}
