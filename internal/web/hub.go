package web

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pable/go-match-metrics/internal/logger"
)

const writeWait = 5 * time.Second

// Notification is pushed to every dashboard client.
type Notification struct {
	Type     string `json:"type"`
	Hash     string `json:"hash,omitempty"`
	Team     string `json:"team,omitempty"`
	Opponent string `json:"opponent,omitempty"`
	Date     string `json:"date,omitempty"`
}

// Hub keeps the open dashboard websockets and fans notifications out to them.
type Hub struct {
	upgrader websocket.Upgrader
	log      logger.Logger
	onChange func(n int)

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewHub returns an empty hub. onChange, when set, receives the client count
// after every connect and disconnect.
func NewHub(onChange func(n int)) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		log:      logger.Named("ws"),
		onChange: onChange,
		clients:  make(map[*websocket.Conn]struct{}),
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}
	h.add(conn)
	go h.listen(conn)
}

// listen drains client frames until the connection drops. Clients only
// receive; anything they send is ignored.
func (h *Hub) listen(conn *websocket.Conn) {
	defer h.remove(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast sends v as JSON to every client. Clients that fail the write are
// dropped.
func (h *Hub) Broadcast(ctx context.Context, v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		h.log.Error(ctx, "encode notification", logger.Error(err))
		return
	}

	h.mu.Lock()
	var dead []*websocket.Conn
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			dead = append(dead, conn)
		}
	}
	h.mu.Unlock()

	for _, conn := range dead {
		h.remove(conn)
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()
	for _, c := range conns {
		h.remove(c)
	}
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.changed(n)
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	n := len(h.clients)
	h.mu.Unlock()
	if !ok {
		return
	}
	conn.Close()
	h.changed(n)
}

func (h *Hub) changed(n int) {
	if h.onChange != nil {
		h.onChange(n)
	}
}
