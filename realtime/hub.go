// Package realtime pushes order and payment events to connected staff screens.
//
// Delivery is best effort: a push is a hint to re-fetch, never the source of
// truth. Messages to a client whose buffer is full are dropped along with the
// client.
package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	RoomKitchen = "kitchen"
	RoomWaiter  = "waiter"

	EventNewOrder        = "new-order-received"
	EventOrderUpdated    = "order-updated"
	EventPaymentReceived = "payment-received"

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 32
	maxInbound = 512
)

// Publisher is what order and payment controllers push events through.
type Publisher interface {
	Publish(room, event string, payload any)
}

// Message is the frame sent to and received from clients.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type client struct {
	conn  *websocket.Conn
	send  chan []byte
	rooms map[string]bool
}

type Hub struct {
	logger   *zap.SugaredLogger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
}

// NewHub builds a hub accepting upgrades from allowedOrigin ("*" allows any).
func NewHub(logger *zap.SugaredLogger, allowedOrigin string) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "*" || origin == "" || origin == allowedOrigin
			},
		},
	}
}

// Publish fans payload out to every client in room without blocking.
func (h *Hub) Publish(room, event string, payload any) {
	data, err := json.Marshal(Message{Event: event, Data: payload})
	if err != nil {
		h.logger.Errorw("failed to encode realtime event", "event", event, "error", err)
		return
	}

	var slow []*client
	h.mu.RLock()
	for c := range h.clients {
		if !c.inRoom(room) {
			continue
		}
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warnw("dropping slow realtime client", "room", room)
		h.unregister(c)
	}
}

// ServeWS upgrades the request and serves the connection until it closes.
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warnw("websocket upgrade failed", "error", err)
		return
	}

	cl := &client{conn: conn, send: make(chan []byte, sendBuffer), rooms: make(map[string]bool)}
	if !h.register(cl) {
		conn.Close()
		return
	}
	h.logger.Debugw("realtime client connected", "remote", conn.RemoteAddr().String())

	go h.writePump(cl)
	h.readPump(cl)
}

// Clients returns the number of connected clients, per room when room is set.
func (h *Hub) Clients(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if room == "" {
		return len(h.clients)
	}
	n := 0
	for c := range h.clients {
		if c.rooms[room] {
			n++
		}
	}
	return n
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.unregister(c)
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.mu.Unlock()
}

func (h *Hub) join(c *client, room string, member bool) {
	h.mu.Lock()
	c.rooms[room] = member
	h.mu.Unlock()
}

// inRoom must be called with h.mu held.
func (c *client) inRoom(room string) bool {
	return c.rooms[room]
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxInbound)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debugw("realtime client closed", "error", err)
			}
			return
		}

		switch msg.Event {
		case "join-kitchen":
			h.join(c, RoomKitchen, true)
		case "join-waiter":
			h.join(c, RoomWaiter, true)
		case "leave-kitchen":
			h.join(c, RoomKitchen, false)
		case "leave-waiter":
			h.join(c, RoomWaiter, false)
		default:
			h.logger.Debugw("ignoring realtime client event", "event", msg.Event)
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
