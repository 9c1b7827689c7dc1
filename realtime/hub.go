package realtime

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	clientBuffer   = 16
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser dashboards connect cross-origin; auth happens upstream.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Event is what subscribers receive after every committed mutation.
type Event struct {
	Event     string      `json:"event"`
	EntityID  interface{} `json:"entityId"`
	Timestamp time.Time   `json:"ts"`
}

type client struct {
	conn *websocket.Conn
	send chan Event
}

// Hub fans committed-mutation events out to websocket subscribers. Publish
// never blocks: a slow subscriber just misses events (at-most-once).
type Hub struct {
	mu      sync.Mutex
	clients map[*client]bool
}

func NewHub() *Hub {
	return &Hub{clients: map[*client]bool{}}
}

// Publish implements services.Notifier.
func (h *Hub) Publish(event string, entityID interface{}) {
	ev := Event{Event: event, EntityID: entityID, Timestamp: time.Now().UTC()}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
			// subscriber too slow, drop the event
		}
	}
}

// Handle upgrades the request and keeps the subscription alive until the
// peer goes away.
func (h *Hub) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("warning: websocket upgrade failed: %v", err)
		return
	}

	cl := &client{conn: conn, send: make(chan Event, clientBuffer)}
	h.mu.Lock()
	h.clients[cl] = true
	h.mu.Unlock()

	go h.writeLoop(cl)
	h.readLoop(cl)
}

func (h *Hub) remove(cl *client) {
	h.mu.Lock()
	if h.clients[cl] {
		delete(h.clients, cl)
		close(cl.send)
	}
	h.mu.Unlock()
	cl.conn.Close()
}

func (h *Hub) writeLoop(cl *client) {
	for ev := range cl.send {
		cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cl.conn.WriteJSON(ev); err != nil {
			h.remove(cl)
			return
		}
	}
}

// readLoop discards inbound frames; the hub is broadcast-only. It exists to
// notice disconnects.
func (h *Hub) readLoop(cl *client) {
	defer h.remove(cl)
	cl.conn.SetReadLimit(maxMessageSize)
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}
