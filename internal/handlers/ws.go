package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/monocle-dev/fleetwatch/internal/logger"
	"github.com/monocle-dev/fleetwatch/internal/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

type client struct {
	conn *websocket.Conn
	send chan types.Event
}

// Hub fans fleet events out to connected dashboards. Notify never blocks: a
// client whose buffer is full misses the event and refreshes on the next one.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
}

// NewHub accepts connections from allowedOrigins; when empty only same-origin
// upgrades are allowed.
func NewHub(allowedOrigins []string) *Hub {
	h := &Hub{clients: make(map[*client]struct{})}

	if len(allowedOrigins) > 0 {
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range allowedOrigins {
				if origin == allowed || allowed == "*" {
					return true
				}
			}
			return false
		}
	}

	return h
}

func (h *Hub) Notify(event types.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- event:
		default:
			logger.Log.Warn("websocket client lagging, dropping event", "type", event.Type)
		}
	}
}

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) WebSocket(ctx *gin.Context) {
	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		logger.Log.Warn("websocket upgrade failed", "err", err)
		return
	}

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logger.Log.Warn("failed to set initial read deadline", "err", err)
		conn.Close()
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	c := &client{conn: conn, send: make(chan types.Event, sendBuffer)}

	// Welcome goes out before registration so it is always the first frame.
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		conn.Close()
		return
	}

	err = conn.WriteJSON(gin.H{"type": "connected", "message": "WebSocket connection established"})
	if err != nil {
		logger.Log.Warn("failed to send welcome message", "err", err)
		conn.Close()
		return
	}

	h.add(c)
	go h.writePump(c)

	defer func() {
		h.remove(c)
		logger.Log.Debug("websocket connection closed", "remote", conn.RemoteAddr().String())
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Warn("websocket read error", "err", err)
			}
			return
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
		case event, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				logger.Log.Warn("failed to broadcast event", "err", err)
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
