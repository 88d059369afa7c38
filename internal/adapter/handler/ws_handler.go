package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/nthminh/Pho-Viet/internal/core/domain"
	"github.com/nthminh/Pho-Viet/internal/core/service"
	"github.com/nthminh/Pho-Viet/internal/port"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler bridges the subscription fan-out to WebSocket clients. Each
// connection gets the current snapshot immediately and a fresh full
// snapshot after every mutation of its collection.
type WSHandler struct {
	menu   *service.MenuService
	orders *service.OrderService
	log    zerolog.Logger
}

func NewWSHandler(menu *service.MenuService, orders *service.OrderService, log zerolog.Logger) *WSHandler {
	return &WSHandler{menu: menu, orders: orders, log: log}
}

func (h *WSHandler) Register(r *gin.Engine) {
	r.GET("/ws/menu", h.Menu)
	r.GET("/ws/orders", h.Orders)
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
	log  zerolog.Logger

	mu     sync.Mutex
	closed bool
}

// enqueue never blocks: snapshots supersede each other, so a reader
// that cannot keep up only needs the newest one. After shutdown the
// snapshot is dropped; a callback already in flight when the client
// goes away must not take down the notifier.
func (c *wsClient) enqueue(payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- payload:
	default:
		select {
		case <-c.send:
		default:
		}
		select {
		case c.send <- payload:
		default:
		}
	}
}

// shutdown stops the write pump. Idempotent.
func (c *wsClient) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop discards client frames and returns when the peer goes away.
func (c *wsClient) readLoop() {
	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug().Err(err).Msg("websocket closed")
			}
			return
		}
	}
}

func (h *WSHandler) newClient(c *gin.Context) *wsClient {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return nil
	}
	return &wsClient{
		conn: conn,
		send: make(chan []byte, 16),
		log:  h.log,
	}
}

func (h *WSHandler) Menu(c *gin.Context) {
	client := h.newClient(c)
	if client == nil {
		return
	}
	go client.writePump()

	unsubscribe := h.menu.Subscribe(c.Request.Context(), func(items []domain.MenuItem) {
		payload, err := json.Marshal(gin.H{"collection": "menu", "items": items})
		if err != nil {
			return
		}
		client.enqueue(payload)
	})

	client.readLoop()

	// Revoke first so no new callbacks target the client, then stop the
	// pump. A notifier that copied the listener list before revocation
	// may still fire; enqueue drops its snapshot.
	unsubscribe()
	client.shutdown()
}

func (h *WSHandler) Orders(c *gin.Context) {
	var filter port.OrderFilter
	if status := c.Query("status"); status != "" {
		s := domain.OrderStatus(status)
		if !s.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
			return
		}
		filter.Status = s
	}
	if table := c.Query("table"); table != "" {
		n, err := strconv.Atoi(table)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid table number"})
			return
		}
		filter.TableNumber = n
	}

	client := h.newClient(c)
	if client == nil {
		return
	}
	go client.writePump()

	unsubscribe := h.orders.Subscribe(c.Request.Context(), filter, func(orders []domain.Order) {
		payload, err := json.Marshal(gin.H{"collection": "orders", "orders": orders})
		if err != nil {
			return
		}
		client.enqueue(payload)
	})

	client.readLoop()

	unsubscribe()
	client.shutdown()
}
