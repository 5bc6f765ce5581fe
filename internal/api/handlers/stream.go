package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/veldtlab/hwscope/gpu"
	"github.com/veldtlab/hwscope/internal/apierr"
	"github.com/veldtlab/hwscope/internal/logger"
	"github.com/veldtlab/hwscope/internal/metrics"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = 30 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins here - CORS middleware handles this
		return true
	},
}

// StreamMessage is the envelope sent to clients.
type StreamMessage struct {
	Type    string `json:"type"` // "snapshot", "error"
	Payload any    `json:"payload"`
}

// SnapshotMessage carries one broadcast of all device metrics.
type SnapshotMessage struct {
	Devices []gpu.Device `json:"devices"`
	SentAt  time.Time    `json:"sent_at"`
}

// Client represents one WebSocket subscriber.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains the set of active clients and pushes device snapshots
// to them on a fixed interval.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	manager  *gpu.Manager
	interval time.Duration
	stop     chan struct{}
	stopOnce sync.Once

	mu sync.RWMutex
}

// NewHub creates a hub broadcasting snapshots every interval.
func NewHub(manager *gpu.Manager, interval time.Duration) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		manager:    manager,
		interval:   interval,
		stop:       make(chan struct{}),
	}
}

// Run starts the hub's main loop and the snapshot ticker.
func (h *Hub) Run(ctx context.Context) {
	go h.pollDevices(ctx)

	for {
		select {
		case <-ctx.Done():
			return

		case <-h.stop:
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			metrics.WebSocketConnections.Inc()
			logger.Info("stream client connected", "total_clients", total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.WebSocketConnections.Dec()
				logger.Info("stream client disconnected", "total_clients", len(h.clients))
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full, drop the connection
					close(client.send)
					delete(h.clients, client)
					metrics.WebSocketConnections.Dec()
				}
			}
			h.mu.Unlock()
		}
	}
}

// Stop shuts the hub down. Safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

// pollDevices refreshes device metrics on the broadcast interval and
// pushes a snapshot to connected clients. With no clients the tick is
// skipped entirely so an idle server does not hammer vendor tools.
func (h *Hub) pollDevices(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.stop:
			return
		case <-ticker.C:
			h.mu.RLock()
			clientCount := len(h.clients)
			h.mu.RUnlock()

			if clientCount == 0 {
				continue
			}

			h.broadcastSnapshot()
		}
	}
}

func (h *Hub) broadcastSnapshot() {
	devices := make([]gpu.Device, 0, h.manager.Count())
	for _, dev := range h.manager.Devices() {
		fresh, err := h.manager.DeviceCached(dev.Index)
		if err != nil {
			logger.Warn("stream device refresh failed", "index", dev.Index, "error", err)
			fresh = dev
		}
		devices = append(devices, fresh)
	}

	msg := StreamMessage{
		Type: "snapshot",
		Payload: SnapshotMessage{
			Devices: devices,
			SentAt:  time.Now().UTC(),
		},
	}

	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("failed to marshal stream snapshot", "error", err)
		return
	}

	select {
	case h.broadcast <- data:
		metrics.WebSocketMessagesSent.Inc()
	default:
		logger.Warn("stream broadcast buffer full, dropping snapshot")
	}
}

// readPump drains the WebSocket connection so control frames are
// processed; clients are not expected to send anything meaningful.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("stream unexpected close", "error", err)
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
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

// StreamHandler upgrades HTTP connections and hands them to the hub.
type StreamHandler struct {
	hub     *Hub
	manager *gpu.Manager
}

// NewStreamHandler creates the handler and starts its hub in the
// background.
// NewStreamHandler builds the handler and its hub. The hub does not
// run yet; the owner starts it with GetHub().Run and ends it with
// GetHub().Stop, tying its goroutines to the server lifetime.
func NewStreamHandler(manager *gpu.Manager, interval time.Duration) *StreamHandler {
	return &StreamHandler{hub: NewHub(manager, interval), manager: manager}
}

// Handle upgrades the connection and sends an initial snapshot.
// GET /api/stream
func (h *StreamHandler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("failed to upgrade to WebSocket", "error", err)
		apierr.WriteErrorWithContext(w, r, apierr.SystemInternal("failed to establish WebSocket connection"))
		return
	}

	client := &Client{
		hub:  h.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	h.hub.register <- client

	// Send an immediate snapshot so clients don't wait a full
	// interval for first data.
	initial := StreamMessage{
		Type: "snapshot",
		Payload: SnapshotMessage{
			Devices: h.manager.Devices(),
			SentAt:  time.Now().UTC(),
		},
	}
	if data, err := json.Marshal(initial); err == nil {
		select {
		case client.send <- data:
		default:
		}
	}

	go client.writePump()
	go client.readPump()
}

// GetHub returns the hub for external shutdown.
func (h *StreamHandler) GetHub() *Hub {
	return h.hub
}
