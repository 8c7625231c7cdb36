package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/quaesitor-ai/quaesitor/internal/common"
	"github.com/quaesitor-ai/quaesitor/internal/interfaces"
	"github.com/quaesitor-ai/quaesitor/internal/models"
)

// wsClient pairs a connection with its write lock and throttle. gorilla
// connections allow only one concurrent writer.
type wsClient struct {
	conn    *websocket.Conn
	mu      sync.Mutex
	limiter *rate.Limiter
}

// WebSocketHandler streams pipeline step events to connected clients while
// queries are in flight.
type WebSocketHandler struct {
	events   interfaces.EventService
	config   *common.WebSocketConfig
	logger   arbor.ILogger
	upgrader websocket.Upgrader
	throttle time.Duration

	mu      sync.RWMutex
	clients map[*websocket.Conn]*wsClient
	cancel  func()
}

func NewWebSocketHandler(events interfaces.EventService, config *common.WebSocketConfig, logger arbor.ILogger) *WebSocketHandler {
	throttle := 100 * time.Millisecond
	if d, err := time.ParseDuration(config.ThrottleInterval); err == nil && d > 0 {
		throttle = d
	}

	return &WebSocketHandler{
		events:   events,
		config:   config,
		logger:   logger,
		throttle: throttle,
		clients:  make(map[*websocket.Conn]*wsClient),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for development
			},
		},
	}
}

// Start subscribes to the event bus and begins forwarding events.
func (h *WebSocketHandler) Start() {
	ch, cancel := h.events.Subscribe()
	h.cancel = cancel

	common.SafeGo(h.logger, "websocket-broadcast", func() {
		for event := range ch {
			h.broadcast(event)
		}
	})

	h.logger.Debug().Msg("WebSocket event forwarding started")
}

// Stop cancels the event subscription and closes all client connections.
func (h *WebSocketHandler) Stop() {
	if h.cancel != nil {
		h.cancel()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
	}
	h.clients = make(map[*websocket.Conn]*wsClient)
}

// HandleWebSocket upgrades the connection and registers the client.
// GET /ws
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := &wsClient{
		conn:    conn,
		limiter: rate.NewLimiter(rate.Every(h.throttle), 1),
	}

	h.mu.Lock()
	h.clients[conn] = client
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info().
		Str("remote", r.RemoteAddr).
		Int("clients", count).
		Msg("WebSocket client connected")

	go h.readLoop(conn)
}

// readLoop drains inbound frames so close and ping/pong handling works.
// Clients are listen-only; any read error means the connection is gone.
func (h *WebSocketHandler) readLoop(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.removeClient(conn)
			return
		}
	}
}

func (h *WebSocketHandler) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	if ok {
		delete(h.clients, conn)
	}
	count := len(h.clients)
	h.mu.Unlock()

	if ok {
		conn.Close()
		h.logger.Info().Int("clients", count).Msg("WebSocket client disconnected")
	}
}

// broadcast sends the event to every connected client. A throttled client
// skips the event rather than delaying the pipeline.
func (h *WebSocketHandler) broadcast(event models.StepEvent) {
	h.mu.RLock()
	clients := make([]*wsClient, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if !c.limiter.Allow() {
			continue
		}

		c.mu.Lock()
		err := c.conn.WriteJSON(event)
		c.mu.Unlock()

		if err != nil {
			h.logger.Debug().Err(err).Msg("WebSocket write failed, dropping client")
			h.removeClient(c.conn)
		}
	}
}

// ClientCount reports the number of connected clients.
func (h *WebSocketHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
