// Package gateway exposes the engine to browser displays over WebSocket:
// every committed snapshot fans out to connected clients, and on the
// authority the DM console sends operator commands back over the same
// socket.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/tabletop-royale/stormengine/internal/bus"
	"github.com/tabletop-royale/stormengine/internal/game"
)

// Config holds WebSocket connection settings.
type Config struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConfig returns the default WebSocket configuration.
func DefaultConfig() Config {
	return Config{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  4096,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// Same-device displays only; origin is not meaningful here.
			return true
		},
	}
}

// Hub fans snapshots out to display clients. Commands received from clients
// go to the ActionSink; a nil sink (presenter side) ignores them.
type Hub struct {
	config   Config
	upgrader websocket.Upgrader
	actions  ActionSink

	mu      sync.RWMutex
	clients map[*client]bool
	last    []byte
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	hub  *Hub
}

// NewHub creates a hub. actions may be nil on a replica.
func NewHub(config Config, actions ActionSink) *Hub {
	return &Hub{
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		actions: actions,
		clients: make(map[*client]bool),
	}
}

// Run consumes engine snapshots until ctx is cancelled.
func (h *Hub) Run(ctx context.Context, snapshots <-chan game.State) {
	log.Info().Msg("display gateway started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("display gateway shutting down")
			h.closeAll()
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			h.publish(snap)
		}
	}
}

func (h *Hub) publish(snap game.State) {
	env, err := bus.Snapshot(&snap)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode display snapshot")
		return
	}
	data, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode display envelope")
		return
	}

	h.mu.Lock()
	h.last = data
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	for _, c := range targets {
		select {
		case c.send <- data:
		default:
			log.Warn().Str("client_id", c.id).Msg("display client stalled, disconnecting")
			h.drop(c)
		}
	}
}

// ServeWS upgrades an HTTP request into a display connection. The client
// immediately receives the last committed snapshot, if any.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, 32),
		done: make(chan struct{}),
		hub:  h,
	}

	h.mu.Lock()
	h.clients[c] = true
	last := h.last
	h.mu.Unlock()

	if last != nil {
		c.send <- last
	}

	go c.writePump()
	go c.readPump()

	log.Info().Str("client_id", c.id).Msg("display client connected")
}

// drop detaches a client. The send channel is never closed: publish may race
// a disconnect, and sending on a detached client's open channel is harmless
// while sending on a closed one would panic. writePump exits via done.
func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.done)
	_ = c.conn.Close()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	for _, c := range clients {
		h.drop(c)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(c.hub.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.hub.drop(c)
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.config.WriteTimeout))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Debug().Err(err).Str("client_id", c.id).Msg("display write failed")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) readPump() {
	defer c.hub.drop(c)

	c.conn.SetReadLimit(c.hub.config.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.hub.config.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.hub.config.ReadTimeout))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Str("client_id", c.id).Msg("display client closed unexpectedly")
			}
			return
		}
		c.hub.handleCommand(c, msg)
		_ = c.conn.SetReadDeadline(time.Now().Add(c.hub.config.ReadTimeout))
	}
}
