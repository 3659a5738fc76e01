package main

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Hub tracks connected clients, enforces connection caps and hands
// connections to the room manager
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{} // closed when Run returns

	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int

	cfg   *Config
	rooms *RoomManager
	auth  *Auth
	db    *DB // nil when scores are not persisted
	log   *zap.Logger
}

// NewHub creates a new Hub
func NewHub(cfg *Config, rooms *RoomManager, auth *Auth, db *DB, log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		done:       make(chan struct{}),
		ipConns:    make(map[string]int),
		cfg:        cfg,
		rooms:      rooms,
		auth:       auth,
		db:         db,
		log:        log,
	}
}

// Admit reserves a connection slot for ip. The reservation is returned
// with Release once the connection is gone or the upgrade failed.
func (h *Hub) Admit(ip string) error {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= h.cfg.Server.MaxConns {
		return ErrServerFull
	}
	if h.ipConns[ip] >= h.cfg.Server.MaxConnsPerIP {
		return ErrTooManyConns
	}
	h.ipConns[ip]++
	h.totalConns++
	return nil
}

// Release frees a slot taken by Admit
func (h *Hub) Release(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.ipConns[ip]--; h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// Run processes register/unregister events until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			client.log.Debug("client connected", zap.Int("clients", n))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			client.leave()
			client.log.Debug("client disconnected")

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

// disconnect hands c to Run for cleanup. After Run has returned it only
// leaves the room.
func (h *Hub) disconnect(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
		c.leave()
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalConns returns the tracked connection count
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}
