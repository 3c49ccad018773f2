// Package websocket fans committed photo events out to every open gallery.
package websocket

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"photoshare/internal/logging"
)

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub tracks connected viewers. Anonymous viewers register with UserID 0.
type Hub struct {
	clients    map[*Client]struct{}
	mu         sync.RWMutex
	log        logging.Logger
	Register   chan *Client
	Unregister chan *Client
	done       chan struct{}
}

func NewHub(log logging.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		log:        log,
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations until ctx is cancelled, then closes every
// remaining client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)
		case client := <-h.Unregister:
			h.unregisterClient(client)
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return
		}
	}
}

// Attach hands client to the running hub. It reports false once the hub
// has shut down.
func (h *Hub) Attach(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Detach removes client. After shutdown it returns immediately; the hub
// has already closed every client.
func (h *Hub) Detach(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = struct{}{}
	h.log.Debug(context.Background(), "websocket client registered", "user_id", client.UserID, "clients", len(h.clients))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		h.log.Debug(context.Background(), "websocket client unregistered", "user_id", client.UserID, "clients", len(h.clients))
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
}

// Publish delivers event to every client without blocking. A client
// whose buffer is full misses the message.
func (h *Hub) Publish(event []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- event:
		default:
			h.log.Warn(context.Background(), "websocket send buffer is full, dropping message", "user_id", client.UserID)
		}
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
