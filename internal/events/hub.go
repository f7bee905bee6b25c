// Package events broadcasts door operation and device status events to
// WebSocket subscribers.
package events

import (
	"sync"

	"doorctl/internal/logging"

	"go.uber.org/zap"
)

// Hub maintains the set of active WebSocket clients and fans broadcast
// messages out to them.
type Hub struct {
	clients map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu   sync.RWMutex
	done chan struct{}
}

// NewHub creates a hub. Call Run in a goroutine before registering
// clients.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes register, unregister and broadcast requests until Stop
// is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			logging.Debug("Event subscriber connected", zap.Int("subscribers", n))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			logging.Debug("Event subscriber disconnected", zap.Int("subscribers", n))

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow subscriber, drop it rather than block the hub
					go func(c *Client) { h.unregister <- c }(client)
				}
			}
			h.mu.RUnlock()

		case <-h.done:
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

// Stop shuts the hub down and disconnects all subscribers.
func (h *Hub) Stop() {
	close(h.done)
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

// Broadcast queues a raw message for delivery to every subscriber.
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

// ClientCount reports the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Client is a single WebSocket subscriber.
type Client struct {
	hub  *Hub
	send chan []byte
}

// NewClient creates a client bound to hub with a buffered send queue.
func NewClient(hub *Hub) *Client {
	return &Client{
		hub:  hub,
		send: make(chan []byte, 16),
	}
}

// Send returns the channel messages for this client arrive on. The hub
// closes it when the client is unregistered.
func (c *Client) Send() <-chan []byte {
	return c.send
}
