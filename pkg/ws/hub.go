package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Event is the envelope for everything pushed down a live connection.
type Event struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// Hub maintains the set of active clients keyed by user ID.
type Hub struct {
	// Registered clients mapped by user ID
	clients map[string]*Client

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	mu sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)
		case client := <-h.Unregister:
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// If the user already has a connection, the new one supplants it
	if existing, ok := h.clients[client.UserID]; ok {
		close(existing.Send)
	}
	h.clients[client.UserID] = client

	log.Printf("[WS] Client connected: %s", client.UserID)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.clients[client.UserID]; ok && current == client {
		delete(h.clients, client.UserID)
		close(client.Send)
		log.Printf("[WS] Client disconnected: %s", client.UserID)
	}
}

// SendToUser pushes an event to a specific user's connection, if any.
// The send is non-blocking; a client that cannot keep up is dropped and
// left to reconnect for a fresh snapshot.
func (h *Hub) SendToUser(userID, eventType string, payload interface{}) {
	data, err := json.Marshal(Event{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now(),
	})
	if err != nil {
		log.Printf("[WS] Failed to marshal event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if client, ok := h.clients[userID]; ok {
		select {
		case client.Send <- data:
		default:
			log.Printf("[WS] Send buffer full, dropping client: %s", userID)
		}
	}
}

// IsUserOnline checks if a user currently holds a live connection
func (h *Hub) IsUserOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.clients[userID]
	return ok
}
