package hub

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
)

// A scope is a named broadcast channel: "office:5", "region:2", "counter:9".
const (
	ScopeOffice  = "office"
	ScopeRegion  = "region"
	ScopeCounter = "counter"
)

type Client struct {
	ID     string
	Send   chan []byte
	scopes map[string]struct{}
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

type SubscribeMessage struct {
	Action string `json:"action"`
	Scope  string `json:"scope"`
}

func New() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = 16
	}
	return &Client{
		ID:     id,
		Send:   make(chan []byte, buffer),
		scopes: make(map[string]struct{}),
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, client.ID)
	close(client.Send)
}

func (h *Hub) Subscribe(client *Client, scope string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	client.scopes[scope] = struct{}{}
}

func (h *Hub) Unsubscribe(client *Client, scope string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(client.scopes, scope)
}

// Publish fans the payload out to every client subscribed to the scope.
// Slow clients are skipped rather than blocking the relay.
func (h *Hub) Publish(scope string, payload []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if _, ok := client.scopes[scope]; !ok {
			continue
		}
		select {
		case client.Send <- payload:
		default:
			log.Printf("drop message for client %s scope %s", client.ID, scope)
		}
	}
	return nil
}

// Scope renders the canonical scope name for a kind and id.
func Scope(kind string, id int64) string {
	return fmt.Sprintf("%s:%d", kind, id)
}

// ParseSubscribe validates a client control message. The scope must be one of
// the three known kinds with a positive integer id.
func ParseSubscribe(data []byte) (SubscribeMessage, bool) {
	var msg SubscribeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return SubscribeMessage{}, false
	}
	if msg.Action != "subscribe" && msg.Action != "unsubscribe" {
		return SubscribeMessage{}, false
	}
	if !validScope(msg.Scope) {
		return SubscribeMessage{}, false
	}
	return msg, true
}

func validScope(scope string) bool {
	kind, rawID, ok := strings.Cut(scope, ":")
	if !ok {
		return false
	}
	switch kind {
	case ScopeOffice, ScopeRegion, ScopeCounter:
	default:
		return false
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	return err == nil && id > 0
}
