package tracking

import "sync"

// Hub fans messages out to connected dashboard clients.
type Hub struct {
	clients map[string]*Client
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

func (h *Hub) AddClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
}

func (h *Hub) RemoveClient(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		close(c.Send)
		delete(h.clients, id)
	}
}

// Broadcast delivers message to every client. Clients that cannot keep
// up are dropped.
func (h *Hub) Broadcast(message []byte) {
	h.mu.RLock()
	var slow []string
	for id, client := range h.clients {
		select {
		case client.Send <- message:
		default:
			slow = append(slow, id)
		}
	}
	h.mu.RUnlock()

	for _, id := range slow {
		h.RemoveClient(id)
	}
}
