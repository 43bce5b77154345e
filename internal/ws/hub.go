package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"meetup-client/internal/lifecycle"
)

// Event is what the hub pushes to presentation surfaces.
type Event struct {
	Type  string               `json:"type"`
	State *lifecycle.PhaseView `json:"state,omitempty"`
}

// Hub maintains the surface websocket connections per signed-in identity and
// pushes phase snapshots to them.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*websocket.Conn]ConnInfo
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*websocket.Conn]ConnInfo)}
}

// AddClient registers a surface connection for a user.
func (h *Hub) AddClient(userID string, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[userID]; !ok {
		h.rooms[userID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.rooms[userID][conn] = info
}

// RemoveClient removes a surface connection.
func (h *Hub) RemoveClient(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, userID)
		}
	}
}

// BroadcastPhase pushes a phase snapshot to all of the user's surfaces.
func (h *Hub) BroadcastPhase(userID string, view lifecycle.PhaseView) {
	h.broadcast(userID, Event{Type: "phase", State: &view})
}

// BroadcastFriendsInvalidated tells the user's surfaces to re-fetch the
// friend list, typically because streak counters moved when a meeting ended.
func (h *Hub) BroadcastFriendsInvalidated(userID string) {
	h.broadcast(userID, Event{Type: "friends_invalidated"})
}

func (h *Hub) broadcast(userID string, event Event) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.rooms[userID]))
	for conn := range h.rooms[userID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	payload, _ := json.Marshal(event)
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.RemoveClient(userID, conn)
		}
	}
}

// Clients reports how many surfaces a user has connected.
func (h *Hub) Clients(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}
