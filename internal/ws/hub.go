package ws

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/playmatatu/poolsim/internal/game"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // origins are checked by middleware.WebSocketCORSCheck
	},
}

// Hub tracks the sockets watching each match and fans match events out to
// them. It is a game.Observer.
type Hub struct {
	rooms      map[string]map[*Client]struct{} // matchID -> clients
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	done       chan struct{}
}

// NewHub creates a new Hub. Call Run before serving sockets.
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations until ctx is cancelled, then drops every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[client.matchID]
			if !ok {
				room = make(map[*Client]struct{})
				h.rooms[client.matchID] = room
			}
			room[client] = struct{}{}
			size := len(room)
			h.mu.Unlock()
			log.Printf("[WS] Client connected to match %s (format=%s, room_size=%d)", client.matchID, client.format, size)

		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.matchID]; ok {
				if _, ok := room[client]; ok {
					delete(room, client)
					close(client.send)
					if len(room) == 0 {
						delete(h.rooms, client.matchID)
					}
					log.Printf("[WS] Client disconnected from match %s", client.matchID)
				}
			}
			h.mu.Unlock()

		case <-ctx.Done():
			h.mu.Lock()
			for id, room := range h.rooms {
				for client := range room {
					close(client.send)
				}
				delete(h.rooms, id)
			}
			h.mu.Unlock()
			log.Println("[WS] Hub stopped")
			return
		}
	}
}

func (h *Hub) add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// OnEvent broadcasts ev to the sockets watching its match.
func (h *Hub) OnEvent(_ context.Context, ev game.Event) {
	h.BroadcastToMatch(ev.MatchID, Message{Type: MessageEvent, Event: &ev})
}

// BroadcastToMatch sends a message to every client in a match room
func (h *Hub) BroadcastToMatch(matchID string, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room, exists := h.rooms[matchID]
	if !exists {
		return
	}

	encoded := make(map[Format][]byte, 2)
	for client := range room {
		data, ok := encoded[client.format]
		if !ok {
			var err error
			data, err = client.format.Marshal(msg)
			if err != nil {
				log.Printf("[WS] Error marshaling %s message: %v", msg.Type, err)
				return
			}
			encoded[client.format] = data
		}
		select {
		case client.send <- data:
		default:
			log.Printf("[WS] Client send buffer full in match %s, dropping %s message", matchID, msg.Type)
		}
	}
}

// RoomSize returns the number of sockets watching a match.
func (h *Hub) RoomSize(matchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[matchID])
}
