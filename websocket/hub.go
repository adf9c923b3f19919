package websocket

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// Hub owns all connected clients and room membership. Personal rooms are
// keyed by user id (every client of that user is a member); conversation
// rooms hold the clients that explicitly joined them. Membership is held in
// an explicit table so "who is subscribed to conversation X" can be answered
// from outside a handler.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID][]*Client
	rooms   map[uuid.UUID]map[*Client]bool

	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID][]*Client),
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			log.Printf("Client registered: %s", client.UserID)
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
		case client := <-h.unregister:
			log.Printf("Client unregistered: %s", client.UserID)
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()
			client.Close()
		}
	}
}

func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
}

func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// removeLocked drops the client from its personal room and from every
// conversation room. Caller holds h.mu.
func (h *Hub) removeLocked(client *Client) {
	peers := h.clients[client.UserID]
	for i, c := range peers {
		if c == client {
			h.clients[client.UserID] = append(peers[:i], peers[i+1:]...)
			break
		}
	}
	if len(h.clients[client.UserID]) == 0 {
		delete(h.clients, client.UserID)
	}
	for roomID, members := range h.rooms {
		if members[client] {
			delete(members, client)
			if len(members) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
}

func (h *Hub) JoinRoom(conversationID uuid.UUID, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[conversationID]
	if !ok {
		members = make(map[*Client]bool)
		h.rooms[conversationID] = members
	}
	members[client] = true
}

func (h *Hub) LeaveRoom(conversationID uuid.UUID, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[conversationID]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, conversationID)
		}
	}
}

// UserInRoom reports whether any of the user's clients joined the room.
func (h *Hub) UserInRoom(conversationID, userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for member := range h.rooms[conversationID] {
		if member.UserID == userID {
			return true
		}
	}
	return false
}

// Connections reports how many live connections the user currently holds.
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) UserOnline(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// RoomsOf lists the conversation rooms this client currently belongs to.
func (h *Hub) RoomsOf(client *Client) []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var roomIDs []uuid.UUID
	for roomID, members := range h.rooms {
		if members[client] {
			roomIDs = append(roomIDs, roomID)
		}
	}
	return roomIDs
}

// EmitToRoom fans an event out to every client in the conversation room,
// except the optional excluded client.
func (h *Hub) EmitToRoom(conversationID uuid.UUID, event string, data interface{}, except *Client) {
	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[conversationID]))
	for member := range h.rooms[conversationID] {
		if member != except {
			members = append(members, member)
		}
	}
	h.mu.RUnlock()

	for _, member := range members {
		member.Emit(event, data)
	}
}

// EmitToUser delivers an event to the user's personal room, i.e. every
// connection that user currently holds.
func (h *Hub) EmitToUser(userID uuid.UUID, event string, data interface{}) {
	h.mu.RLock()
	targets := make([]*Client, len(h.clients[userID]))
	copy(targets, h.clients[userID])
	h.mu.RUnlock()

	for _, target := range targets {
		target.Emit(event, data)
	}
}
