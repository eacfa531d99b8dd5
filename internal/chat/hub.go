package chat

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/filoshare/backend/internal/models"
)

// MessageStore persists messages and touches room activity; implemented
// by services.ChatService
type MessageStore interface {
	SaveMessage(roomID, senderID uint, text string) (*models.Message, error)
}

// Hub relays messages between the connections joined to each room.
// The hub trusts join targets: room membership is validated by the REST
// listing the caller got its room ids from.
type Hub struct {
	mu    sync.RWMutex
	rooms map[uint]map[*Client]struct{}

	store MessageStore
}

func NewHub(store MessageStore) *Hub {
	return &Hub{
		rooms: make(map[uint]map[*Client]struct{}),
		store: store,
	}
}

// Serve runs one authenticated connection until its transport closes.
// It blocks, which is what the websocket handler wants.
func (h *Hub) Serve(conn Conn, userID uint) {
	client := newClient(h, conn, userID)
	go client.writePump()
	client.readPump()
}

// join adds the connection to a room; each join is independent and
// there is no leave short of disconnect
func (h *Hub) join(c *Client, roomID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.rooms[roomID]
	if !ok {
		set = make(map[*Client]struct{})
		h.rooms[roomID] = set
	}
	set[c] = struct{}{}

	c.mu.Lock()
	c.rooms[roomID] = struct{}{}
	c.mu.Unlock()
}

// disconnect releases all of the connection's room memberships
func (h *Hub) disconnect(c *Client) {
	h.mu.Lock()
	c.mu.Lock()
	for roomID := range c.rooms {
		if set, ok := h.rooms[roomID]; ok {
			delete(set, c)
			if len(set) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
	c.rooms = make(map[uint]struct{})
	c.mu.Unlock()
	h.mu.Unlock()

	c.close()
}

// sendMessage persists and then fans out. The broadcast includes the
// sender's own connection; that echo is its only confirmation. On a
// persistence failure only the sender hears about it and the message
// reaches nobody.
func (h *Hub) sendMessage(c *Client, roomID uint, text string) {
	saved, err := h.store.SaveMessage(roomID, c.userID, text)
	if err != nil {
		log.Printf("chat: failed to save message in room %d: %v", roomID, err)
		c.sendError("Message sending failed")
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"event": "receive_message",
		"data":  saved,
	})
	if err != nil {
		c.sendError("Message sending failed")
		return
	}

	h.broadcast(roomID, payload)
}

// broadcast delivers a frame to every connection currently in the room
func (h *Hub) broadcast(roomID uint, payload []byte) {
	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		members = append(members, c)
	}
	h.mu.RUnlock()

	for _, c := range members {
		c.enqueue(payload)
	}
}
