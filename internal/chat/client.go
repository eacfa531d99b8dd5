package chat

import (
	"encoding/json"
	"log"
	"strconv"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// Conn is the transport seen by a client; *websocket.Conn satisfies it
// and tests substitute their own
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one authenticated websocket connection. Room membership
// lives only on the connection and is dropped wholly at disconnect.
type Client struct {
	hub    *Hub
	conn   Conn
	userID uint

	send chan []byte

	mu     sync.Mutex
	rooms  map[uint]struct{}
	closed bool
}

func newClient(hub *Hub, conn Conn, userID uint) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, 64),
		rooms:  make(map[uint]struct{}),
	}
}

// inboundEvent is one client frame: {"event": ..., "data": ...}
type inboundEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type sendMessageData struct {
	RoomID json.RawMessage `json:"roomId"`
	Text   string          `json:"text"`
}

// parseRoomID accepts a JSON string or number room reference
func parseRoomID(raw json.RawMessage) (uint, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		id, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return 0, false
		}
		return uint(id), true
	}
	var n uint64
	if err := json.Unmarshal(raw, &n); err == nil && n > 0 {
		return uint(n), true
	}
	return 0, false
}

// readPump consumes frames until the transport closes
func (c *Client) readPump() {
	defer c.hub.disconnect(c)

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var evt inboundEvent
		if err := json.Unmarshal(payload, &evt); err != nil {
			c.sendError("Invalid message format")
			continue
		}

		switch evt.Event {
		case "join_room":
			roomID, ok := parseRoomID(evt.Data)
			if !ok {
				c.sendError("RoomId required")
				continue
			}
			c.hub.join(c, roomID)

		case "send_message":
			var data sendMessageData
			if err := json.Unmarshal(evt.Data, &data); err != nil {
				c.sendError("RoomId and text required")
				continue
			}
			roomID, ok := parseRoomID(data.RoomID)
			if !ok || data.Text == "" {
				c.sendError("RoomId and text required")
				continue
			}
			c.hub.sendMessage(c, roomID, data.Text)

		default:
			c.sendError("Unknown event")
		}
	}
}

// writePump drains the send queue onto the transport
func (c *Client) writePump() {
	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			c.hub.disconnect(c)
			return
		}
	}
	c.conn.Close()
}

// enqueue hands a pre-marshaled frame to the write pump. A client that
// cannot keep up is dropped rather than blocking the broadcast.
func (c *Client) enqueue(payload []byte) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	select {
	case c.send <- payload:
		c.mu.Unlock()
	default:
		c.mu.Unlock()
		log.Printf("chat: dropping slow connection for user %d", c.userID)
		go c.hub.disconnect(c)
	}
}

func (c *Client) sendError(message string) {
	payload, err := json.Marshal(map[string]interface{}{
		"event": "error_message",
		"data":  message,
	})
	if err != nil {
		return
	}
	c.enqueue(payload)
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}
