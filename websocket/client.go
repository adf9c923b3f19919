package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

const sendBufferSize = 64

// Client is one authenticated websocket connection. A user may hold several
// clients at once (multiple tabs); each has its own send queue.
type Client struct {
	UserID uuid.UUID
	Role   string
	Conn   *websocket.Conn

	Send chan []byte

	mu     sync.Mutex
	closed bool
}

func NewClient(userID uuid.UUID, role string, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		Role:   role,
		Conn:   conn,
		Send:   make(chan []byte, sendBufferSize),
	}
}

// Emit queues an event envelope for delivery. A client whose send queue is
// full is skipped rather than blocking the caller.
func (c *Client) Emit(event string, data interface{}) {
	raw, err := json.Marshal(data)
	if err != nil {
		log.Printf("Failed to marshal %s payload for client %s: %v", event, c.UserID, err)
		return
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: raw})
	if err != nil {
		log.Printf("Failed to marshal %s envelope for client %s: %v", event, c.UserID, err)
		return
	}

	// The closed check and the send share one critical section, so a frame
	// can never land on a queue that Close has already shut.
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- frame:
	default:
		log.Printf("Send queue full, skipping client: %s", c.UserID)
	}
}

// WritePump drains the send queue onto the wire. Run as one goroutine per
// client so concurrent emits never interleave writes on the connection.
func (c *Client) WritePump() {
	for frame := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			break
		}
	}
}

// Close shuts the send queue exactly once; WritePump exits on its own.
// Emits racing a departing client are dropped instead of panicking.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}
