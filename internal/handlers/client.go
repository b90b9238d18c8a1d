// internal/handlers/client.go
package handlers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	writeTimeout   = 3 * time.Second
	outboundBuffer = 256
)

// client is one WebSocket participant. The identity may be rebound once by
// an authenticate message before the client enters a room, and again by
// the room on rejoin.
//
// All writes go through a single writer goroutine draining outbound, so
// frames reach the socket in the order they were enqueued.
type client struct {
	conn *websocket.Conn
	log  *logrus.Logger

	outbound  chan []byte
	done      chan struct{}
	closeOnce sync.Once

	mu   sync.Mutex
	id   uuid.UUID
	room string // join code of the current room, "" when lobbyless
}

func newClient(conn *websocket.Conn, log *logrus.Logger) *client {
	c := &client{
		conn:     conn,
		log:      log,
		id:       uuid.New(),
		outbound: make(chan []byte, outboundBuffer),
		done:     make(chan struct{}),
	}
	go c.writeLoop()
	return c
}

func (c *client) playerID() uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

func (c *client) setIdentity(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = id
}

func (c *client) roomCode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

func (c *client) setRoom(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.room = code
}

// writeLoop is the sole writer on the connection.
func (c *client) writeLoop() {
	for {
		select {
		case data := <-c.outbound:
			c.write(data)
		case <-c.done:
			return
		}
	}
}

// enqueue hands a frame to the writer without blocking the caller; room
// events arrive with the room lock held. A full buffer means the client
// stopped draining its socket — the frame is dropped with a log and the
// read loop will surface the dead connection.
func (c *client) enqueue(data []byte) {
	select {
	case <-c.done:
	case c.outbound <- data:
	default:
		c.log.WithField("player", c.playerID()).Warn("outbound buffer full, dropping frame")
	}
}

// shutdown stops the writer goroutine. Safe to call more than once.
func (c *client) shutdown() {
	c.closeOnce.Do(func() { close(c.done) })
}

// send marshals and queues one message. Write failures are logged by the
// writer and left for the read loop to surface as a disconnect.
func (c *client) send(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		c.log.WithError(err).Error("failed to marshal outbound message")
		return
	}
	c.enqueue(data)
}

func (c *client) write(data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := c.conn.Write(ctx, websocket.MessageText, data); err != nil {
		c.log.WithError(err).WithField("player", c.playerID()).Warn("websocket write failed")
	}
}

// sendError relays a room-level rejection to this client only.
func (c *client) sendError(msg string) {
	c.send(map[string]string{"type": "room_error", "message": msg})
}
