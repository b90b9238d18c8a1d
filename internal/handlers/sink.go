// internal/handlers/sink.go
package handlers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yanivhq/yaniv-service/internal/cache"
	"github.com/yanivhq/yaniv-service/internal/room"
)

// roomSink is the bridge between one room and its WebSocket clients. It is
// the room's Sink: events arrive with the room lock held, so the sink only
// queues frames on each client's outbound channel. Queueing never blocks,
// and each client drains its queue with a single writer, so every client
// observes events in the order the room emitted them.
type roomSink struct {
	code string
	srv  *Server
	log  *logrus.Logger

	mu      sync.Mutex
	clients map[uuid.UUID]*client
}

func newRoomSink(code string, srv *Server) *roomSink {
	return &roomSink{
		code:    code,
		srv:     srv,
		log:     srv.Log,
		clients: make(map[uuid.UUID]*client),
	}
}

// bind attaches a client under its current player ID. Must happen before
// the room seats the player so no event is lost.
func (s *roomSink) bind(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.playerID()] = c
}

func (s *roomSink) unbind(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, id)
}

// Broadcast queues an event for every bound client.
func (s *roomSink) Broadcast(ev room.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		s.log.WithError(err).WithField("event", ev.Type).Error("failed to marshal broadcast event")
		return
	}
	s.mu.Lock()
	for _, c := range s.clients {
		c.enqueue(data)
	}
	s.mu.Unlock()

	switch ev.Type {
	case room.EventRoundEnded:
		s.publishRoundResult(ev)
	case room.EventRoomClosed:
		s.teardown()
	}
}

// SendTo queues an event for one bound client; events for unbound players
// (AI seats, dropped connections) vanish quietly.
func (s *roomSink) SendTo(playerID uuid.UUID, ev room.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		s.log.WithError(err).WithField("event", ev.Type).Error("failed to marshal private event")
		return
	}
	s.mu.Lock()
	if c, ok := s.clients[playerID]; ok {
		c.enqueue(data)
	}
	s.mu.Unlock()
}

// publishRoundResult queues the finished round for downstream consumers.
// Failures are logged; gameplay never blocks on the queue.
func (s *roomSink) publishRoundResult(ev room.Event) {
	if !cache.Enabled() || ev.Round == nil {
		return
	}
	rec := cache.RoundRecordFromResult(s.code, ev.Round)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cache.PublishRoundResult(ctx, rec); err != nil {
			s.log.WithError(err).WithField("room", s.code).Warn("failed to publish round result")
		}
	}()
}

// teardown releases every binding once the room is gone.
func (s *roomSink) teardown() {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.clients = make(map[uuid.UUID]*client)
	s.mu.Unlock()

	for _, c := range clients {
		if c.roomCode() == s.code {
			c.setRoom("")
		}
	}
	s.srv.dropSink(s.code)
}
