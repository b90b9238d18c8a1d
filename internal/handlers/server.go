// internal/handlers/server.go
package handlers

import (
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yanivhq/yaniv-service/internal/middleware"
	"github.com/yanivhq/yaniv-service/internal/models"
	"github.com/yanivhq/yaniv-service/internal/room"
)

// Server ties the room registry to the WebSocket transport. It owns one
// sink per live room so joins can bind connections to room events.
type Server struct {
	Registry *room.Registry
	Log      *logrus.Logger

	mu    sync.Mutex
	sinks map[string]*roomSink
}

func NewServer(logger *logrus.Logger) *Server {
	return &Server{
		Registry: room.NewRegistry(logger),
		Log:      logger,
		sinks:    make(map[string]*roomSink),
	}
}

// Handler builds the HTTP routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/ws", WSHandler(s))
	return middleware.LogMiddleware(s.Log)(mux)
}

// Close drains every room and stops the registry sweep.
func (s *Server) Close() {
	s.Registry.Close()
}

// createRoom allocates a room plus its event sink.
func (s *Server) createRoom(settings models.RoomSettings) (*room.Room, *roomSink, error) {
	r, err := s.Registry.CreateRoom(settings, s.Log)
	if err != nil {
		return nil, nil, err
	}
	sink := newRoomSink(r.Code, s)
	r.Subscribe(sink)

	s.mu.Lock()
	s.sinks[r.Code] = sink
	s.mu.Unlock()
	return r, sink, nil
}

func (s *Server) sinkFor(code string) (*roomSink, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sink, ok := s.sinks[code]
	return sink, ok
}

// dropSink forgets a closed room's sink.
func (s *Server) dropSink(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sinks, code)
}
