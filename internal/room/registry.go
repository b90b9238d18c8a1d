// internal/room/registry.go
package room

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yanivhq/yaniv-service/internal/models"
)

const (
	// codeAlphabet omits 0/O/1/I so codes survive being read out loud.
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 6

	// DefaultIdleTimeout is how long a room may sit with no activity
	// before the sweep closes it.
	DefaultIdleTimeout = 30 * time.Minute
	sweepInterval      = time.Minute
)

// Registry owns every live room, keyed by join code. It hands out codes,
// destroys idle rooms, and is the only holder of room references outside
// the transport layer.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room

	log         *logrus.Logger
	idleTimeout time.Duration
	stop        chan struct{}
	stopOnce    sync.Once
}

// NewRegistry builds a registry and starts its idle sweep.
func NewRegistry(logger *logrus.Logger) *Registry {
	reg := &Registry{
		rooms:       make(map[string]*Room),
		log:         logger,
		idleTimeout: DefaultIdleTimeout,
		stop:        make(chan struct{}),
	}
	go reg.sweepLoop()
	return reg
}

// CreateRoom allocates a code and a fresh waiting room.
func (reg *Registry) CreateRoom(settings models.RoomSettings, logger *logrus.Logger) (*Room, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()

	code, err := reg.newCode()
	if err != nil {
		return nil, err
	}
	r := NewRoom(code, settings, logger, reg.dropRoom)
	reg.rooms[code] = r
	reg.log.WithField("room", code).Info("room created")
	return r, nil
}

// newCode draws random codes until one is unused. Assumes the registry
// lock is held.
func (reg *Registry) newCode() (string, error) {
	buf := make([]byte, codeLength)
	for attempt := 0; attempt < 64; attempt++ {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate room code: %w", err)
		}
		code := make([]byte, codeLength)
		for i, b := range buf {
			code[i] = codeAlphabet[int(b)%len(codeAlphabet)]
		}
		s := string(code)
		if _, taken := reg.rooms[s]; !taken {
			return s, nil
		}
	}
	return "", fmt.Errorf("room code space exhausted")
}

// GetRoom looks a room up by its join code.
func (reg *Registry) GetRoom(code string) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r, ok := reg.rooms[code]
	return r, ok
}

// dropRoom is the room's onClose callback; the room removes itself here
// when it closes for any reason.
func (reg *Registry) dropRoom(code string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.rooms, code)
	reg.log.WithField("room", code).Info("room dropped from registry")
}

// Count reports the number of live rooms.
func (reg *Registry) Count() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms)
}

// Close stops the sweep and shuts every room down.
func (reg *Registry) Close() {
	reg.stopOnce.Do(func() { close(reg.stop) })
	for _, r := range reg.snapshot() {
		r.Shutdown("server shutting down")
	}
}

// snapshot copies the current room list so callers can take room locks
// without holding the registry lock.
func (reg *Registry) snapshot() []*Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		rooms = append(rooms, r)
	}
	return rooms
}

func (reg *Registry) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-reg.stop:
			return
		case <-ticker.C:
			reg.sweep(time.Now())
		}
	}
}

// sweep closes rooms that are empty or idle past the timeout.
func (reg *Registry) sweep(now time.Time) {
	for _, r := range reg.snapshot() {
		idle, empty := r.IdleSince()
		if empty || now.Sub(idle) > reg.idleTimeout {
			r.Shutdown("room idle")
		}
	}
}
