// internal/room/timers.go
package room

import (
	"sync"
	"time"
)

// timerPurpose keys the independent, cancelable timers a room may have in
// flight. Scheduling a purpose always cancels the previous timer of the
// same purpose first, so a purpose never fires twice for one arming.
type timerPurpose string

const (
	timerTurn      timerPurpose = "turn"
	timerAI        timerPurpose = "ai"
	timerStick     timerPurpose = "stick"
	timerRound     timerPurpose = "round"
	timerHostGrace timerPurpose = "host_grace"
)

// scheduler owns a room's pending timers. Cancellation here only prevents
// not-yet-fired timers; callbacks that already fired and are waiting on the
// room lock must re-validate room state (turn/stick sequence numbers, room
// status) before acting.
type scheduler struct {
	mu     sync.Mutex
	timers map[timerPurpose]*time.Timer
}

func newScheduler() *scheduler {
	return &scheduler{timers: make(map[timerPurpose]*time.Timer)}
}

// schedule arms fn to run after d, replacing any pending timer of the same
// purpose. fn runs on the timer goroutine and must acquire the room lock
// itself.
func (s *scheduler) schedule(p timerPurpose, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[p]; ok {
		t.Stop()
	}
	s.timers[p] = time.AfterFunc(d, fn)
}

// cancel stops the pending timer for a purpose, if any.
func (s *scheduler) cancel(p timerPurpose) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[p]; ok {
		t.Stop()
		delete(s.timers, p)
	}
}

// cancelAll stops every pending timer. Called on room closure and on state
// transitions that invalidate all scheduled work.
func (s *scheduler) cancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for p, t := range s.timers {
		t.Stop()
		delete(s.timers, p)
	}
}
