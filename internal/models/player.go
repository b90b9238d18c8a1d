package models

import "github.com/google/uuid"

// Player is one seat in a room. The hand is exclusively owned by the player
// while held and is never serialized to other participants; state
// projections decide per viewer what to reveal.
type Player struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Avatar string    `json:"avatar"`
	Hand   []*Card   `json:"-"`

	// Score is the cumulative game score. Monotonically non-decreasing
	// within a game; reset only when a brand-new game starts.
	Score int `json:"score"`

	IsHost    bool `json:"isHost"`
	IsAI      bool `json:"isAi"`
	Connected bool `json:"connected"`

	// Eliminated is set at round end once Score reaches the room's limit.
	// Eliminated seats are dropped when the next round is dealt.
	Eliminated bool `json:"eliminated"`

	// ConsecutiveTimeouts counts turn timers that expired on this seat
	// without a real move in between. Reset to zero by any real move.
	ConsecutiveTimeouts int `json:"-"`
}

// HandSize returns the number of cards currently held.
func (p *Player) HandSize() int {
	return len(p.Hand)
}
