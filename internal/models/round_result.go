// internal/models/round_result.go
package models

import "github.com/google/uuid"

// CallType distinguishes how a round ended.
type CallType string

const (
	// CallYaniv: the caller's hand was strictly the lowest; they win.
	CallYaniv CallType = "yaniv"
	// CallAssaf: an opponent matched or undercut the caller's hand value;
	// the lowest opposing hand wins and the caller is penalized.
	CallAssaf CallType = "assaf"
)

// PlayerRoundResult is one player's line in a RoundResult.
type PlayerRoundResult struct {
	PlayerID   uuid.UUID `json:"playerId"`
	Name       string    `json:"name"`
	Hand       []*Card   `json:"hand"`
	HandValue  int       `json:"handValue"`
	Points     int       `json:"points"`
	Score      int       `json:"score"`
	Eliminated bool      `json:"eliminated"`
}

// RoundResult is an immutable snapshot emitted when a round resolves. The
// core keeps no history of these; persistence, if any, happens behind the
// transport boundary.
type RoundResult struct {
	Round    int                 `json:"round"`
	CallerID uuid.UUID           `json:"callerId"`
	WinnerID uuid.UUID           `json:"winnerId"`
	Call     CallType            `json:"call"`
	Players  []PlayerRoundResult `json:"players"`
}
