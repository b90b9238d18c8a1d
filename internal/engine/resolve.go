// internal/engine/resolve.go
package engine

import "github.com/yanivhq/yaniv-service/internal/models"

// Balance constants. The exact numbers are game-balance configuration, not
// structure; rooms read them from the environment with these defaults.
const (
	// DefaultYanivThreshold is the hand value at or below which a player
	// may declare Yaniv on their turn.
	DefaultYanivThreshold = 7
	// DefaultAssafPenalty is the surcharge the caller adds on top of their
	// own hand value when the declaration is Assafed.
	DefaultAssafPenalty = 30
)

// CanCallYaniv reports Yaniv eligibility for a hand.
func CanCallYaniv(hand []*models.Card, threshold int) bool {
	return HandValue(hand) <= threshold
}

// Outcome is the result of resolving a Yaniv declaration.
type Outcome struct {
	// WinnerIdx is the seat index of the round winner.
	WinnerIdx int
	// Assaf is true when an opposing hand matched or undercut the caller.
	Assaf bool
	// Points holds the score added per seat, aligned with the input hands.
	Points []int
}

// ResolveRound resolves a Yaniv call by the player at callerIdx against the
// given hands (seat order = turn order). If any opposing hand value is at or
// below the caller's, the round is an Assaf: the lowest opposing hand wins,
// ties broken by the seat that acts earliest after the caller in turn order.
// The winner scores 0; every other player scores their own hand value; an
// Assafed caller additionally pays assafPenalty.
func ResolveRound(hands [][]*models.Card, callerIdx, assafPenalty int) Outcome {
	n := len(hands)
	values := make([]int, n)
	for i, h := range hands {
		values[i] = HandValue(h)
	}

	winner := callerIdx
	assaf := false
	best := values[callerIdx]
	// Walk seats in turn order starting after the caller so that the
	// earliest qualifying seat wins ties deterministically.
	for off := 1; off < n; off++ {
		i := (callerIdx + off) % n
		if values[i] <= values[callerIdx] && (!assaf || values[i] < best) {
			assaf = true
			winner = i
			best = values[i]
		}
	}

	points := make([]int, n)
	for i := range hands {
		switch {
		case i == winner:
			points[i] = 0
		case i == callerIdx && assaf:
			points[i] = values[i] + assafPenalty
		default:
			points[i] = values[i]
		}
	}
	return Outcome{WinnerIdx: winner, Assaf: assaf, Points: points}
}
