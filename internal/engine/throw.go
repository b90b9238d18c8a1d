// internal/engine/throw.go
package engine

import (
	"sort"

	"github.com/google/uuid"

	"github.com/yanivhq/yaniv-service/internal/models"
)

// IsLegalThrow reports whether the card group may be thrown as one move:
// a single card, two or more cards of identical rank, or three or more
// cards of the same suit forming a consecutive run by rank (jokers wild).
func IsLegalThrow(cards []*models.Card) bool {
	switch {
	case len(cards) == 0:
		return false
	case len(cards) == 1:
		return true
	case isRankSet(cards):
		return true
	case len(cards) >= 3 && isRun(cards):
		return true
	default:
		return false
	}
}

// ValidateThrow combines hand-membership and legality checks: the requested
// IDs must resolve to distinct cards in the hand AND form a legal group.
// Returns the resolved cards on success.
func ValidateThrow(hand []*models.Card, ids []uuid.UUID) ([]*models.Card, bool) {
	cards, ok := FindCards(hand, ids)
	if !ok {
		return nil, false
	}
	if !IsLegalThrow(cards) {
		return nil, false
	}
	return cards, true
}

// GroupRank returns the shared rank of a rank-uniform group (jokers ignored),
// and false if the group mixes ranks. Used for stick-window matching.
func GroupRank(cards []*models.Card) (models.Rank, bool) {
	rank := models.RankJoker
	for _, c := range cards {
		if c.IsJoker() {
			continue
		}
		if rank == models.RankJoker {
			rank = c.Rank
		} else if c.Rank != rank {
			return models.RankJoker, false
		}
	}
	if rank == models.RankJoker {
		return models.RankJoker, false
	}
	return rank, true
}

func isRankSet(cards []*models.Card) bool {
	if len(cards) < 2 {
		return false
	}
	rank := cards[0].Rank
	for _, c := range cards[1:] {
		if c.Rank != rank {
			return false
		}
	}
	return true
}

// isRun checks a same-suit consecutive run with jokers filling gaps or
// extending the ends. Non-joker ranks must be distinct and share one suit.
func isRun(cards []*models.Card) bool {
	var ranks []int
	jokers := 0
	suit := models.SuitJoker
	for _, c := range cards {
		if c.IsJoker() {
			jokers++
			continue
		}
		if suit == models.SuitJoker {
			suit = c.Suit
		} else if c.Suit != suit {
			return false
		}
		ranks = append(ranks, int(c.Rank))
	}
	if len(ranks) == 0 {
		// all jokers: no suit to anchor a run
		return false
	}
	sort.Ints(ranks)
	for i := 1; i < len(ranks); i++ {
		if ranks[i] == ranks[i-1] {
			return false
		}
	}
	// The run occupies a window of len(cards) consecutive ranks; every rank
	// not covered by a real card must be covered by a joker.
	span := ranks[len(ranks)-1] - ranks[0] + 1
	return span <= len(ranks)+jokers
}
