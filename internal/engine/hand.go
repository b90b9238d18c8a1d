// internal/engine/hand.go
package engine

import (
	"github.com/google/uuid"

	"github.com/yanivhq/yaniv-service/internal/models"
)

// HandValue returns the sum of card values in a hand. This is the quantity
// compared against the Yaniv threshold and added to score on a loss.
func HandValue(hand []*models.Card) int {
	total := 0
	for _, c := range hand {
		total += c.Value
	}
	return total
}

// FindCards resolves the requested card IDs against the actual hand. Every
// ID must match a distinct card currently held; a repeated or unknown ID
// (including a forged one with a plausible rank) fails the whole lookup.
func FindCards(hand []*models.Card, ids []uuid.UUID) ([]*models.Card, bool) {
	if len(ids) == 0 {
		return nil, false
	}
	byID := make(map[uuid.UUID]*models.Card, len(hand))
	for _, c := range hand {
		byID[c.ID] = c
	}
	found := make([]*models.Card, 0, len(ids))
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			return nil, false
		}
		delete(byID, id) // each card spendable once
		found = append(found, c)
	}
	return found, true
}

// RemoveCards returns hand minus the given cards, preserving order.
// Cards are matched by ID.
func RemoveCards(hand []*models.Card, cards []*models.Card) []*models.Card {
	drop := make(map[uuid.UUID]bool, len(cards))
	for _, c := range cards {
		drop[c.ID] = true
	}
	out := hand[:0]
	for _, c := range hand {
		if !drop[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

// HighestCard returns the highest-value card in the hand, or nil for an
// empty hand. Used for the conservative auto-play on turn timeout.
func HighestCard(hand []*models.Card) *models.Card {
	var best *models.Card
	for _, c := range hand {
		if best == nil || c.Value > best.Value {
			best = c
		}
	}
	return best
}
