// internal/engine/ai.go
package engine

import (
	"sort"

	"github.com/yanivhq/yaniv-service/internal/models"
)

// meanDeckValue is the rounded mean value of a card in a fresh sub-deck
// (340 points over 54 cards). A blind deck draw is expected to add this
// much to the hand, so an exposed pile card is only worth taking when it
// is strictly cheaper.
const meanDeckValue = 6

// ShouldCallYaniv is the AI call heuristic: declare whenever eligible.
func ShouldCallYaniv(hand []*models.Card, threshold int) bool {
	return CanCallYaniv(hand, threshold)
}

// ChooseThrow picks a legal throw that minimizes the resulting hand value,
// preferring the largest same-rank group or run available. The returned
// group is always legal and non-empty for a non-empty hand.
func ChooseThrow(hand []*models.Card) []*models.Card {
	if len(hand) == 0 {
		return nil
	}

	best := []*models.Card{hand[0]}
	consider := func(group []*models.Card) {
		if !IsLegalThrow(group) {
			return
		}
		gv, bv := HandValue(group), HandValue(best)
		if gv > bv || (gv == bv && len(group) > len(best)) {
			best = append([]*models.Card(nil), group...)
		}
	}

	// Singles.
	for _, c := range hand {
		consider([]*models.Card{c})
	}

	// Same-rank groups.
	byRank := make(map[models.Rank][]*models.Card)
	for _, c := range hand {
		if !c.IsJoker() {
			byRank[c.Rank] = append(byRank[c.Rank], c)
		}
	}
	for _, group := range byRank {
		if len(group) >= 2 {
			consider(group)
		}
	}

	// Same-suit runs (jokers deliberately kept in hand; they are worth 0
	// and spending them on a run throws away their flexibility).
	bySuit := make(map[models.Suit][]*models.Card)
	for _, c := range hand {
		if !c.IsJoker() {
			bySuit[c.Suit] = append(bySuit[c.Suit], c)
		}
	}
	for _, cards := range bySuit {
		if len(cards) < 3 {
			continue
		}
		sort.Slice(cards, func(i, j int) bool { return cards[i].Rank < cards[j].Rank })
		for start := 0; start < len(cards); start++ {
			run := []*models.Card{cards[start]}
			for next := start + 1; next < len(cards); next++ {
				if cards[next].Rank == run[len(run)-1].Rank+1 {
					run = append(run, cards[next])
					if len(run) >= 3 {
						consider(run)
					}
				} else if cards[next].Rank != run[len(run)-1].Rank {
					break
				}
			}
		}
	}

	return best
}

// ChooseDraw decides where to draw after a throw. It returns the index of
// the best exposed card in the last discard group and whether the pile is
// preferable to a blind deck draw: the pile is chosen only when the exposed
// card is strictly cheaper than the expected blind draw.
func ChooseDraw(exposed []*models.Card) (pileIndex int, fromPile bool) {
	if len(exposed) == 0 {
		return 0, false
	}
	pileIndex = 0
	for i, c := range exposed {
		if c.Value < exposed[pileIndex].Value {
			pileIndex = i
		}
	}
	return pileIndex, exposed[pileIndex].Value < meanDeckValue
}
