// internal/engine/deck.go

// Package engine implements the Yaniv rules as pure functions over card
// collections: deck construction, hand valuation, throw legality, round
// resolution and the heuristics used by AI seats. Nothing in this package
// holds state or performs I/O; illegal input is reported through ordinary
// return values so callers can treat it as control flow.
package engine

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/yanivhq/yaniv-service/internal/models"
)

// JokersPerDeck is the number of jokers added per 52-card sub-deck.
const JokersPerDeck = 2

var suits = []models.Suit{
	models.SuitHearts,
	models.SuitDiamonds,
	models.SuitClubs,
	models.SuitSpades,
}

// ValueForRank maps a rank to its hand value: joker 0, ace 1, numerals at
// face value, face cards 10.
func ValueForRank(r models.Rank) int {
	switch {
	case r == models.RankJoker:
		return 0
	case r >= models.RankJack:
		return 10
	default:
		return int(r)
	}
}

// NewDeck builds subDecks standard 52-card decks plus JokersPerDeck jokers
// each, unshuffled. Every card gets a fresh unique ID.
func NewDeck(subDecks int) []*models.Card {
	deck := make([]*models.Card, 0, subDecks*(52+JokersPerDeck))
	for d := 0; d < subDecks; d++ {
		for _, suit := range suits {
			for r := models.RankAce; r <= models.RankKing; r++ {
				deck = append(deck, &models.Card{
					ID:    uuid.New(),
					Suit:  suit,
					Rank:  r,
					Value: ValueForRank(r),
				})
			}
		}
		for j := 0; j < JokersPerDeck; j++ {
			deck = append(deck, &models.Card{
				ID:    uuid.New(),
				Suit:  models.SuitJoker,
				Rank:  models.RankJoker,
				Value: 0,
			})
		}
	}
	return deck
}

// Shuffle permutes cards in place with a uniform random permutation.
func Shuffle(cards []*models.Card) {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	r.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

// NewShuffledDeck is NewDeck followed by Shuffle.
func NewShuffledDeck(subDecks int) []*models.Card {
	deck := NewDeck(subDecks)
	Shuffle(deck)
	return deck
}
