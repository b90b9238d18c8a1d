// internal/models/card.go
package models

import "github.com/google/uuid"

// Suit identifies one of the four french suits, or the joker pseudo-suit.
type Suit string

const (
	SuitHearts   Suit = "hearts"
	SuitDiamonds Suit = "diamonds"
	SuitClubs    Suit = "clubs"
	SuitSpades   Suit = "spades"
	SuitJoker    Suit = "joker"
)

// Rank is the card's ordinal rank: 0 for jokers, 1 for aces, 2-10 for
// numerals, 11-13 for jack/queen/king.
type Rank int

const (
	RankJoker Rank = 0
	RankAce   Rank = 1
	RankJack  Rank = 11
	RankQueen Rank = 12
	RankKing  Rank = 13
)

// Card is an immutable value created once at deck-build time. Ownership
// moves between the deck, hands and the discard pile, but the ID never
// changes; all membership checks compare IDs, not rank/suit.
type Card struct {
	ID    uuid.UUID `json:"id"`
	Suit  Suit      `json:"suit"`
	Rank  Rank      `json:"rank"`
	Value int       `json:"value"`
}

// IsJoker reports whether the card is a wild joker.
func (c *Card) IsJoker() bool {
	return c.Rank == RankJoker
}
