// internal/engine/engine_test.go
package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanivhq/yaniv-service/internal/models"
)

// card builds a test card with a fresh ID and the canonical value for the rank.
func card(suit models.Suit, rank models.Rank) *models.Card {
	return &models.Card{ID: uuid.New(), Suit: suit, Rank: rank, Value: ValueForRank(rank)}
}

func joker() *models.Card {
	return card(models.SuitJoker, models.RankJoker)
}

func TestNewDeckComposition(t *testing.T) {
	deck := NewDeck(2)
	require.Len(t, deck, 2*(52+JokersPerDeck))

	jokers := 0
	perSuit := map[models.Suit]int{}
	ids := map[uuid.UUID]bool{}
	for _, c := range deck {
		require.False(t, ids[c.ID], "card ids must be unique")
		ids[c.ID] = true
		if c.IsJoker() {
			jokers++
			assert.Equal(t, 0, c.Value)
			continue
		}
		perSuit[c.Suit]++
	}
	assert.Equal(t, 2*JokersPerDeck, jokers)
	for _, suit := range []models.Suit{models.SuitHearts, models.SuitDiamonds, models.SuitClubs, models.SuitSpades} {
		assert.Equal(t, 26, perSuit[suit], "suit %s", suit)
	}
}

func TestValueForRank(t *testing.T) {
	assert.Equal(t, 0, ValueForRank(models.RankJoker))
	assert.Equal(t, 1, ValueForRank(models.RankAce))
	assert.Equal(t, 7, ValueForRank(7))
	assert.Equal(t, 10, ValueForRank(10))
	assert.Equal(t, 10, ValueForRank(models.RankJack))
	assert.Equal(t, 10, ValueForRank(models.RankQueen))
	assert.Equal(t, 10, ValueForRank(models.RankKing))
}

func TestHandValue(t *testing.T) {
	hand := []*models.Card{
		card(models.SuitHearts, models.RankAce),
		card(models.SuitSpades, models.RankKing),
		card(models.SuitClubs, 4),
		joker(),
	}
	assert.Equal(t, 15, HandValue(hand))
	assert.Equal(t, 0, HandValue(nil))
}

func TestFindCardsRejectsForgedIDs(t *testing.T) {
	hand := []*models.Card{card(models.SuitHearts, 5), card(models.SuitClubs, 5)}

	// Happy path: both real IDs resolve.
	found, ok := FindCards(hand, []uuid.UUID{hand[0].ID, hand[1].ID})
	require.True(t, ok)
	assert.Len(t, found, 2)

	// A forged ID fails the whole lookup even if the count matches.
	_, ok = FindCards(hand, []uuid.UUID{hand[0].ID, uuid.New()})
	assert.False(t, ok)

	// The same card may not be spent twice.
	_, ok = FindCards(hand, []uuid.UUID{hand[0].ID, hand[0].ID})
	assert.False(t, ok)

	_, ok = FindCards(hand, nil)
	assert.False(t, ok)
}

func TestIsLegalThrow(t *testing.T) {
	tests := []struct {
		name  string
		cards []*models.Card
		legal bool
	}{
		{"empty", nil, false},
		{"single", []*models.Card{card(models.SuitHearts, 9)}, true},
		{"single joker", []*models.Card{joker()}, true},
		{"pair same rank", []*models.Card{card(models.SuitHearts, 4), card(models.SuitSpades, 4)}, true},
		{"four of a kind", []*models.Card{
			card(models.SuitHearts, models.RankKing), card(models.SuitSpades, models.RankKing),
			card(models.SuitClubs, models.RankKing), card(models.SuitDiamonds, models.RankKing),
		}, true},
		{"pair mixed rank", []*models.Card{card(models.SuitHearts, 4), card(models.SuitSpades, 5)}, false},
		{"run of three", []*models.Card{
			card(models.SuitClubs, 5), card(models.SuitClubs, 6), card(models.SuitClubs, 7),
		}, true},
		{"run of two is not a run", []*models.Card{
			card(models.SuitClubs, 5), card(models.SuitClubs, 6),
		}, false},
		{"run mixed suits", []*models.Card{
			card(models.SuitClubs, 5), card(models.SuitHearts, 6), card(models.SuitClubs, 7),
		}, false},
		{"run with joker gap", []*models.Card{
			card(models.SuitSpades, 5), joker(), card(models.SuitSpades, 7),
		}, true},
		{"run with joker at end", []*models.Card{
			card(models.SuitSpades, 5), card(models.SuitSpades, 6), joker(),
		}, true},
		{"run gap too wide for jokers", []*models.Card{
			card(models.SuitSpades, 5), joker(), card(models.SuitSpades, 8),
		}, false},
		{"run duplicate rank", []*models.Card{
			card(models.SuitSpades, 5), card(models.SuitSpades, 5), card(models.SuitSpades, 6),
		}, false},
		{"all jokers is a rank set", []*models.Card{joker(), joker()}, true},
		{"three jokers anchor no run but match rank", []*models.Card{joker(), joker(), joker()}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.legal, IsLegalThrow(tt.cards))
		})
	}
}

func TestValidateThrow(t *testing.T) {
	hand := []*models.Card{
		card(models.SuitHearts, 4),
		card(models.SuitSpades, 4),
		card(models.SuitClubs, 9),
	}

	cards, ok := ValidateThrow(hand, []uuid.UUID{hand[0].ID, hand[1].ID})
	require.True(t, ok)
	assert.Len(t, cards, 2)

	// Legal shape but not owned.
	stranger := card(models.SuitDiamonds, 4)
	_, ok = ValidateThrow(hand, []uuid.UUID{hand[0].ID, stranger.ID})
	assert.False(t, ok)

	// Owned but illegal shape.
	_, ok = ValidateThrow(hand, []uuid.UUID{hand[0].ID, hand[2].ID})
	assert.False(t, ok)
}

func TestGroupRank(t *testing.T) {
	r, ok := GroupRank([]*models.Card{card(models.SuitHearts, 8), card(models.SuitClubs, 8)})
	require.True(t, ok)
	assert.Equal(t, models.Rank(8), r)

	r, ok = GroupRank([]*models.Card{card(models.SuitHearts, 8), joker()})
	require.True(t, ok)
	assert.Equal(t, models.Rank(8), r)

	_, ok = GroupRank([]*models.Card{card(models.SuitHearts, 8), card(models.SuitHearts, 9)})
	assert.False(t, ok)

	_, ok = GroupRank([]*models.Card{joker(), joker()})
	assert.False(t, ok)
}

func TestResolveRoundYanivWin(t *testing.T) {
	hands := [][]*models.Card{
		{card(models.SuitHearts, 3), card(models.SuitSpades, 2)},   // caller: 5
		{card(models.SuitClubs, models.RankKing)},                  // 10
		{card(models.SuitDiamonds, 6), card(models.SuitHearts, 4)}, // 10
	}
	out := ResolveRound(hands, 0, DefaultAssafPenalty)
	assert.False(t, out.Assaf)
	assert.Equal(t, 0, out.WinnerIdx)
	assert.Equal(t, []int{0, 10, 10}, out.Points)
}

func TestResolveRoundAssaf(t *testing.T) {
	hands := [][]*models.Card{
		{card(models.SuitHearts, 3), card(models.SuitSpades, 2)}, // caller: 5
		{card(models.SuitClubs, 4)},                              // 4 <= 5: assaf
		{card(models.SuitDiamonds, 9)},                           // 9
	}
	out := ResolveRound(hands, 0, DefaultAssafPenalty)
	assert.True(t, out.Assaf)
	assert.Equal(t, 1, out.WinnerIdx)
	// Caller pays their hand plus the penalty; the winner pays nothing.
	assert.Equal(t, []int{5 + DefaultAssafPenalty, 0, 9}, out.Points)
}

func TestResolveRoundAssafTieBreak(t *testing.T) {
	// Seats 0 and 2 both hold 5 against caller at seat 1 holding 5.
	// Turn order after the caller is 2 then 0, so seat 2 wins the tie.
	hands := [][]*models.Card{
		{card(models.SuitHearts, 5)},
		{card(models.SuitSpades, 5)},
		{card(models.SuitClubs, 5)},
	}
	out := ResolveRound(hands, 1, DefaultAssafPenalty)
	assert.True(t, out.Assaf)
	assert.Equal(t, 2, out.WinnerIdx)
	assert.Equal(t, []int{5, 5 + DefaultAssafPenalty, 0}, out.Points)
}

func TestResolveRoundEqualValueIsAssaf(t *testing.T) {
	hands := [][]*models.Card{
		{card(models.SuitHearts, 7)}, // caller: 7
		{card(models.SuitSpades, 7)}, // equal value assafs the caller
	}
	out := ResolveRound(hands, 0, DefaultAssafPenalty)
	assert.True(t, out.Assaf)
	assert.Equal(t, 1, out.WinnerIdx)
}
