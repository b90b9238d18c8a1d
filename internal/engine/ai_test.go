// internal/engine/ai_test.go
package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanivhq/yaniv-service/internal/models"
)

func TestShouldCallYaniv(t *testing.T) {
	low := []*models.Card{card(models.SuitHearts, 3), card(models.SuitSpades, 4)}
	assert.True(t, ShouldCallYaniv(low, DefaultYanivThreshold))

	high := []*models.Card{card(models.SuitHearts, 3), card(models.SuitSpades, 5)}
	assert.False(t, ShouldCallYaniv(high, DefaultYanivThreshold))
}

func TestChooseThrowPrefersLargestGroup(t *testing.T) {
	pair1 := card(models.SuitHearts, 9)
	pair2 := card(models.SuitSpades, 9)
	single := card(models.SuitClubs, models.RankKing)
	hand := []*models.Card{pair1, single, pair2}

	throw := ChooseThrow(hand)
	require.Len(t, throw, 2, "the 9-9 pair sheds 18, beating the lone king's 10")
	assert.Equal(t, models.Rank(9), throw[0].Rank)
	assert.Equal(t, models.Rank(9), throw[1].Rank)
}

func TestChooseThrowFindsRun(t *testing.T) {
	hand := []*models.Card{
		card(models.SuitClubs, 5),
		card(models.SuitClubs, 7),
		card(models.SuitClubs, 6),
		card(models.SuitHearts, 2),
	}
	throw := ChooseThrow(hand)
	require.Len(t, throw, 3, "the 5-6-7 run sheds 18")
	assert.True(t, IsLegalThrow(throw))
}

func TestChooseThrowSingleFallback(t *testing.T) {
	hand := []*models.Card{
		card(models.SuitHearts, 2),
		card(models.SuitSpades, models.RankQueen),
		card(models.SuitClubs, 7),
	}
	throw := ChooseThrow(hand)
	require.Len(t, throw, 1)
	assert.Equal(t, models.RankQueen, throw[0].Rank, "highest single when no group exists")
}

func TestChooseThrowKeepsJokers(t *testing.T) {
	hand := []*models.Card{
		joker(),
		card(models.SuitHearts, 8),
		card(models.SuitSpades, 3),
	}
	throw := ChooseThrow(hand)
	require.Len(t, throw, 1)
	assert.Equal(t, models.Rank(8), throw[0].Rank)
}

func TestChooseThrowEmptyHand(t *testing.T) {
	assert.Nil(t, ChooseThrow(nil))
}

func TestChooseDraw(t *testing.T) {
	// A cheap exposed card beats the expected blind draw.
	idx, fromPile := ChooseDraw([]*models.Card{card(models.SuitHearts, models.RankAce)})
	assert.True(t, fromPile)
	assert.Equal(t, 0, idx)

	// An expensive exposed card does not.
	_, fromPile = ChooseDraw([]*models.Card{card(models.SuitHearts, models.RankKing)})
	assert.False(t, fromPile)

	// The cheapest card of the exposed group is targeted.
	idx, fromPile = ChooseDraw([]*models.Card{
		card(models.SuitHearts, 9),
		card(models.SuitSpades, 2),
		card(models.SuitClubs, 9),
	})
	assert.True(t, fromPile)
	assert.Equal(t, 1, idx)

	_, fromPile = ChooseDraw(nil)
	assert.False(t, fromPile)
}
