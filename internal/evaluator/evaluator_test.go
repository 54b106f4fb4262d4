package evaluator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vctt94/pokerroomd/internal/cards"
)

func c(rank cards.Rank, suit cards.Suit) cards.Card {
	return cards.Card{Rank: rank, Suit: suit}
}

func TestBest_RoyalFlush(t *testing.T) {
	hole := []cards.Card{c(cards.Ace, cards.Spades), c(cards.King, cards.Spades)}
	board := []cards.Card{
		c(cards.Queen, cards.Spades),
		c(cards.Jack, cards.Spades),
		c(cards.Ten, cards.Spades),
		c(cards.Two, cards.Hearts),
		c(cards.Three, cards.Clubs),
	}

	hv, err := Best(hole, board)
	require.NoError(t, err)
	assert.Equal(t, RoyalFlush, hv.Rank)
	assert.Len(t, hv.Best, 5)
}

func TestBest_WheelStraightBelowSixHigh(t *testing.T) {
	wheelHole := []cards.Card{c(cards.Ace, cards.Hearts), c(cards.Two, cards.Clubs)}
	wheelBoard := []cards.Card{
		c(cards.Three, cards.Diamonds),
		c(cards.Four, cards.Spades),
		c(cards.Five, cards.Hearts),
		c(cards.Nine, cards.Clubs),
		c(cards.King, cards.Diamonds),
	}
	wheel, err := Best(wheelHole, wheelBoard)
	require.NoError(t, err)
	assert.Equal(t, Straight, wheel.Rank)

	sixHighHole := []cards.Card{c(cards.Six, cards.Hearts), c(cards.Two, cards.Diamonds)}
	sixHighBoard := []cards.Card{
		c(cards.Three, cards.Spades),
		c(cards.Four, cards.Clubs),
		c(cards.Five, cards.Diamonds),
		c(cards.Nine, cards.Hearts),
		c(cards.King, cards.Clubs),
	}
	sixHigh, err := Best(sixHighHole, sixHighBoard)
	require.NoError(t, err)
	assert.Equal(t, Straight, sixHigh.Rank)

	assert.Equal(t, -1, Compare(wheel, sixHigh), "wheel straight must compare below six-high straight")
}

func TestBest_TooFewCards(t *testing.T) {
	_, err := Best([]cards.Card{c(cards.Ace, cards.Spades)}, nil)
	assert.Error(t, err)
}

func TestWinners_Tie(t *testing.T) {
	boardA := []cards.Card{
		c(cards.Nine, cards.Clubs), c(cards.Eight, cards.Diamonds), c(cards.Seven, cards.Hearts),
		c(cards.Two, cards.Spades), c(cards.Three, cards.Clubs),
	}
	holeA := []cards.Card{c(cards.Ace, cards.Diamonds), c(cards.King, cards.Clubs)}
	holeB := []cards.Card{c(cards.Ace, cards.Hearts), c(cards.King, cards.Diamonds)}

	hvA, err := Best(holeA, boardA)
	require.NoError(t, err)
	hvB, err := Best(holeB, boardA)
	require.NoError(t, err)

	winners := Winners([]HandValue{hvA, hvB})
	assert.ElementsMatch(t, []int{0, 1}, winners)
}

func TestEquity_SumsToHundred(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	holeHands := [][]cards.Card{
		{c(cards.Ace, cards.Spades), c(cards.Ace, cards.Hearts)},
		{c(cards.King, cards.Clubs), c(cards.King, cards.Diamonds)},
	}

	equity, err := Equity(rng, holeHands, nil, 200)
	require.NoError(t, err)
	require.Len(t, equity, 2)

	sum := equity[0] + equity[1]
	assert.InDelta(t, 100, sum, 0.01)
	assert.Greater(t, equity[0], equity[1], "pocket aces should beat pocket kings more often")
}

func TestEquity_SingleHandIsHundred(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	equity, err := Equity(rng, [][]cards.Card{{c(cards.Ace, cards.Spades), c(cards.Ace, cards.Hearts)}}, nil, 100)
	require.NoError(t, err)
	assert.Equal(t, []float64{100}, equity)
}
