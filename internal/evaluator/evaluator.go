// Package evaluator selects the best 5-card Hold'em hand from up to 7
// cards, compares hands, and approximates equity via Monte Carlo
// simulation. Hand ranking is delegated to chehsunliu/poker, the way
// vctt94-pokerbisonrelay's pkg/poker/hand_evaluator.go does.
package evaluator

import (
	"fmt"
	"math/rand"

	chehsunliu "github.com/chehsunliu/poker"

	"github.com/vctt94/pokerroomd/internal/cards"
)

// Rank is the standard nine-category poker hand taxonomy, ascending,
// with RoyalFlush split out of StraightFlush as a tenth value.
type Rank int

const (
	HighCard Rank = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

func (r Rank) String() string {
	switch r {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	case RoyalFlush:
		return "Royal Flush"
	default:
		return "Unknown"
	}
}

// HandValue is a complete evaluation of the best 5-card hand available
// from a set of cards.
type HandValue struct {
	Rank        Rank
	rankValue   int32 // chehsunliu internal rank, lower is better
	Best        []cards.Card
	Description string
}

func toChehsunliu(c cards.Card) (chehsunliu.Card, error) {
	var zero chehsunliu.Card
	var rankChar byte
	switch c.Rank {
	case cards.Two:
		rankChar = '2'
	case cards.Three:
		rankChar = '3'
	case cards.Four:
		rankChar = '4'
	case cards.Five:
		rankChar = '5'
	case cards.Six:
		rankChar = '6'
	case cards.Seven:
		rankChar = '7'
	case cards.Eight:
		rankChar = '8'
	case cards.Nine:
		rankChar = '9'
	case cards.Ten:
		rankChar = 'T'
	case cards.Jack:
		rankChar = 'J'
	case cards.Queen:
		rankChar = 'Q'
	case cards.King:
		rankChar = 'K'
	case cards.Ace:
		rankChar = 'A'
	default:
		return zero, fmt.Errorf("invalid rank: %v", c.Rank)
	}

	var suitChar byte
	switch c.Suit {
	case cards.Spades:
		suitChar = 's'
	case cards.Hearts:
		suitChar = 'h'
	case cards.Diamonds:
		suitChar = 'd'
	case cards.Clubs:
		suitChar = 'c'
	default:
		return zero, fmt.Errorf("invalid suit: %v", c.Suit)
	}

	return chehsunliu.NewCard(string([]byte{rankChar, suitChar})), nil
}

func rankFromClass(class int32) Rank {
	switch class {
	case 1:
		return StraightFlush
	case 2:
		return FourOfAKind
	case 3:
		return FullHouse
	case 4:
		return Flush
	case 5:
		return Straight
	case 6:
		return ThreeOfAKind
	case 7:
		return TwoPair
	case 8:
		return Pair
	default:
		return HighCard
	}
}

// Best selects the best 5-card hand available from holeCards plus
// communityCards. Fewer than 5 total cards is a caller error: the
// evaluator requires a full hand to rank.
func Best(holeCards, communityCards []cards.Card) (HandValue, error) {
	all := make([]cards.Card, 0, len(holeCards)+len(communityCards))
	all = append(all, holeCards...)
	all = append(all, communityCards...)

	if len(all) < 5 {
		return HandValue{}, fmt.Errorf("evaluator: need at least 5 cards, got %d", len(all))
	}

	converted := make([]chehsunliu.Card, len(all))
	for i, c := range all {
		cc, err := toChehsunliu(c)
		if err != nil {
			return HandValue{}, fmt.Errorf("evaluator: %w", err)
		}
		converted[i] = cc
	}

	rank := chehsunliu.Evaluate(converted)
	class := chehsunliu.RankClass(rank)

	best, err := bestFiveCombination(all, rank)
	if err != nil {
		return HandValue{}, err
	}

	isRoyal := rankFromClass(class) == StraightFlush && containsBroadwayAce(best)

	rv := rankFromClass(class)
	if isRoyal {
		rv = RoyalFlush
	}

	return HandValue{
		Rank:        rv,
		rankValue:   rank,
		Best:        best,
		Description: chehsunliu.RankString(rank),
	}, nil
}

// containsBroadwayAce reports whether the best-5 straight flush is
// Ace-high, which per SPEC_FULL.md §4.1 is the only straight flush
// classified as a Royal Flush.
func containsBroadwayAce(best []cards.Card) bool {
	hasAce, hasKing := false, false
	for _, c := range best {
		if c.Rank == cards.Ace {
			hasAce = true
		}
		if c.Rank == cards.King {
			hasKing = true
		}
	}
	return hasAce && hasKing
}

func bestFiveCombination(all []cards.Card, targetRank int32) ([]cards.Card, error) {
	if len(all) == 5 {
		return all, nil
	}

	var found []cards.Card
	combinations(all, 5, func(combo []cards.Card) bool {
		converted := make([]chehsunliu.Card, len(combo))
		for i, c := range combo {
			cc, err := toChehsunliu(c)
			if err != nil {
				return true
			}
			converted[i] = cc
		}
		if chehsunliu.Evaluate(converted) == targetRank {
			found = append([]cards.Card{}, combo...)
			return true
		}
		return false
	})

	if found == nil {
		return nil, fmt.Errorf("evaluator: no 5-card combination matched best rank")
	}
	return found, nil
}

// combinations calls visit with every k-combination of items, in
// lexicographic order, stopping early if visit returns true.
func combinations(items []cards.Card, k int, visit func([]cards.Card) bool) {
	n := len(items)
	if k > n || k <= 0 {
		return
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	combo := make([]cards.Card, k)
	for {
		for i, j := range idx {
			combo[i] = items[j]
		}
		if visit(combo) {
			return
		}
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// Compare returns -1 if a is worse than b, 0 on a tie, 1 if a is better.
// chehsunliu's internal rank values are inverted (lower is stronger),
// including its treatment of the wheel straight (A-2-3-4-5), which it
// already ranks below a six-high straight — no separate wheel handling
// is needed here.
func Compare(a, b HandValue) int {
	switch {
	case a.rankValue < b.rankValue:
		return 1
	case a.rankValue > b.rankValue:
		return -1
	default:
		return 0
	}
}

// Winners returns the indices of every hand tied for best among hands.
func Winners(hands []HandValue) []int {
	if len(hands) == 0 {
		return nil
	}
	best := hands[0]
	for _, h := range hands[1:] {
		if Compare(h, best) > 0 {
			best = h
		}
	}
	var winners []int
	for i, h := range hands {
		if Compare(h, best) == 0 {
			winners = append(winners, i)
		}
	}
	return winners
}

// Equity approximates each hand's win probability (plus split share of
// ties) via Monte Carlo trials, given 0-5 known community cards. A
// single hand always has 100% equity. trials defaults to 1000 when <= 0.
func Equity(rng *rand.Rand, holeHands [][]cards.Card, board []cards.Card, trials int) ([]float64, error) {
	if len(holeHands) == 0 {
		return nil, nil
	}
	if len(holeHands) == 1 {
		return []float64{100}, nil
	}
	if trials <= 0 {
		trials = 1000
	}

	known := make([]cards.Card, 0, len(board)+2*len(holeHands))
	known = append(known, board...)
	for _, h := range holeHands {
		known = append(known, h...)
	}

	wins := make([]float64, len(holeHands))
	missing := 5 - len(board)
	if missing < 0 {
		missing = 0
	}

	for t := 0; t < trials; t++ {
		deck := cards.RemovingKnown(rng, known)
		fullBoard := make([]cards.Card, len(board), 5)
		copy(fullBoard, board)
		for i := 0; i < missing; i++ {
			c, ok := deck.Draw()
			if !ok {
				return nil, fmt.Errorf("evaluator: deck exhausted during equity simulation")
			}
			fullBoard = append(fullBoard, c)
		}

		trialHands := make([]HandValue, len(holeHands))
		for i, hole := range holeHands {
			hv, err := Best(hole, fullBoard)
			if err != nil {
				return nil, err
			}
			trialHands[i] = hv
		}

		winners := Winners(trialHands)
		share := 1.0 / float64(len(winners))
		for _, idx := range winners {
			wins[idx] += share
		}
	}

	equity := make([]float64, len(holeHands))
	for i, w := range wins {
		equity[i] = 100 * w / float64(trials)
	}
	return equity, nil
}
