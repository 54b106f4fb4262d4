package cards

import "math/rand"

// Deck is the 52-card set, consumed by popping from the front. A fresh
// deck is created and shuffled at the start of every hand.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// NewDeck builds a freshly shuffled 52-card deck using rng.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{
		cards: make([]Card, 0, 52),
		rng:   rng,
	}
	for _, suit := range []Suit{Diamonds, Spades, Clubs, Hearts} {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, Card{Rank: rank, Suit: suit})
		}
	}
	d.Shuffle()
	return d
}

// Shuffle randomizes the remaining cards in place.
func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw removes and returns the top card. ok is false if the deck is empty.
func (d *Deck) Draw() (card Card, ok bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	card = d.cards[0]
	d.cards = d.cards[1:]
	return card, true
}

// Size returns the number of cards remaining.
func (d *Deck) Size() int {
	return len(d.cards)
}

// RemovingKnown builds a fresh 52-card deck excluding the given cards,
// used by the equity approximator to deal out the unknown remainder of
// the board and opponents' hole cards.
func RemovingKnown(rng *rand.Rand, known []Card) *Deck {
	excluded := make(map[Card]struct{}, len(known))
	for _, c := range known {
		excluded[c] = struct{}{}
	}
	d := &Deck{cards: make([]Card, 0, 52), rng: rng}
	for _, suit := range []Suit{Diamonds, Spades, Clubs, Hearts} {
		for rank := Two; rank <= Ace; rank++ {
			c := Card{Rank: rank, Suit: suit}
			if _, skip := excluded[c]; skip {
				continue
			}
			d.cards = append(d.cards, c)
		}
	}
	d.Shuffle()
	return d
}
