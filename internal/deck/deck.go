package deck

import (
	rand "math/rand/v2"
)

// Size is the number of cards in a standard deck
const Size = NumSuits * NumRanks

// Deck is a standard 52-card deck with a draw cursor. Drawing past the last
// card reshuffles the whole deck, so DrawCard never runs out.
type Deck struct {
	cards [Size]Card
	next  int
	epoch int
	rng   *rand.Rand
}

// NewDeck creates a shuffled deck. A nil rng uses the global source.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}
	d.Initialize()
	d.Shuffle()
	return d
}

// Initialize puts the cards back in canonical (suit, rank) order and resets
// the cursor.
func (d *Deck) Initialize() {
	i := 0
	for suit := Hearts; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards[i] = NewCard(suit, rank)
			i++
		}
	}
	d.next = 0
}

// Shuffle permutes all 52 cards using Fisher-Yates and resets the cursor.
// Undrawn cards from the previous order are discarded.
func (d *Deck) Shuffle() {
	d.next = 0
	d.epoch++
	for i := len(d.cards) - 1; i > 0; i-- {
		var j int
		if d.rng != nil {
			j = d.rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1)
		}
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// DrawCard returns the next card, reshuffling first if the deck is exhausted
func (d *Deck) DrawCard() Card {
	if d.next >= len(d.cards) {
		d.Shuffle()
	}
	card := d.cards[d.next]
	d.next++
	return card
}

// Remaining returns the number of cards left before the next reshuffle
func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}

// Cursor returns the index of the next card to be drawn
func (d *Deck) Cursor() int {
	return d.next
}

// Epoch returns how many times the deck has been shuffled
func (d *Deck) Epoch() int {
	return d.epoch
}
