package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/cardwar/internal/randutil"
)

func fullSet() map[Card]bool {
	set := make(map[Card]bool, Size)
	for suit := Hearts; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			set[NewCard(suit, rank)] = true
		}
	}
	return set
}

func drawEpoch(t *testing.T, d *Deck) map[Card]bool {
	t.Helper()
	seen := make(map[Card]bool, Size)
	for i := 0; i < Size; i++ {
		card := d.DrawCard()
		require.False(t, seen[card], "card %s drawn twice in one epoch", card)
		seen[card] = true
	}
	return seen
}

func TestInitializeCanonicalOrder(t *testing.T) {
	d := &Deck{}
	d.Initialize()

	assert.Equal(t, 0, d.Cursor())
	assert.Equal(t, NewCard(Hearts, Two), d.DrawCard())
	assert.Equal(t, NewCard(Hearts, Three), d.DrawCard())

	for i := 2; i < NumRanks; i++ {
		d.DrawCard()
	}
	assert.Equal(t, NewCard(Diamonds, Two), d.DrawCard())
}

func TestDrawFullEpochIsCompleteSet(t *testing.T) {
	d := NewDeck(randutil.New(42))

	seen := drawEpoch(t, d)
	assert.Equal(t, fullSet(), seen)
	assert.Equal(t, 0, d.Remaining())
	assert.Equal(t, Size, d.Cursor())
}

func TestDrawPastExhaustionReshuffles(t *testing.T) {
	d := NewDeck(randutil.New(7))
	require.Equal(t, 1, d.Epoch())

	drawEpoch(t, d)

	// The 53rd draw succeeds and is the first card of a new epoch
	seen := map[Card]bool{d.DrawCard(): true}
	assert.Equal(t, 2, d.Epoch())
	assert.Equal(t, 1, d.Cursor())

	// Together with the next 51 draws it covers the full set again
	for i := 1; i < Size; i++ {
		card := d.DrawCard()
		require.False(t, seen[card], "card %s drawn twice in one epoch", card)
		seen[card] = true
		require.Equal(t, 2, d.Epoch())
	}
	assert.Equal(t, fullSet(), seen)
	assert.Equal(t, 0, d.Remaining())

	d.DrawCard()
	assert.Equal(t, 3, d.Epoch())
}

func TestShuffleMidDeckResetsCursor(t *testing.T) {
	d := NewDeck(randutil.New(1))
	for i := 0; i < 20; i++ {
		d.DrawCard()
	}
	require.Equal(t, 32, d.Remaining())

	d.Shuffle()
	assert.Equal(t, 0, d.Cursor())
	assert.Equal(t, Size, d.Remaining())
	assert.Equal(t, fullSet(), drawEpoch(t, d))
}

func TestDeterministicWithSeed(t *testing.T) {
	a := NewDeck(randutil.New(99))
	b := NewDeck(randutil.New(99))
	for i := 0; i < Size*3; i++ {
		require.Equal(t, a.DrawCard(), b.DrawCard(), "draw %d", i)
	}
}

func TestNilRNGFallsBackToGlobalSource(t *testing.T) {
	d := NewDeck(nil)
	assert.Equal(t, fullSet(), drawEpoch(t, d))
}

func TestShuffleIsRoughlyUniform(t *testing.T) {
	// Position of the ace of spades after many shuffles should not cluster
	const trials = 52 * 400
	rng := randutil.New(2024)
	target := NewCard(Spades, Ace)
	var counts [Size]int

	d := NewDeck(rng)
	for i := 0; i < trials; i++ {
		d.Shuffle()
		for pos := 0; pos < Size; pos++ {
			if d.DrawCard() == target {
				counts[pos]++
				break
			}
		}
	}

	expected := trials / Size
	for pos, n := range counts {
		assert.InDelta(t, expected, n, float64(expected)/2, "position %d", pos)
	}
}
