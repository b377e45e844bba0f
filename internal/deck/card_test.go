package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCards(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Card
		wantErr  bool
	}{
		{
			name:  "face cards",
			input: "AsKsQsJsTs",
			expected: []Card{
				{Suit: Spades, Rank: Ace},
				{Suit: Spades, Rank: King},
				{Suit: Spades, Rank: Queen},
				{Suit: Spades, Rank: Jack},
				{Suit: Spades, Rank: Ten},
			},
		},
		{
			name:  "mixed suits",
			input: "AhKdQcJs9s",
			expected: []Card{
				{Suit: Hearts, Rank: Ace},
				{Suit: Diamonds, Rank: King},
				{Suit: Clubs, Rank: Queen},
				{Suit: Spades, Rank: Jack},
				{Suit: Spades, Rank: Nine},
			},
		},
		{
			name:  "case insensitive with spaces",
			input: "as KH qD jc",
			expected: []Card{
				{Suit: Spades, Rank: Ace},
				{Suit: Hearts, Rank: King},
				{Suit: Diamonds, Rank: Queen},
				{Suit: Clubs, Rank: Jack},
			},
		},
		{
			name:    "invalid rank",
			input:   "XsKs",
			wantErr: true,
		},
		{
			name:    "invalid suit",
			input:   "AsKx",
			wantErr: true,
		},
		{
			name:    "odd length",
			input:   "AsK",
			wantErr: true,
		},
		{
			name:     "empty string",
			input:    "",
			expected: []Card{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCards(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseCards() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestMustParseCardsPanics(t *testing.T) {
	assert.Equal(t, []Card{{Suit: Spades, Rank: Ace}}, MustParseCards("As"))
	assert.Panics(t, func() { MustParseCards("invalid") })
}

func TestCardFormatting(t *testing.T) {
	card := NewCard(Spades, King)
	assert.Equal(t, "K♠", card.String())
	assert.Equal(t, "King of Spades", card.Name())
	assert.Equal(t, 13, card.Value())

	assert.Equal(t, "T♥", NewCard(Hearts, Ten).String())
	assert.Equal(t, "Two of Diamonds", NewCard(Diamonds, Two).Name())
	assert.Equal(t, "?", Rank(1).String())
	assert.Equal(t, "?", Suit(9).String())
}

func TestCardValues(t *testing.T) {
	want := 2
	for rank := Two; rank <= Ace; rank++ {
		assert.Equal(t, want, NewCard(Clubs, rank).Value(), "rank %s", rank)
		want++
	}
	assert.Equal(t, 14, NewCard(Hearts, Ace).Value())
}

func TestCompareIgnoresSuit(t *testing.T) {
	for sa := Hearts; sa <= Spades; sa++ {
		for sb := Hearts; sb <= Spades; sb++ {
			for ra := Two; ra <= Ace; ra++ {
				for rb := Two; rb <= Ace; rb++ {
					a, b := NewCard(sa, ra), NewCard(sb, rb)
					got := Compare(a, b)
					switch {
					case ra > rb && got <= 0:
						t.Fatalf("Compare(%s, %s) = %d, want > 0", a, b, got)
					case ra < rb && got >= 0:
						t.Fatalf("Compare(%s, %s) = %d, want < 0", a, b, got)
					case ra == rb && got != 0:
						t.Fatalf("Compare(%s, %s) = %d, want 0", a, b, got)
					}
				}
			}
		}
	}
}

func TestRedSuits(t *testing.T) {
	assert.True(t, NewCard(Hearts, Ace).IsRed())
	assert.True(t, NewCard(Diamonds, Ace).IsRed())
	assert.False(t, NewCard(Clubs, Ace).IsRed())
	assert.False(t, NewCard(Spades, Ace).IsRed())
}

func TestCodeRoundTrips(t *testing.T) {
	for suit := Hearts; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			card := NewCard(suit, rank)
			parsed, err := ParseCard(card.Code())
			if assert.NoError(t, err, card.Code()) {
				assert.Equal(t, card, parsed)
			}
		}
	}
	assert.Equal(t, "Ks", NewCard(Spades, King).Code())
}
