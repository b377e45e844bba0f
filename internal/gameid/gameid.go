// Package gameid generates sortable identifiers for games.
//
// IDs are UUIDv7 values encoded as 26 lowercase characters of Crockford's
// base32, so they sort by creation time and are safe to put in logs and URLs.
package gameid

import (
	"encoding/base32"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Length is the number of characters in an encoded ID
const Length = 26

// Crockford's base32, lowercase
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

var encoding = base32.NewEncoding(alphabet).WithPadding(base32.NoPadding)

// Generator creates game IDs, optionally from a fixed entropy source
type Generator struct {
	entropy io.Reader
}

// NewGenerator returns a generator reading its random bits from entropy.
// A nil reader uses crypto/rand.
func NewGenerator(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new game ID using crypto/rand
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate creates a new game ID
func (g *Generator) Generate() string {
	var (
		id  uuid.UUID
		err error
	)
	if g.entropy != nil {
		id, err = uuid.NewV7FromReader(g.entropy)
	} else {
		id, err = uuid.NewV7()
	}
	if err != nil {
		panic("failed to generate game id: " + err.Error())
	}
	return Encode(id)
}

// Encode renders a UUID in the game ID alphabet
func Encode(id uuid.UUID) string {
	return encoding.EncodeToString(id[:])
}

// Validate checks if a game ID is well formed
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("game ID must be exactly %d characters, got %d", Length, len(id))
	}
	for i, char := range id {
		if !strings.ContainsRune(alphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}
	if _, err := encoding.DecodeString(id); err != nil {
		return fmt.Errorf("game ID does not decode: %w", err)
	}
	return nil
}
