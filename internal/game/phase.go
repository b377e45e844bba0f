package game

import (
	"errors"
	"fmt"

	"github.com/lox/cardwar/internal/deck"
)

// Rejections returned by PlayRound. Neither changes any state.
var (
	ErrNoActiveGame    = errors.New("no active game")
	ErrRoundInProgress = errors.New("round already in progress")
)

// Phase is the engine's position in the game and reveal state machine
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseReady
	PhaseWaitingReveal
	PhaseRevealingPlayer
	PhaseRevealingOpponent
	PhaseShowingOutcome
	PhaseRoundResolved
	PhaseGameOver
)

var phaseNames = [...]string{
	PhaseIdle:              "idle",
	PhaseReady:             "ready",
	PhaseWaitingReveal:     "waiting_reveal",
	PhaseRevealingPlayer:   "revealing_player",
	PhaseRevealingOpponent: "revealing_opponent",
	PhaseShowingOutcome:    "showing_outcome",
	PhaseRoundResolved:     "round_resolved",
	PhaseGameOver:          "game_over",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// InRound reports whether the phase is part of a reveal sequence
func (p Phase) InRound() bool {
	return p >= PhaseWaitingReveal && p <= PhaseShowingOutcome
}

// Side identifies one of the two competitors. SideNone marks a tie or an
// undecided game.
type Side int

const (
	SideNone Side = iota
	SidePlayer
	SideOpponent
)

func (s Side) String() string {
	switch s {
	case SidePlayer:
		return "player"
	case SideOpponent:
		return "opponent"
	default:
		return "none"
	}
}

// Decide returns the side holding the higher card, or SideNone on equal ranks
func Decide(player, opponent deck.Card) Side {
	switch c := deck.Compare(player, opponent); {
	case c > 0:
		return SidePlayer
	case c < 0:
		return SideOpponent
	default:
		return SideNone
	}
}

// Status lines shown to players
const (
	StatusIdle         = "Start a new game to play"
	StatusReady        = "Draw cards to start!"
	StatusDrawing      = "Drawing cards..."
	StatusNextRound    = "Ready for next round!"
	StatusPlayerVictor = "Congratulations! You won!"
	StatusOpponentWins = "Game over! Opponent wins!"
)

func outcomeMessage(winner Side, player, opponent deck.Card) string {
	switch winner {
	case SidePlayer:
		return fmt.Sprintf("You win! %s beats %s", player.Name(), opponent.Name())
	case SideOpponent:
		return fmt.Sprintf("Opponent wins! %s beats %s", opponent.Name(), player.Name())
	default:
		return fmt.Sprintf("Tie! Both played %s", player.Rank.Name())
	}
}

func gameOverMessage(winner Side) string {
	if winner == SidePlayer {
		return StatusPlayerVictor
	}
	return StatusOpponentWins
}
