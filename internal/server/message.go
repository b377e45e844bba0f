package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lox/cardwar/internal/deck"
	"github.com/lox/cardwar/internal/game"
)

// MessageType identifies a WebSocket message
type MessageType string

// Client → Server
const (
	MessageTypeNewGame   MessageType = "new_game"
	MessageTypePlayRound MessageType = "play_round"
	MessageTypeGetState  MessageType = "get_state"
)

// Server → Client. Engine events reuse their event type names.
const (
	MessageTypeGameStart    = MessageType(game.EventTypeGameStart)
	MessageTypeRoundStart   = MessageType(game.EventTypeRoundStart)
	MessageTypePhaseChange  = MessageType(game.EventTypePhaseChange)
	MessageTypeRoundOutcome = MessageType(game.EventTypeRoundOutcome)
	MessageTypeGameOver     = MessageType(game.EventTypeGameOver)
	MessageTypeInterstitial = MessageType(game.EventTypeInterstitial)
	MessageTypeRoundReady   = MessageType(game.EventTypeRoundReady)

	MessageTypeState MessageType = "state"
	MessageTypeError MessageType = "error"
)

// Error codes sent in ErrorData
const (
	ErrCodeNoActiveGame    = "no_active_game"
	ErrCodeRoundInProgress = "round_in_progress"
	ErrCodeInvalidMessage  = "invalid_message"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	return newMessageAt(messageType, data, time.Now())
}

func newMessageAt(messageType MessageType, data any, ts time.Time) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: ts,
	}, nil
}

// Client → Server payloads

type NewGameData struct {
	WinThreshold int `json:"winThreshold,omitempty"`
}

// Server → Client payloads

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type StateData struct {
	GameID          string `json:"gameId,omitempty"`
	Phase           string `json:"phase"`
	WinThreshold    int    `json:"winThreshold"`
	PlayerScore     int    `json:"playerScore"`
	OpponentScore   int    `json:"opponentScore"`
	Round           int    `json:"round"`
	GameInProgress  bool   `json:"gameInProgress"`
	RoundInProgress bool   `json:"roundInProgress"`
	PlayerCard      string `json:"playerCard,omitempty"`
	OpponentCard    string `json:"opponentCard,omitempty"`
	Winner          string `json:"winner,omitempty"`
	Status          string `json:"status"`
}

type GameStartData struct {
	GameID       string `json:"gameId"`
	WinThreshold int    `json:"winThreshold"`
}

type RoundStartData struct {
	GameID string `json:"gameId"`
	Round  int    `json:"round"`
}

type PhaseChangeData struct {
	GameID       string `json:"gameId"`
	Round        int    `json:"round"`
	Phase        string `json:"phase"`
	PlayerCard   string `json:"playerCard,omitempty"`
	OpponentCard string `json:"opponentCard,omitempty"`
	Status       string `json:"status"`
}

type RoundOutcomeData struct {
	GameID        string `json:"gameId"`
	Round         int    `json:"round"`
	PlayerCard    string `json:"playerCard"`
	OpponentCard  string `json:"opponentCard"`
	Winner        string `json:"winner"`
	PlayerScore   int    `json:"playerScore"`
	OpponentScore int    `json:"opponentScore"`
	Message       string `json:"message"`
}

type GameOverData struct {
	GameID        string `json:"gameId"`
	Round         int    `json:"round"`
	Winner        string `json:"winner"`
	PlayerScore   int    `json:"playerScore"`
	OpponentScore int    `json:"opponentScore"`
	Message       string `json:"message"`
}

type InterstitialData struct {
	GameID string `json:"gameId"`
	Round  int    `json:"round"`
}

type RoundReadyData struct {
	GameID         string `json:"gameId"`
	Round          int    `json:"round"`
	GameInProgress bool   `json:"gameInProgress"`
}

func cardCode(c *deck.Card) string {
	if c == nil {
		return ""
	}
	return c.Code()
}

func winnerName(s game.Side) string {
	if s == game.SideNone {
		return ""
	}
	return s.String()
}

// StateDataFromSnapshot converts an engine snapshot for the wire
func StateDataFromSnapshot(s game.Snapshot) StateData {
	return StateData{
		GameID:          s.GameID,
		Phase:           s.Phase.String(),
		WinThreshold:    s.WinThreshold,
		PlayerScore:     s.PlayerScore,
		OpponentScore:   s.OpponentScore,
		Round:           s.Round,
		GameInProgress:  s.GameInProgress,
		RoundInProgress: s.RoundInProgress,
		PlayerCard:      cardCode(s.PlayerCard),
		OpponentCard:    cardCode(s.OpponentCard),
		Winner:          winnerName(s.Winner),
		Status:          s.Status,
	}
}

// MessageFromEvent converts an engine event into its wire message
func MessageFromEvent(event game.GameEvent) (*Message, error) {
	var data any
	switch e := event.(type) {
	case game.GameStartEvent:
		data = GameStartData{GameID: e.GameID, WinThreshold: e.WinThreshold}
	case game.RoundStartEvent:
		data = RoundStartData{GameID: e.GameID, Round: e.Round}
	case game.PhaseChangeEvent:
		data = PhaseChangeData{
			GameID:       e.GameID,
			Round:        e.Round,
			Phase:        e.Phase.String(),
			PlayerCard:   cardCode(e.PlayerCard),
			OpponentCard: cardCode(e.OpponentCard),
			Status:       e.Status,
		}
	case game.RoundOutcomeEvent:
		winner := e.Winner.String()
		if e.Tie() {
			winner = "tie"
		}
		data = RoundOutcomeData{
			GameID:        e.GameID,
			Round:         e.Round,
			PlayerCard:    e.PlayerCard.Code(),
			OpponentCard:  e.OpponentCard.Code(),
			Winner:        winner,
			PlayerScore:   e.PlayerScore,
			OpponentScore: e.OpponentScore,
			Message:       e.Message,
		}
	case game.GameOverEvent:
		data = GameOverData{
			GameID:        e.GameID,
			Round:         e.Round,
			Winner:        e.Winner.String(),
			PlayerScore:   e.PlayerScore,
			OpponentScore: e.OpponentScore,
			Message:       e.Message,
		}
	case game.InterstitialEvent:
		data = InterstitialData{GameID: e.GameID, Round: e.Round}
	case game.RoundReadyEvent:
		data = RoundReadyData{GameID: e.GameID, Round: e.Round, GameInProgress: e.GameInProgress}
	default:
		return nil, fmt.Errorf("unsupported event type %s", event.EventType())
	}
	return newMessageAt(MessageType(event.EventType()), data, event.Timestamp())
}
