package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/lox/cardwar/internal/deck"
)

// EventType represents a game event type with type safety
type EventType string

// EventType constants for game domain events
const (
	EventTypeGameStart    EventType = "game_start"
	EventTypeRoundStart   EventType = "round_start"
	EventTypePhaseChange  EventType = "phase_change"
	EventTypeRoundOutcome EventType = "round_outcome"
	EventTypeGameOver     EventType = "game_over"
	EventTypeInterstitial EventType = "interstitial"
	EventTypeRoundReady   EventType = "round_ready"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// GameEvent represents anything the engine announces to observers
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
}

// GameStartEvent is published when StartNewGame resets the engine
type GameStartEvent struct {
	GameID       string
	WinThreshold int
	timestamp    time.Time
}

func (e GameStartEvent) EventType() EventType { return EventTypeGameStart }
func (e GameStartEvent) Timestamp() time.Time { return e.timestamp }

// RoundStartEvent is published once both cards have been drawn
type RoundStartEvent struct {
	GameID    string
	Round     int
	timestamp time.Time
}

func (e RoundStartEvent) EventType() EventType { return EventTypeRoundStart }
func (e RoundStartEvent) Timestamp() time.Time { return e.timestamp }

// PhaseChangeEvent is published on every step of the reveal sequence.
// Cards are nil while still face down.
type PhaseChangeEvent struct {
	GameID       string
	Round        int
	Phase        Phase
	PlayerCard   *deck.Card
	OpponentCard *deck.Card
	Status       string
	timestamp    time.Time
}

func (e PhaseChangeEvent) EventType() EventType { return EventTypePhaseChange }
func (e PhaseChangeEvent) Timestamp() time.Time { return e.timestamp }

// RoundOutcomeEvent is published once per completed round, right after the
// scores have been updated
type RoundOutcomeEvent struct {
	GameID        string
	Round         int
	PlayerCard    deck.Card
	OpponentCard  deck.Card
	Winner        Side
	PlayerScore   int
	OpponentScore int
	Message       string
	timestamp     time.Time
}

func (e RoundOutcomeEvent) EventType() EventType { return EventTypeRoundOutcome }
func (e RoundOutcomeEvent) Timestamp() time.Time { return e.timestamp }

// Tie reports whether neither side won the round
func (e RoundOutcomeEvent) Tie() bool { return e.Winner == SideNone }

// GameOverEvent is published once per game when a side reaches the threshold
type GameOverEvent struct {
	GameID        string
	Round         int
	Winner        Side
	PlayerScore   int
	OpponentScore int
	Message       string
	timestamp     time.Time
}

func (e GameOverEvent) EventType() EventType { return EventTypeGameOver }
func (e GameOverEvent) Timestamp() time.Time { return e.timestamp }

// InterstitialEvent is published when the interstitial presenter is cued
type InterstitialEvent struct {
	GameID    string
	Round     int
	timestamp time.Time
}

func (e InterstitialEvent) EventType() EventType { return EventTypeInterstitial }
func (e InterstitialEvent) Timestamp() time.Time { return e.timestamp }

// RoundReadyEvent is published when the reveal sequence has fully finished
type RoundReadyEvent struct {
	GameID         string
	Round          int
	GameInProgress bool
	timestamp      time.Time
}

func (e RoundReadyEvent) EventType() EventType { return EventTypeRoundReady }
func (e RoundReadyEvent) Timestamp() time.Time { return e.timestamp }

// EventSubscriber can subscribe to game events
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// SubscriberFunc adapts a plain function to EventSubscriber
type SubscriberFunc func(event GameEvent)

// OnEvent calls f(event)
func (f SubscriberFunc) OnEvent(event GameEvent) { f(event) }

// EventBus manages event publishing and subscription
type EventBus interface {
	// Subscribe registers a subscriber and returns a function removing it
	Subscribe(subscriber EventSubscriber) (unsubscribe func())
	Publish(event GameEvent)
}

// SimpleEventBus is an in-memory, synchronous event bus. It is safe for
// concurrent use; subscribers are called in subscription order.
type SimpleEventBus struct {
	mu          sync.RWMutex
	nextID      int
	subscribers []subscription
}

type subscription struct {
	id         int
	subscriber EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() *SimpleEventBus {
	return &SimpleEventBus{}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) func() {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	bus.nextID++
	id := bus.nextID
	bus.subscribers = append(bus.subscribers, subscription{id: id, subscriber: subscriber})

	return func() {
		bus.mu.Lock()
		defer bus.mu.Unlock()
		for i, sub := range bus.subscribers {
			if sub.id == id {
				bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Publish sends an event to all subscribers
func (bus *SimpleEventBus) Publish(event GameEvent) {
	bus.mu.RLock()
	subs := make([]subscription, len(bus.subscribers))
	copy(subs, bus.subscribers)
	bus.mu.RUnlock()

	for _, sub := range subs {
		sub.subscriber.OnEvent(event)
	}
}

// EventFormatter renders events as single log lines
type EventFormatter struct {
	// ShowPhases includes reveal steps, which are noisy in batch output
	ShowPhases bool
}

// Format returns a human readable line for the event, or "" when the event
// is not worth showing
func (ef EventFormatter) Format(event GameEvent) string {
	switch e := event.(type) {
	case GameStartEvent:
		return fmt.Sprintf("New game: first to %d wins", e.WinThreshold)
	case RoundStartEvent:
		return fmt.Sprintf("Round %d", e.Round)
	case PhaseChangeEvent:
		if !ef.ShowPhases {
			return ""
		}
		switch e.Phase {
		case PhaseRevealingPlayer:
			return fmt.Sprintf("You drew %s", e.PlayerCard.Name())
		case PhaseRevealingOpponent:
			return fmt.Sprintf("Opponent drew %s", e.OpponentCard.Name())
		default:
			return e.Status
		}
	case RoundOutcomeEvent:
		return fmt.Sprintf("%s (%d - %d)", e.Message, e.PlayerScore, e.OpponentScore)
	case GameOverEvent:
		return fmt.Sprintf("%s Final score %d - %d after %d rounds", e.Message, e.PlayerScore, e.OpponentScore, e.Round)
	case InterstitialEvent:
		return "Showing interstitial"
	case RoundReadyEvent:
		if !e.GameInProgress {
			return ""
		}
		return StatusNextRound
	default:
		return ""
	}
}
