package game

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/cardwar/internal/gameid"
)

// Default timings and thresholds
const (
	DefaultWinThreshold      = 5
	DefaultRevealDelay       = time.Second
	DefaultOutcomeHold       = 2 * time.Second
	DefaultInterstitialEvery = 3
)

// Config holds the tunable rules and timings of a game
type Config struct {
	// WinThreshold is the number of round wins that ends the game. Used when
	// StartNewGame is called with a non-positive threshold.
	WinThreshold int

	// RevealDelay is how long both cards stay hidden. Each card reveal is
	// then held for half of it.
	RevealDelay time.Duration

	// OutcomeHold is how long the round outcome is shown before the next
	// round becomes playable.
	OutcomeHold time.Duration

	// InterstitialEvery signals the interstitial presenter on every Nth
	// round. Zero disables it.
	InterstitialEvery int
}

// DefaultConfig returns the standard timings: one second reveal, two
// second outcome hold, first to five wins, interstitial every third round.
func DefaultConfig() Config {
	return Config{
		WinThreshold:      DefaultWinThreshold,
		RevealDelay:       DefaultRevealDelay,
		OutcomeHold:       DefaultOutcomeHold,
		InterstitialEvery: DefaultInterstitialEvery,
	}
}

// Validate reports the first invalid setting
func (c Config) Validate() error {
	if c.WinThreshold <= 0 {
		return fmt.Errorf("win threshold must be positive, got %d", c.WinThreshold)
	}
	if c.RevealDelay < 0 {
		return fmt.Errorf("reveal delay must not be negative, got %s", c.RevealDelay)
	}
	if c.OutcomeHold < 0 {
		return fmt.Errorf("outcome hold must not be negative, got %s", c.OutcomeHold)
	}
	if c.InterstitialEvery < 0 {
		return fmt.Errorf("interstitial cadence must not be negative, got %d", c.InterstitialEvery)
	}
	return nil
}

// Option configures an Engine during creation.
type Option func(*Engine)

// WithConfig replaces the default rules and timings
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithClock sets the clock driving the reveal sequence. Tests pass
// quartz.NewMock(t).
func WithClock(clock quartz.Clock) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithLogger sets the logger; the engine logs under the "engine" prefix
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		e.logger = logger.WithPrefix("engine")
	}
}

// WithEventBus publishes engine events on an existing bus
func WithEventBus(bus EventBus) Option {
	return func(e *Engine) {
		e.bus = bus
	}
}

// WithInterstitialPresenter sets the collaborator notified every Nth round
func WithInterstitialPresenter(p InterstitialPresenter) Option {
	return func(e *Engine) {
		e.ads = p
	}
}

// WithGameIDs sets the generator used to label each new game
func WithGameIDs(ids *gameid.Generator) Option {
	return func(e *Engine) {
		e.ids = ids
	}
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}
