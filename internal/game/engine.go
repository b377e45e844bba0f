package game

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/cardwar/internal/deck"
	"github.com/lox/cardwar/internal/gameid"
)

// CardSource supplies cards to the engine. *deck.Deck satisfies it.
type CardSource interface {
	Shuffle()
	DrawCard() deck.Card
}

// InterstitialPresenter is told when an interstitial should be shown. The
// call is fire-and-forget; the engine never waits on or inspects the result.
type InterstitialPresenter interface {
	PresentInterstitial(round int)
}

// Snapshot is a read-only view of the engine state
type Snapshot struct {
	GameID          string
	Phase           Phase
	WinThreshold    int
	PlayerScore     int
	OpponentScore   int
	Round           int
	GameInProgress  bool
	RoundInProgress bool
	// Cards are nil while face down or before the first round
	PlayerCard   *deck.Card
	OpponentCard *deck.Card
	Winner       Side
	Status       string
}

// Engine runs one game of war at a time. All methods are safe for
// concurrent use; reveal steps run on clock callbacks. Events reach
// subscribers in the order the state changes that produced them happened,
// whichever goroutine made the change.
type Engine struct {
	mu     sync.Mutex
	out    outbox
	source CardSource
	cfg    Config
	clock  quartz.Clock
	logger *log.Logger
	bus    EventBus
	ads    InterstitialPresenter
	ids    *gameid.Generator

	gameID          string
	phase           Phase
	winThreshold    int
	playerScore     int
	opponentScore   int
	round           int
	gameInProgress  bool
	roundInProgress bool
	playerCard      deck.Card
	opponentCard    deck.Card
	dealt           bool
	winner          Side
	status          string

	// generation invalidates reveal steps scheduled before a reset
	generation uint64
	pending    *quartz.Timer
}

// NewEngine creates an engine drawing from source.
//
// Example usage:
//
//	d := deck.NewDeck(randutil.New(42))
//	e := game.NewEngine(d,
//	    game.WithLogger(logger),
//	    game.WithInterstitialPresenter(presenter))
//	e.StartNewGame(5)
//	e.PlayRound()
func NewEngine(source CardSource, opts ...Option) *Engine {
	if source == nil {
		panic("card source is required")
	}

	e := &Engine{
		source: source,
		cfg:    DefaultConfig(),
		clock:  quartz.NewReal(),
		logger: discardLogger(),
		phase:  PhaseIdle,
		status: StatusIdle,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.bus == nil {
		e.bus = NewEventBus()
	}
	if e.ids == nil {
		e.ids = gameid.NewGenerator(nil)
	}
	return e
}

// Events returns the bus the engine publishes on
func (e *Engine) Events() EventBus {
	return e.bus
}

// Config returns the engine's rules and timings
func (e *Engine) Config() Config {
	return e.cfg
}

// StartNewGame resets scores and the round counter, reshuffles the deck and
// starts a game to winThreshold wins. A non-positive threshold uses the
// configured default. A reveal in flight is cancelled.
func (e *Engine) StartNewGame(winThreshold int) string {
	if winThreshold <= 0 {
		winThreshold = e.cfg.WinThreshold
	}

	e.mu.Lock()
	e.cancelPendingLocked()

	e.gameID = e.ids.Generate()
	e.winThreshold = winThreshold
	e.playerScore = 0
	e.opponentScore = 0
	e.round = 0
	e.source.Shuffle()
	e.gameInProgress = true
	e.roundInProgress = false
	e.dealt = false
	e.winner = SideNone
	e.phase = PhaseReady
	e.status = StatusReady

	e.enqueueLocked(GameStartEvent{GameID: e.gameID, WinThreshold: winThreshold, timestamp: e.clock.Now()})
	id := e.gameID
	e.mu.Unlock()

	e.logger.Info("Starting new game", "game", id, "winThreshold", winThreshold)
	e.flush()
	return id
}

// PlayRound draws a card for each side and starts the reveal sequence. It
// returns the new round number, or ErrNoActiveGame / ErrRoundInProgress
// without touching any state.
func (e *Engine) PlayRound() (int, error) {
	e.mu.Lock()
	if !e.gameInProgress {
		e.mu.Unlock()
		e.logger.Debug("Ignoring round request", "reason", ErrNoActiveGame)
		return 0, ErrNoActiveGame
	}
	if e.roundInProgress {
		e.mu.Unlock()
		e.logger.Debug("Ignoring round request", "reason", ErrRoundInProgress)
		return 0, ErrRoundInProgress
	}

	e.roundInProgress = true
	e.round++
	e.playerCard = e.source.DrawCard()
	e.opponentCard = e.source.DrawCard()
	e.dealt = true
	e.phase = PhaseWaitingReveal
	e.status = StatusDrawing

	gen := e.generation
	round := e.round
	id := e.gameID
	now := e.clock.Now()
	events := []GameEvent{
		RoundStartEvent{GameID: id, Round: round, timestamp: now},
		e.phaseEventLocked(now),
	}
	interstitial := e.cfg.InterstitialEvery > 0 && round%e.cfg.InterstitialEvery == 0
	if interstitial {
		events = append(events, InterstitialEvent{GameID: id, Round: round, timestamp: now})
	}
	e.enqueueLocked(events...)
	e.mu.Unlock()

	e.logger.Debug("Round started", "game", id, "round", round)
	e.flush()
	if interstitial && e.ads != nil {
		e.ads.PresentInterstitial(round)
	}
	e.scheduleNext(gen, e.cfg.RevealDelay)
	return round, nil
}

// Snapshot returns the current state for observers
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Snapshot{
		GameID:          e.gameID,
		Phase:           e.phase,
		WinThreshold:    e.winThreshold,
		PlayerScore:     e.playerScore,
		OpponentScore:   e.opponentScore,
		Round:           e.round,
		GameInProgress:  e.gameInProgress,
		RoundInProgress: e.roundInProgress,
		Winner:          e.winner,
		Status:          e.status,
	}
	s.PlayerCard, s.OpponentCard = e.visibleCardsLocked()
	return s
}

// Close cancels any pending reveal step. The engine must not be used after.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelPendingLocked()
}

func (e *Engine) cancelPendingLocked() {
	e.generation++
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
}

// scheduleNext arms the timer for the next reveal step unless the engine has
// been reset since gen was captured.
func (e *Engine) scheduleNext(gen uint64, d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation {
		return
	}
	e.pending = e.clock.AfterFunc(d, func() { e.advance(gen) }, "engine", "reveal")
}

// advance moves the reveal sequence one step forward
func (e *Engine) advance(gen uint64) {
	e.mu.Lock()
	if gen != e.generation || !e.roundInProgress {
		e.mu.Unlock()
		return
	}
	e.pending = nil

	now := e.clock.Now()
	var (
		events []GameEvent
		next   time.Duration
		done   bool
	)

	switch e.phase {
	case PhaseWaitingReveal:
		e.phase = PhaseRevealingPlayer
		events = append(events, e.phaseEventLocked(now))
		next = e.cfg.RevealDelay / 2

	case PhaseRevealingPlayer:
		e.phase = PhaseRevealingOpponent
		events = append(events, e.phaseEventLocked(now))
		next = e.cfg.RevealDelay / 2

	case PhaseRevealingOpponent:
		events = e.resolveLocked(now)
		next = e.cfg.OutcomeHold

	case PhaseShowingOutcome, PhaseGameOver:
		e.roundInProgress = false
		if e.phase == PhaseShowingOutcome {
			e.phase = PhaseRoundResolved
			e.status = StatusNextRound
		}
		events = append(events, RoundReadyEvent{
			GameID:         e.gameID,
			Round:          e.round,
			GameInProgress: e.gameInProgress,
			timestamp:      now,
		})
		done = true

	default:
		e.logger.Warn("Reveal step in unexpected phase", "phase", e.phase)
		e.mu.Unlock()
		return
	}
	e.enqueueLocked(events...)
	e.mu.Unlock()

	e.flush()
	if !done {
		e.scheduleNext(gen, next)
	}
}

// resolveLocked compares the cards, applies the single score mutation of the
// round and runs the game-end check.
func (e *Engine) resolveLocked(now time.Time) []GameEvent {
	winner := Decide(e.playerCard, e.opponentCard)
	switch winner {
	case SidePlayer:
		e.playerScore++
	case SideOpponent:
		e.opponentScore++
	}

	msg := outcomeMessage(winner, e.playerCard, e.opponentCard)
	e.phase = PhaseShowingOutcome
	e.status = msg

	events := []GameEvent{
		e.phaseEventLocked(now),
		RoundOutcomeEvent{
			GameID:        e.gameID,
			Round:         e.round,
			PlayerCard:    e.playerCard,
			OpponentCard:  e.opponentCard,
			Winner:        winner,
			PlayerScore:   e.playerScore,
			OpponentScore: e.opponentScore,
			Message:       msg,
			timestamp:     now,
		},
	}

	e.logger.Debug("Round resolved",
		"game", e.gameID,
		"round", e.round,
		"player", e.playerCard,
		"opponent", e.opponentCard,
		"winner", winner)

	var gameWinner Side
	if e.playerScore >= e.winThreshold {
		gameWinner = SidePlayer
	} else if e.opponentScore >= e.winThreshold {
		gameWinner = SideOpponent
	}
	if gameWinner == SideNone {
		return events
	}

	e.gameInProgress = false
	e.winner = gameWinner
	e.phase = PhaseGameOver
	e.status = gameOverMessage(gameWinner)

	e.logger.Info("Game over",
		"game", e.gameID,
		"winner", gameWinner,
		"player", e.playerScore,
		"opponent", e.opponentScore,
		"rounds", e.round)

	return append(events, GameOverEvent{
		GameID:        e.gameID,
		Round:         e.round,
		Winner:        gameWinner,
		PlayerScore:   e.playerScore,
		OpponentScore: e.opponentScore,
		Message:       e.status,
		timestamp:     now,
	})
}

func (e *Engine) phaseEventLocked(now time.Time) PhaseChangeEvent {
	player, opponent := e.visibleCardsLocked()
	return PhaseChangeEvent{
		GameID:       e.gameID,
		Round:        e.round,
		Phase:        e.phase,
		PlayerCard:   player,
		OpponentCard: opponent,
		Status:       e.status,
		timestamp:    now,
	}
}

func (e *Engine) visibleCardsLocked() (player, opponent *deck.Card) {
	if !e.dealt {
		return nil, nil
	}
	switch e.phase {
	case PhaseWaitingReveal:
		return nil, nil
	case PhaseRevealingPlayer:
		p := e.playerCard
		return &p, nil
	default:
		p, o := e.playerCard, e.opponentCard
		return &p, &o
	}
}

// outbox holds events awaiting delivery. One goroutine at a time drains it;
// events queued meanwhile, by other goroutines or by subscribers calling back
// into the engine, are delivered by that same drain in queue order.
type outbox struct {
	mu       sync.Mutex
	queue    []GameEvent
	draining bool
}

// enqueueLocked must be called with e.mu held so queue order matches the
// order of state changes.
func (e *Engine) enqueueLocked(events ...GameEvent) {
	e.out.mu.Lock()
	e.out.queue = append(e.out.queue, events...)
	e.out.mu.Unlock()
}

// flush publishes queued events unless another caller is already doing so
func (e *Engine) flush() {
	e.out.mu.Lock()
	if e.out.draining {
		e.out.mu.Unlock()
		return
	}
	e.out.draining = true
	e.out.mu.Unlock()

	for {
		e.out.mu.Lock()
		if len(e.out.queue) == 0 {
			e.out.draining = false
			e.out.mu.Unlock()
			return
		}
		ev := e.out.queue[0]
		e.out.queue[0] = nil
		e.out.queue = e.out.queue[1:]
		e.out.mu.Unlock()

		e.bus.Publish(ev)
	}
}
