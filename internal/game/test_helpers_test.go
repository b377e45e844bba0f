package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/lox/cardwar/internal/deck"
)

// stackedSource deals a fixed sequence of cards, cycling when exhausted.
// Shuffle only counts calls so scripted rounds stay predictable.
type stackedSource struct {
	cards    []deck.Card
	next     int
	shuffles int
}

func newStackedSource(codes string) *stackedSource {
	return &stackedSource{cards: deck.MustParseCards(codes)}
}

func (s *stackedSource) Shuffle() { s.shuffles++ }

func (s *stackedSource) DrawCard() deck.Card {
	c := s.cards[s.next%len(s.cards)]
	s.next++
	return c
}

// eventRecorder captures events for assertions
type eventRecorder struct {
	mu     sync.Mutex
	events []GameEvent
}

func (r *eventRecorder) OnEvent(event GameEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) all() []GameEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]GameEvent, len(r.events))
	copy(out, r.events)
	return out
}

func (r *eventRecorder) types() []EventType {
	var out []EventType
	for _, ev := range r.all() {
		out = append(out, ev.EventType())
	}
	return out
}

func (r *eventRecorder) count(et EventType) int {
	n := 0
	for _, ev := range r.all() {
		if ev.EventType() == et {
			n++
		}
	}
	return n
}

func (r *eventRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// presenterSpy records interstitial cues
type presenterSpy struct {
	mu     sync.Mutex
	rounds []int
}

func (p *presenterSpy) PresentInterstitial(round int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rounds = append(p.rounds, round)
}

func (p *presenterSpy) cued() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int(nil), p.rounds...)
}

type testEngine struct {
	*Engine
	clock    *quartz.Mock
	source   *stackedSource
	recorder *eventRecorder
	ads      *presenterSpy
}

func newTestEngine(t *testing.T, codes string, opts ...Option) *testEngine {
	t.Helper()
	te := &testEngine{
		clock:    quartz.NewMock(t),
		source:   newStackedSource(codes),
		recorder: &eventRecorder{},
		ads:      &presenterSpy{},
	}
	base := []Option{WithClock(te.clock), WithInterstitialPresenter(te.ads)}
	te.Engine = NewEngine(te.source, append(base, opts...)...)
	te.Events().Subscribe(te.recorder)
	t.Cleanup(te.Close)
	return te
}

// step fires the next pending reveal timer and waits for it to finish,
// returning how far the clock moved
func (te *testEngine) step(t *testing.T) time.Duration {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	d, w := te.clock.AdvanceNext()
	w.MustWait(ctx)
	return d
}

// playRound plays a full round through the reveal sequence
func (te *testEngine) playRound(t *testing.T) {
	t.Helper()
	_, err := te.PlayRound()
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		te.step(t)
	}
	require.False(t, te.Snapshot().RoundInProgress)
}
