// Package game implements the round engine for a two-sided game of war.
//
// Each round the player and the opponent draw one card from a shared deck.
// The higher rank wins the round, equal ranks tie, and the first side to reach
// the win threshold wins the game.
//
// # Reveal sequence
//
// Rounds are not resolved instantly. PlayRound draws both cards and then
// walks an explicit state machine driven by an injected quartz.Clock:
//
//	WaitingReveal      both cards hidden          RevealDelay
//	RevealingPlayer    player card visible        RevealDelay / 2
//	RevealingOpponent  opponent card visible      RevealDelay / 2
//	ShowingOutcome     scores updated once        OutcomeHold
//	RoundResolved      next round playable
//
// Scores change exactly once per round, on entry to ShowingOutcome, and the
// game-end check runs immediately afterwards. While a round is in flight
// PlayRound is rejected with ErrRoundInProgress.
//
// # Deterministic Testing
//
// Inject a mock clock and a stacked card source, then step the sequence:
//
//	clock := quartz.NewMock(t)
//	e := game.NewEngine(source, game.WithClock(clock))
//	e.StartNewGame(5)
//	e.PlayRound()
//	_, w := clock.AdvanceNext()
//	w.MustWait(ctx)
//
// Observers subscribe to the EventBus to receive round outcomes, game over
// notifications and interstitial cues.
package game
