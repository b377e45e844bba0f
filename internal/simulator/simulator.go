// Package simulator plays many headless games to gather outcome statistics.
package simulator

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/cardwar/internal/deck"
	"github.com/lox/cardwar/internal/game"
	"github.com/lox/cardwar/internal/randutil"
	"github.com/lox/cardwar/internal/statistics"
)

// Config holds configuration for running simulations
type Config struct {
	Games             int
	WinThreshold      int
	InterstitialEvery int
	Workers           int
	Seed              int64
	Timeout           time.Duration // per game
	Logger            *log.Logger
}

// Result aggregates the outcome of a simulation run
type Result struct {
	Seed          int64   `json:"seed"`
	Games         int     `json:"games"`
	PlayerWins    int     `json:"player_wins"`
	OpponentWins  int     `json:"opponent_wins"`
	Rounds        int     `json:"rounds"`
	Ties          int     `json:"ties"`
	Interstitials int     `json:"interstitials"`
	LongestGame   int     `json:"longest_game"`
	ShortestGame  int     `json:"shortest_game"`
	AvgRounds     float64 `json:"avg_rounds"`
	// 95% confidence interval for AvgRounds
	AvgRoundsLow  float64 `json:"avg_rounds_low"`
	AvgRoundsHigh float64 `json:"avg_rounds_high"`
	RoundsStdDev  float64 `json:"rounds_stddev"`
	MedianRounds  float64 `json:"median_rounds"`
	P90Rounds     float64 `json:"p90_rounds"`
	PlayerWinRate float64 `json:"player_win_rate"`
	// Wilson 95% interval for PlayerWinRate
	WinRateLow  float64 `json:"player_win_rate_low"`
	WinRateHigh float64 `json:"player_win_rate_high"`

	lengths statistics.Sample
}

type gameResult struct {
	winner        game.Side
	rounds        int
	ties          int
	interstitials int
}

// Simulator runs headless games with instant reveals
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	if config.WinThreshold <= 0 {
		config.WinThreshold = game.DefaultWinThreshold
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	return &Simulator{config: config}
}

// Run plays all games and returns the aggregate. Game i always uses the same
// derived seed, so results do not depend on worker scheduling.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	if s.config.Games <= 0 {
		return nil, fmt.Errorf("games must be positive, got %d", s.config.Games)
	}

	logger := s.config.Logger.WithPrefix("simulator")
	logger.Info("Starting simulation",
		"games", s.config.Games,
		"workers", s.config.Workers,
		"seed", s.config.Seed,
		"winThreshold", s.config.WinThreshold)

	var (
		mu     sync.Mutex
		result = &Result{Seed: s.config.Seed}
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)

	for i := 0; i < s.config.Games; i++ {
		g.Go(func() error {
			gr, err := s.playGame(ctx, i)
			if err != nil {
				return err
			}
			mu.Lock()
			result.add(gr)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.finalize()
	logger.Info("Simulation complete",
		"games", result.Games,
		"playerWinRate", fmt.Sprintf("%.3f", result.PlayerWinRate),
		"avgRounds", fmt.Sprintf("%.2f", result.AvgRounds))
	return result, nil
}

// playGame runs one game to completion by requesting the next round every
// time the previous one is ready
func (s *Simulator) playGame(ctx context.Context, index int) (gameResult, error) {
	if err := ctx.Err(); err != nil {
		return gameResult{}, err
	}

	seed := randutil.Derive(s.config.Seed, index)
	cfg := game.Config{
		WinThreshold:      s.config.WinThreshold,
		InterstitialEvery: s.config.InterstitialEvery,
	}
	engine := game.NewEngine(deck.NewDeck(randutil.New(seed)), game.WithConfig(cfg))
	defer engine.Close()

	var (
		res  gameResult
		done = make(chan struct{})
		errs = make(chan error, 1)
	)
	engine.Events().Subscribe(game.SubscriberFunc(func(ev game.GameEvent) {
		switch e := ev.(type) {
		case game.RoundOutcomeEvent:
			res.rounds = e.Round
			if e.Tie() {
				res.ties++
			}
		case game.InterstitialEvent:
			res.interstitials++
		case game.GameOverEvent:
			res.winner = e.Winner
		case game.RoundReadyEvent:
			if !e.GameInProgress {
				close(done)
				return
			}
			if _, err := engine.PlayRound(); err != nil {
				select {
				case errs <- fmt.Errorf("game %d round %d: %w", index, e.Round+1, err):
				default:
				}
			}
		}
	}))

	engine.StartNewGame(s.config.WinThreshold)
	if _, err := engine.PlayRound(); err != nil {
		return gameResult{}, fmt.Errorf("game %d: %w", index, err)
	}

	timeout := time.NewTimer(s.config.Timeout)
	defer timeout.Stop()

	select {
	case <-done:
		return res, nil
	case err := <-errs:
		return gameResult{}, err
	case <-timeout.C:
		return gameResult{}, fmt.Errorf("game %d timed out after %v (seed: %d)", index, s.config.Timeout, seed)
	case <-ctx.Done():
		return gameResult{}, ctx.Err()
	}
}

func (r *Result) add(g gameResult) {
	r.Games++
	r.lengths.Add(float64(g.rounds))
	r.Rounds += g.rounds
	r.Ties += g.ties
	r.Interstitials += g.interstitials
	switch g.winner {
	case game.SidePlayer:
		r.PlayerWins++
	case game.SideOpponent:
		r.OpponentWins++
	}
	if g.rounds > r.LongestGame {
		r.LongestGame = g.rounds
	}
	if r.ShortestGame == 0 || g.rounds < r.ShortestGame {
		r.ShortestGame = g.rounds
	}
}

func (r *Result) finalize() {
	if r.Games == 0 {
		return
	}
	r.AvgRounds = r.lengths.Mean()
	r.AvgRoundsLow, r.AvgRoundsHigh = r.lengths.ConfidenceInterval95()
	r.RoundsStdDev = r.lengths.StdDev()
	r.MedianRounds = r.lengths.Median()
	r.P90Rounds = r.lengths.Percentile(0.9)
	r.PlayerWinRate = float64(r.PlayerWins) / float64(r.Games)
	r.WinRateLow, r.WinRateHigh = statistics.ProportionCI95(r.PlayerWins, r.Games)
	r.lengths = statistics.Sample{}
}

// Summary renders the result for terminal output
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"Games: %d  Player: %d (%.1f%%, 95%% CI %.1f-%.1f%%)  Opponent: %d\n"+
			"Rounds: %d  Ties: %d  Avg rounds/game: %.2f (95%% CI %.2f-%.2f, sd %.2f)  Median: %.1f  P90: %.1f  Shortest: %d  Longest: %d\n"+
			"Interstitials: %d  Seed: %d",
		r.Games, r.PlayerWins, r.PlayerWinRate*100, r.WinRateLow*100, r.WinRateHigh*100, r.OpponentWins,
		r.Rounds, r.Ties, r.AvgRounds, r.AvgRoundsLow, r.AvgRoundsHigh, r.RoundsStdDev, r.MedianRounds, r.P90Rounds, r.ShortestGame, r.LongestGame,
		r.Interstitials, r.Seed)
}
