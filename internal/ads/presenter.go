// Package ads stands in for the interstitial ad collaborator. It only models
// whether an interstitial is loaded and ready to show; no ad network is
// contacted.
package ads

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// DefaultLoadDelay is how long a simulated interstitial takes to load
const DefaultLoadDelay = 3 * time.Second

// Stats counts presentation requests
type Stats struct {
	Shown  int
	Missed int
}

// Presenter loads interstitials in the background and shows one whenever
// the engine asks and one is ready. Requests that arrive while nothing is
// loaded are counted as missed and trigger a reload.
type Presenter struct {
	mu        sync.Mutex
	clock     quartz.Clock
	logger    *log.Logger
	loadDelay time.Duration
	ready     bool
	loading   bool
	stats     Stats
	onShow    func(round int)
}

// NewPresenter creates a presenter and starts loading the first interstitial
func NewPresenter(clock quartz.Clock, logger *log.Logger, loadDelay time.Duration) *Presenter {
	p := &Presenter{
		clock:     clock,
		logger:    logger.WithPrefix("ads"),
		loadDelay: loadDelay,
	}
	p.Load()
	return p
}

// OnShow registers a callback invoked whenever an interstitial is shown
func (p *Presenter) OnShow(fn func(round int)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onShow = fn
}

// Load starts loading an interstitial unless one is ready or loading
func (p *Presenter) Load() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ready || p.loading {
		return
	}
	p.loading = true
	p.clock.AfterFunc(p.loadDelay, func() {
		p.mu.Lock()
		p.loading = false
		p.ready = true
		p.mu.Unlock()
		p.logger.Debug("Interstitial loaded")
	}, "ads", "load")
}

// CanShow reports whether an interstitial is loaded
func (p *Presenter) CanShow() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

// PresentInterstitial shows the loaded interstitial, or records a miss
func (p *Presenter) PresentInterstitial(round int) {
	p.mu.Lock()
	shown := p.ready
	if shown {
		p.ready = false
		p.stats.Shown++
	} else {
		p.stats.Missed++
	}
	onShow := p.onShow
	p.mu.Unlock()

	if shown {
		p.logger.Info("Showing interstitial", "round", round)
		if onShow != nil {
			onShow(round)
		}
	} else {
		p.logger.Info("Interstitial not ready yet", "round", round)
	}
	p.Load()
}

// Stats returns how many interstitials were shown and missed
func (p *Presenter) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}
