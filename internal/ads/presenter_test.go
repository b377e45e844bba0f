package ads

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresenterLoadsThenShows(t *testing.T) {
	clock := quartz.NewMock(t)
	logger := log.New(io.Discard)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p := NewPresenter(clock, logger, 3*time.Second)
	assert.False(t, p.CanShow())

	// Asking before the first load completes is a miss
	p.PresentInterstitial(3)
	assert.Equal(t, Stats{Missed: 1}, p.Stats())

	clock.Advance(3 * time.Second).MustWait(ctx)
	require.True(t, p.CanShow())

	var shownRounds []int
	p.OnShow(func(round int) { shownRounds = append(shownRounds, round) })

	p.PresentInterstitial(6)
	assert.Equal(t, Stats{Shown: 1, Missed: 1}, p.Stats())
	assert.Equal(t, []int{6}, shownRounds)
	assert.False(t, p.CanShow(), "shown interstitial is consumed")

	// A reload was started after showing
	clock.Advance(3 * time.Second).MustWait(ctx)
	assert.True(t, p.CanShow())
}

func TestPresenterDoesNotDoubleLoad(t *testing.T) {
	clock := quartz.NewMock(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p := NewPresenter(clock, log.New(io.Discard), time.Second)

	// Misses while loading must not queue more loads
	p.PresentInterstitial(3)
	p.PresentInterstitial(6)
	assert.Equal(t, Stats{Missed: 2}, p.Stats())

	d, w := clock.AdvanceNext()
	w.MustWait(ctx)
	assert.Equal(t, time.Second, d)
	assert.True(t, p.CanShow())

	// Only one load was pending, so a further second changes nothing
	clock.Advance(time.Second).MustWait(ctx)
	p.PresentInterstitial(9)
	assert.Equal(t, Stats{Shown: 1, Missed: 2}, p.Stats())
}
