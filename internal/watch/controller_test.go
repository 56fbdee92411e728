package watch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

type countingRecorder struct {
	metrics.NoopRecorder
	triggers atomic.Int32
	dropped  atomic.Int32
}

func (r *countingRecorder) IncRebuildTrigger(string) { r.triggers.Add(1) }
func (r *countingRecorder) IncRebuildDropped()       { r.dropped.Add(1) }

func TestNotifyCoalescesBurst(t *testing.T) {
	var builds atomic.Int32
	c := NewController(func(context.Context, string) error {
		builds.Add(1)
		return nil
	}, 30*time.Millisecond)
	defer c.Stop()

	require.Equal(t, StateIdle, c.State())
	for range 5 {
		c.Notify("content/a.md")
		time.Sleep(5 * time.Millisecond)
	}
	require.Equal(t, StateDebouncing, c.State())

	require.Eventually(t, func() bool { return builds.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(80 * time.Millisecond)
	require.Equal(t, int32(1), builds.Load())
	require.Equal(t, StateIdle, c.State())
}

func TestExpiredTimerSupersededByNotify(t *testing.T) {
	var builds atomic.Int32
	c := NewController(func(context.Context, string) error {
		builds.Add(1)
		return nil
	}, 50*time.Millisecond)
	defer c.Stop()

	// Hold the lock past the first deadline, then re-arm the window the way
	// Notify does before the expired timer can run.
	c.Notify("content/a.md")
	c.mu.Lock()
	time.Sleep(70 * time.Millisecond)
	c.timer.Stop()
	c.gen++
	gen := c.gen
	c.timer = time.AfterFunc(150*time.Millisecond, func() { c.fire(gen) })
	c.mu.Unlock()

	time.Sleep(60 * time.Millisecond)
	require.Equal(t, int32(0), builds.Load())
	require.Equal(t, StateDebouncing, c.State())

	require.Eventually(t, func() bool { return builds.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, int32(1), builds.Load())
	require.Equal(t, StateIdle, c.State())
}

func TestStaleFireIgnored(t *testing.T) {
	var builds atomic.Int32
	c := NewController(func(context.Context, string) error {
		builds.Add(1)
		return nil
	}, time.Hour)
	defer c.Stop()

	c.Notify("content/a.md")
	c.Notify("content/b.md")
	c.fire(1)
	require.Equal(t, int32(0), builds.Load())
	require.Equal(t, StateDebouncing, c.State())

	c.fire(2)
	require.Equal(t, int32(1), builds.Load())
	require.Equal(t, StateIdle, c.State())
}

func TestFireDroppedWhileBuilding(t *testing.T) {
	rec := &countingRecorder{}
	release := make(chan struct{})
	var builds atomic.Int32
	c := NewController(func(context.Context, string) error {
		builds.Add(1)
		<-release
		return nil
	}, 10*time.Millisecond, WithRecorder(rec))
	defer c.Stop()

	done := make(chan bool)
	go func() { done <- c.Trigger(context.Background(), SourceInitial) }()
	require.Eventually(t, func() bool { return c.State() == StateBuilding }, time.Second, time.Millisecond)

	c.Notify("templates/index.html")
	require.Eventually(t, func() bool { return rec.dropped.Load() == 1 }, time.Second, 5*time.Millisecond)

	close(release)
	require.True(t, <-done)
	require.Equal(t, int32(1), builds.Load())
	require.Equal(t, int32(1), rec.triggers.Load())
	require.Equal(t, StateIdle, c.State())
}

func TestTriggerReportsBuildErrorsWithoutPanicking(t *testing.T) {
	c := NewController(func(context.Context, string) error {
		return errors.New("boom")
	}, time.Second)
	require.True(t, c.Trigger(context.Background(), SourceSchedule))
	require.Equal(t, StateIdle, c.State())
}

func TestStopCancelsPendingTimer(t *testing.T) {
	var builds atomic.Int32
	c := NewController(func(context.Context, string) error {
		builds.Add(1)
		return nil
	}, 20*time.Millisecond)

	c.Notify("content/a.md")
	c.Stop()
	require.Equal(t, StateIdle, c.State())
	time.Sleep(60 * time.Millisecond)
	require.Zero(t, builds.Load())

	c.Notify("content/b.md")
	require.Equal(t, StateIdle, c.State())
}

func TestNewControllerDefaultsDebounce(t *testing.T) {
	c := NewController(func(context.Context, string) error { return nil }, 0)
	require.Equal(t, DefaultDebounce, c.debounce)
}

func TestStateString(t *testing.T) {
	require.Equal(t, "idle", StateIdle.String())
	require.Equal(t, "debouncing", StateDebouncing.String())
	require.Equal(t, "building", StateBuilding.String())
}
