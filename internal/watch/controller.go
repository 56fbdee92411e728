package watch

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 3 * time.Second

// Rebuild trigger sources reported to the metrics recorder.
const (
	SourceInitial  = "initial"
	SourceChange   = "change"
	SourceSchedule = "schedule"
)

// State is the controller's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateDebouncing
	StateBuilding
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDebouncing:
		return "debouncing"
	case StateBuilding:
		return "building"
	default:
		return "unknown"
	}
}

// BuildFunc performs one rebuild. source is one of the Source constants.
type BuildFunc func(ctx context.Context, source string) error

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *Controller) { c.recorder = metrics.OrNoop(r) }
}

// WithRebuildInterval enables periodic rebuilds while Run is active.
func WithRebuildInterval(d time.Duration) Option {
	return func(c *Controller) { c.interval = d }
}

// Controller debounces change notifications and runs builds single-flight.
type Controller struct {
	build    BuildFunc
	debounce time.Duration
	interval time.Duration
	logger   *slog.Logger
	recorder metrics.Recorder

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	ctx     context.Context
	stopped bool

	buildMu  sync.Mutex
	building atomic.Bool
}

// NewController returns an idle controller. A non-positive debounce falls
// back to DefaultDebounce.
func NewController(build BuildFunc, debounce time.Duration, opts ...Option) *Controller {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	c := &Controller{
		build:    build,
		debounce: debounce,
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State reports the current state. Building wins over a pending timer.
func (c *Controller) State() State {
	if c.building.Load() {
		return StateBuilding
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		return StateDebouncing
	}
	return StateIdle
}

// Notify records a change to path and (re)arms the debounce timer.
func (c *Controller) Notify(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.gen++
	gen := c.gen
	c.timer = time.AfterFunc(c.debounce, func() { c.fire(gen) })
	c.logger.Debug("Rebuild scheduled", logfields.Path(path), logfields.State(StateDebouncing.String()))
}

func (c *Controller) fire(gen uint64) {
	c.mu.Lock()
	// A newer Notify restarted the window; its own timer will fire.
	if gen != c.gen || c.stopped {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	ctx := c.ctx
	c.mu.Unlock()
	c.Trigger(ctx, SourceChange)
}

// Trigger runs a build now unless one is already running, in which case
// the request is dropped. It reports whether a build ran.
func (c *Controller) Trigger(ctx context.Context, source string) bool {
	if !c.buildMu.TryLock() {
		c.recorder.IncRebuildDropped()
		c.logger.Info("Rebuild already in progress, dropping trigger", slog.String("source", source))
		return false
	}
	defer c.buildMu.Unlock()

	c.building.Store(true)
	defer c.building.Store(false)

	c.recorder.IncRebuildTrigger(source)
	c.logger.Info("Rebuilding site", slog.String("source", source), logfields.State(StateBuilding.String()))
	start := time.Now()
	if err := c.build(ctx, source); err != nil {
		c.logger.Error("Rebuild failed", slog.String("source", source), logfields.Error(err))
		return true
	}
	c.logger.Info("Rebuild complete", slog.String("source", source), logfields.Duration(time.Since(start)))
	return true
}

// Stop cancels any pending timer. Later notifications are ignored.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) setContext(ctx context.Context) {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()
}
