package site

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitebuilder/internal/assets"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/content"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/pagination"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
)

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the base logger. Each build adds its build id.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) { b.recorder = metrics.OrNoop(r) }
}

// WithClock overrides the time source used for reports and the feed.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// Builder builds the site described by one Settings value.
type Builder struct {
	settings *config.Settings
	engine   *markdown.Engine
	logger   *slog.Logger
	recorder metrics.Recorder
	now      func() time.Time
	stages   []StageDef
}

// NewBuilder creates a Builder. settings must be validated.
func NewBuilder(settings *config.Settings, opts ...Option) *Builder {
	b := &Builder{
		settings: settings,
		engine:   markdown.New(markdown.DefaultOptions()),
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
		now:      time.Now,
		stages:   defaultStages(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Settings returns the settings the builder was created with.
func (b *Builder) Settings() *config.Settings {
	return b.settings
}

// buildState carries everything one build shares between stages.
type buildState struct {
	settings *config.Settings
	engine   *markdown.Engine
	logger   *slog.Logger
	recorder metrics.Recorder
	report   *Report
	now      time.Time

	parser   *content.Parser
	renderer *render.Renderer
	rewriter *assets.Rewriter
	site     map[string]any
	feedLoc  *time.Location

	docs      []*content.RawDocument
	conflicts map[string]bool
	posts     []*content.Post
	pages     []pagination.Page

	aboutDone chan error
	aboutOnce sync.Once
	aboutErr  error
}

// Build runs every stage once and returns the report. The report is
// returned even when the build fails.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	start := b.now()
	report := newReport(uuid.NewString(), start)
	logger := b.logger.With(logfields.BuildID(report.BuildID))

	bs, err := b.newState(logger, report, start)
	if err != nil {
		return b.finish(report, logger, err)
	}

	err = runStages(ctx, bs, b.stages)
	if aboutErr := bs.waitAbout(); err == nil && aboutErr != nil {
		err = &StageError{Stage: StageAbout, Result: StageResultFatal, Err: aboutErr}
	}

	report.SourceRevision = sourceRevision(b.settings.Site.ContentDir)
	return b.finish(report, logger, err)
}

func (b *Builder) newState(logger *slog.Logger, report *Report, now time.Time) (*buildState, error) {
	s := b.settings
	encoder, err := render.NewEncoder(s.Site.Charset)
	if err != nil {
		return nil, errors.ConfigError("unsupported charset").WithCause(err).WithContext("charset", s.Site.Charset).Build()
	}
	loc, err := time.LoadLocation(s.Build.FeedTimezone)
	if err != nil {
		return nil, errors.ConfigError("unknown feed time zone").WithCause(err).WithContext("feed_timezone", s.Build.FeedTimezone).Build()
	}

	return &buildState{
		settings: s,
		engine:   b.engine,
		logger:   logger,
		recorder: b.recorder,
		report:   report,
		now:      now,
		parser:   content.NewParser(b.engine, s.Site.WebRoot, logger),
		renderer: render.New(s.Site.TemplateDir, s.Site.OutputDir, encoder, logger),
		rewriter: assets.NewRewriter(s.Site.OutputDir, s.Site.WebRoot, logger, b.recorder),
		site:     render.SiteData(s),
		feedLoc:  loc,
	}, nil
}

func (b *Builder) finish(report *Report, logger *slog.Logger, err error) (*Report, error) {
	report.End = b.now()

	switch {
	case err == nil:
		report.Outcome = metrics.OutcomeSuccess
	case stdErrors.Is(err, context.Canceled) || stdErrors.Is(err, context.DeadlineExceeded):
		report.Outcome = metrics.OutcomeCanceled
	default:
		report.Outcome = metrics.OutcomeFailed
	}

	b.recorder.ObserveBuildDuration(report.Duration())
	b.recorder.IncBuildOutcome(report.Outcome)
	b.writeTextfile(logger)

	if err != nil {
		logger.Error("Build failed", logfields.State(string(report.Outcome)), logfields.Duration(report.Duration()), logfields.Error(err))
		return report, err
	}
	logger.Info("Build complete",
		logfields.Posts(report.Posts),
		logfields.Rejected(report.Rejected),
		slog.Int("pages", report.Pages),
		logfields.Duration(report.Duration()))
	return report, nil
}

// writeTextfile exports the recorder's registry when a textfile is configured.
func (b *Builder) writeTextfile(logger *slog.Logger) {
	path := b.settings.Metrics.Textfile
	if path == "" {
		return
	}
	withRegistry, ok := b.recorder.(interface{ Registry() *prom.Registry })
	if !ok {
		return
	}
	if err := metrics.WriteTextfile(path, withRegistry.Registry()); err != nil {
		logger.Warn("Failed to write metrics textfile", logfields.Path(path), logfields.Error(err))
	}
}

// waitAbout blocks until the about page goroutine, if started, finishes.
func (bs *buildState) waitAbout() error {
	bs.aboutOnce.Do(func() {
		if bs.aboutDone != nil {
			bs.aboutErr = <-bs.aboutDone
		}
	})
	return bs.aboutErr
}
