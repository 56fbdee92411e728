package commands

import (
	"context"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/drafts"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Debounce time.Duration `help:"Override watch.debounce (e.g. 500ms)"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	s, err := loadSettings(root.Settings)
	if err != nil {
		return err
	}
	if w.Debounce > 0 {
		s.Watch.Debounce = config.Duration(w.Debounce)
	}

	ctx, cancel := signalContext()
	defer cancel()
	return RunWatch(ctx, g, s)
}

// RunWatch builds the site and keeps rebuilding until ctx is done.
func RunWatch(ctx context.Context, g *Global, s *config.Settings) error {
	logger := g.logger()
	rec := newRecorder(s)
	builder := newBuilder(s, logger, rec)

	var promoter *drafts.Promoter
	if s.Watch.PublishDrafts {
		promoter = newPromoter(s, logger, rec)
	}

	build := func(ctx context.Context, _ string) error {
		if promoter != nil {
			if _, err := promoter.Promote(ctx); err != nil {
				logger.Warn("Draft promotion failed", logfields.Error(err))
			}
		}
		_, err := builder.Build(ctx)
		return err
	}

	ctl := watch.NewController(build, s.Watch.Debounce.Std(),
		watch.WithLogger(logger),
		watch.WithRecorder(rec),
		watch.WithRebuildInterval(s.Watch.RebuildInterval.Std()),
	)
	return ctl.Run(ctx, watch.SiteTargets(s))
}
