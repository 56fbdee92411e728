package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/pprof"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	CPUProfile string `name:"cpuprofile" help:"Write a CPU profile of the build to FILE" type:"path" placeholder:"FILE"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	s, err := loadSettings(root.Settings)
	if err != nil {
		return err
	}

	if b.CPUProfile != "" {
		stop, err := startCPUProfile(b.CPUProfile)
		if err != nil {
			return err
		}
		defer stop()
	}

	ctx, cancel := signalContext()
	defer cancel()
	return RunBuild(ctx, g, s)
}

// RunBuild performs one build and prints a summary.
func RunBuild(ctx context.Context, g *Global, s *config.Settings) error {
	logger := g.logger()
	report, err := newBuilder(s, logger, newRecorder(s)).Build(ctx)
	if err != nil {
		return err
	}
	logger.Info("Build finished",
		logfields.BuildID(report.BuildID),
		logfields.Posts(report.Posts),
		logfields.Rejected(report.Rejected),
		logfields.Duration(report.Duration()))
	printSummary(g, s, report)
	return nil
}

func printSummary(g *Global, s *config.Settings, r *site.Report) {
	out := g.out()
	_, _ = fmt.Fprintf(out, "Built %d posts (%d rejected) into %s\n", r.Posts, r.Rejected, s.Site.OutputDir)
	_, _ = fmt.Fprintf(out, "  index pages: %d, feed entries: %d\n", r.Pages, r.FeedEntries)
	if len(r.SlugConflicts) > 0 {
		_, _ = fmt.Fprintf(out, "  slug conflicts: %v\n", r.SlugConflicts)
	}
	for _, w := range r.Warnings {
		_, _ = fmt.Fprintf(out, "  warning: %s\n", w)
	}
}

func startCPUProfile(path string) (func(), error) {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return nil, errors.FileSystemError("failed to create CPU profile").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return nil, errors.RuntimeError("failed to start CPU profile").WithCause(err).Build()
	}
	return func() {
		pprof.StopCPUProfile()
		_ = f.Close()
	}, nil
}
