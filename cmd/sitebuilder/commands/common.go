// Package commands implements the sitebuilder command line.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitebuilder/internal/assets"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/drafts"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// LogLevelEnv overrides the log level chosen by --verbose.
const LogLevelEnv = "SITEBUILDER_LOG_LEVEL"

// Global carries process-wide dependencies into subcommands.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer
}

func (g *Global) logger() *slog.Logger {
	if g == nil || g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition & global flags.
type CLI struct {
	Settings string           `short:"s" help:"Settings file path (.toml, .yaml or .yml)" default:"settings.toml" type:"path"`
	Verbose  bool             `short:"v" help:"Enable verbose logging"`
	Version  kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build  BuildCmd  `cmd:"" default:"1" help:"Build the site once (default)"`
	Watch  WatchCmd  `cmd:"" help:"Build, then rebuild whenever content or templates change"`
	Init   InitCmd   `cmd:"" help:"Write an example settings file and create the site directories"`
	Drafts DraftsCmd `cmd:"" help:"List drafts that are ready to publish"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(c.Verbose)}))
	slog.SetDefault(logger)
	return nil
}

// parseLogLevel picks the log level from --verbose, overridden by the
// environment when it names a valid level.
func parseLogLevel(verbose bool) slog.Level {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if env := strings.TrimSpace(os.Getenv(LogLevelEnv)); env != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(env)); err == nil {
			level = l
		}
	}
	return level
}

// loadSettings loads the settings file and creates missing site directories.
func loadSettings(path string) (*config.Settings, error) {
	s, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.EnsureDirectories(s); err != nil {
		return nil, err
	}
	return s, nil
}

// newRecorder returns a Prometheus recorder when a metrics textfile is
// configured, nil otherwise.
func newRecorder(s *config.Settings) metrics.Recorder {
	if s.Metrics.Textfile == "" {
		return nil
	}
	return metrics.NewPrometheusRecorder(nil)
}

func newBuilder(s *config.Settings, logger *slog.Logger, rec metrics.Recorder) *site.Builder {
	return site.NewBuilder(s, site.WithLogger(logger), site.WithRecorder(rec))
}

func newPromoter(s *config.Settings, logger *slog.Logger, rec metrics.Recorder) *drafts.Promoter {
	rw := assets.NewRewriter(s.Site.OutputDir, s.Site.WebRoot, logger, rec)
	return drafts.NewPromoter(s.Site.DraftsDir, s.Site.ContentDir, rw, logger)
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
