package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/content"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// Target is one directory the controller watches.
type Target struct {
	Dir       string
	Recursive bool
	// Match limits which files count as changes. nil accepts every file.
	Match func(name string) bool
}

func (t Target) accepts(path string) bool {
	if t.Match == nil {
		return true
	}
	return t.Match(filepath.Base(path))
}

// SiteTargets returns the directories watched for a site: markdown files
// in the content dir, everything under the template dir, and the drafts
// dir when drafts are published automatically.
func SiteTargets(s *config.Settings) []Target {
	targets := []Target{
		{Dir: s.Site.ContentDir, Match: content.IsMarkdown},
		{Dir: s.Site.TemplateDir, Recursive: true},
	}
	if s.Watch.PublishDrafts && s.Site.DraftsDir != "" {
		targets = append(targets, Target{Dir: s.Site.DraftsDir, Match: content.IsMarkdown})
	}
	return targets
}

// fingerprints remembers the last content hash seen per file so touch and
// chmod events on unchanged files do not rebuild.
type fingerprints struct {
	mu   sync.Mutex
	seen map[string]string
}

func newFingerprints() *fingerprints {
	return &fingerprints{seen: make(map[string]string)}
}

// changed reports whether path differs from its last recorded state and
// records the new one. Unreadable files count as changed.
func (f *fingerprints) changed(path string) bool {
	data, err := os.ReadFile(path)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		_, had := f.seen[path]
		delete(f.seen, path)
		return had || os.IsNotExist(err)
	}
	fp := mdfp.CalculateFingerprintFromParts("", string(data))
	if prev, ok := f.seen[path]; ok && prev == fp {
		return false
	}
	f.seen[path] = fp
	return true
}

func (f *fingerprints) seed(t Target) {
	walk := func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != t.Dir && !t.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !shouldIgnoreEvent(path) && t.accepts(path) {
			f.changed(path)
		}
		return nil
	}
	_ = filepath.WalkDir(t.Dir, walk)
}

// Run performs the initial build, then watches targets until ctx is done.
func (c *Controller) Run(ctx context.Context, targets []Target) error {
	c.setContext(ctx)
	defer c.Stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WatchError("failed to create file watcher").WithCause(err).Build()
	}
	defer func() { _ = watcher.Close() }()

	fps := newFingerprints()
	for _, t := range targets {
		if err := c.addTarget(watcher, t); err != nil {
			return err
		}
		fps.seed(t)
		c.logger.Info("Watching directory", logfields.Path(t.Dir))
	}

	if c.interval > 0 {
		sched, err := NewScheduler(c.logger)
		if err != nil {
			return err
		}
		if _, err := sched.SchedulePeriodicRebuild(c.interval, func() { c.Trigger(ctx, SourceSchedule) }); err != nil {
			return err
		}
		sched.Start()
		defer func() {
			if err := sched.Stop(); err != nil {
				c.logger.Warn("Scheduler shutdown failed", logfields.Error(err))
			}
		}()
	}

	c.Trigger(ctx, SourceInitial)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Watch stopped")
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			c.handleEvent(watcher, targets, fps, ev)
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("Watcher error", logfields.Error(werr))
		}
	}
}

func (c *Controller) addTarget(w *fsnotify.Watcher, t Target) error {
	if _, err := os.Stat(t.Dir); err != nil {
		return errors.WatchError("watch directory unavailable").
			WithCause(err).
			WithContext("dir", t.Dir).
			Build()
	}
	if t.Recursive {
		return addDirsRecursive(w, t.Dir, c.logger)
	}
	if err := w.Add(t.Dir); err != nil {
		return errors.WatchError("failed to watch directory").
			WithCause(err).
			WithContext("dir", t.Dir).
			Build()
	}
	return nil
}

func (c *Controller) handleEvent(w *fsnotify.Watcher, targets []Target, fps *fingerprints, ev fsnotify.Event) {
	if shouldIgnoreEvent(ev.Name) {
		return
	}
	t, ok := targetFor(targets, ev.Name)
	if !ok {
		return
	}
	if ev.Op.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			if t.Recursive {
				_ = addDirsRecursive(w, ev.Name, c.logger)
				c.Notify(ev.Name)
			}
			return
		}
	}
	if !t.accepts(ev.Name) {
		return
	}
	if !fps.changed(ev.Name) {
		c.logger.Debug("Ignoring unchanged file", logfields.Path(ev.Name), "op", ev.Op.String())
		return
	}
	c.logger.Debug("File change detected", logfields.Path(ev.Name), "op", ev.Op.String())
	c.Notify(ev.Name)
}

// targetFor picks the target owning path. Non-recursive targets only own
// their direct children.
func targetFor(targets []Target, path string) (Target, bool) {
	for _, t := range targets {
		rel, err := filepath.Rel(t.Dir, path)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		if !t.Recursive && strings.ContainsRune(rel, filepath.Separator) {
			continue
		}
		return t, true
	}
	return Target{}, false
}
