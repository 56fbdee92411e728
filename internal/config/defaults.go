package config

import (
	"runtime"
	"strings"
	"time"
)

const (
	DefaultContentDir    = "content/"
	DefaultTemplateDir   = "templates/default/"
	DefaultOutputDir     = "output/"
	DefaultDraftsDir     = "drafts/"
	DefaultPostsPerPage  = 10
	DefaultCharset       = "utf-8"
	DefaultFeedLimit     = 50
	DefaultFeedTimezone  = "America/Los_Angeles"
	DefaultWatchDebounce = 3 * time.Second
)

// Default returns settings populated with every default value.
func Default() *Settings {
	s := &Settings{}
	s.applyDefaults()
	return s
}

func (s *Settings) applyDefaults() {
	if s.Site.Root == "" {
		s.Site.Root = "./"
	}
	if s.Site.ContentDir == "" {
		s.Site.ContentDir = DefaultContentDir
	}
	if s.Site.TemplateDir == "" {
		s.Site.TemplateDir = DefaultTemplateDir
	}
	if s.Site.OutputDir == "" {
		s.Site.OutputDir = DefaultOutputDir
	}
	if s.Site.DraftsDir == "" {
		s.Site.DraftsDir = DefaultDraftsDir
	}
	if s.Site.PostsPerPage == 0 {
		s.Site.PostsPerPage = DefaultPostsPerPage
	}
	if s.Site.Charset == "" {
		s.Site.Charset = DefaultCharset
	}
	if s.Site.WebRoot != "" && !strings.HasSuffix(s.Site.WebRoot, "/") {
		s.Site.WebRoot += "/"
	}
	if s.Build.Workers == 0 {
		s.Build.Workers = runtime.GOMAXPROCS(0)
	}
	if s.Build.FeedLimit == 0 {
		s.Build.FeedLimit = DefaultFeedLimit
	}
	if s.Build.FeedTimezone == "" {
		s.Build.FeedTimezone = DefaultFeedTimezone
	}
	if s.Build.SlugConflicts == "" {
		s.Build.SlugConflicts = SlugConflictWarn
	}
	if s.Watch.Debounce == 0 {
		s.Watch.Debounce = Duration(DefaultWatchDebounce)
	}
}

// resolvePaths anchors the directory settings on site.root.
func (s *Settings) resolvePaths() {
	s.Site.ContentDir = resolve(s.Site.Root, s.Site.ContentDir)
	s.Site.TemplateDir = resolve(s.Site.Root, s.Site.TemplateDir)
	s.Site.OutputDir = resolve(s.Site.Root, s.Site.OutputDir)
	s.Site.DraftsDir = resolve(s.Site.Root, s.Site.DraftsDir)
	s.Metrics.Textfile = resolve(s.Site.Root, s.Metrics.Textfile)
}
