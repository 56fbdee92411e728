package site

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
)

var testTemplates = map[string]string{
	render.TemplateIndex:           `{{#post-content}}<article><a href="{{postURL}}">{{title}}</a></article>{{/post-content}}{{#previous}}<a rel="prev" href="{{previous}}">older</a>{{/previous}}{{#next}}<a rel="next" href="{{next}}">newer</a>{{/next}}`,
	render.TemplateAbout:           `<title>{{sitename}}</title>{{{about}}}`,
	render.TemplatePostPage:        `<html><head><meta property="og:image" content="{{image}}"></head><body>{{{post-content}}}</body></html>`,
	render.TemplatePostContent:     `<h1>{{title}}</h1><p class="by">{{author}}</p>{{{content}}}`,
	render.TemplatePostContentLink: `<h1><a href="{{link}}">{{title}}</a></h1>{{{content}}}`,
	render.TemplateAtom:            `<?xml version="1.0" encoding="utf-8"?><feed xmlns="http://www.w3.org/2005/Atom"><title>{{sitename}}</title><id>{{webRoot}}</id><updated>{{gen-time}}</updated>{{{atom-entry}}}</feed>`,
	render.TemplateAtomEntry:       `<entry><title type="html">{{{title}}}</title><link href="{{postURL}}"/><id>{{postURL}}</id><updated>{{date}}</updated><content type="html"><![CDATA[{{{content}}}]]></content></entry>`,
	"style.css":                    `body{}`,
}

type fixture struct {
	settings *config.Settings
	content  string
	output   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	s := config.Default()
	s.Site.WebRoot = "https://example.com/"
	s.Site.SiteName = "Example"
	s.Site.Author = "Site Author"
	s.Site.OGPDefaultImage = "https://example.com/default.png"
	s.Site.PostsPerPage = 2
	s.Site.ContentDir = filepath.Join(root, "content")
	s.Site.TemplateDir = filepath.Join(root, "templates")
	s.Site.OutputDir = filepath.Join(root, "output")
	s.Site.DraftsDir = filepath.Join(root, "drafts")
	s.Build.Workers = 2
	require.NoError(t, config.EnsureDirectories(s))

	for name, body := range testTemplates {
		require.NoError(t, os.WriteFile(filepath.Join(s.Site.TemplateDir, name), []byte(body), 0o600))
	}
	return &fixture{settings: s, content: s.Site.ContentDir, output: s.Site.OutputDir}
}

func (f *fixture) write(t *testing.T, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(f.content, name), []byte(body), 0o600))
}

func (f *fixture) read(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.output, name))
	require.NoError(t, err)
	return string(data)
}

func (f *fixture) addThreePosts(t *testing.T) {
	f.write(t, "first.md", "Title: First Post\nDate: 2024-01-01 09:00:00\nImage: cover.png\n\nHello <img src=\"cat.png\">\n")
	f.write(t, "second.md", "Title: Second \"Post\"\nDate: 2024-02-01 09:00:00\nLink: https://golang.org/\n\nLinked.\n")
	f.write(t, "third.md", "---\ntitle: Third Post\ndate: 2024-03-01 09:00:00\n---\n<script>track()</script>\nNewest.\n")
	f.write(t, "untitled.md", "Date: 2024-04-01 09:00:00\n\nNo title.\n")
	f.write(t, "about.markdown", "Title: About\n\nI write things.\n")
	require.NoError(t, os.WriteFile(filepath.Join(f.content, "cover.png"), []byte("png"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(f.content, "cat.png"), []byte("cat"), 0o600))
}

func TestBuild_EndToEnd(t *testing.T) {
	f := newFixture(t)
	f.addThreePosts(t)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	report, err := NewBuilder(f.settings, WithClock(func() time.Time { return now })).Build(context.Background())
	require.NoError(t, err)

	require.Equal(t, metrics.OutcomeSuccess, report.Outcome)
	require.NotEmpty(t, report.BuildID)
	require.Equal(t, 3, report.Posts)
	require.Equal(t, 1, report.Rejected)
	require.Equal(t, 2, report.Pages)
	require.Equal(t, 3, report.FeedEntries)
	require.True(t, report.AboutWritten)
	for _, st := range defaultStages() {
		require.Equal(t, StageResultSuccess, report.StageResults[st.Name], "stage %s", st.Name)
	}

	first := f.read(t, "2024-01-01-First-Post.html")
	require.Contains(t, first, `content="https://example.com/images/2024-01-01-First-Post/cover.png"`)
	require.Contains(t, first, `src="https://example.com/images/2024-01-01-First-Post/cat.png"`)
	require.Contains(t, first, `<p class="by">Site Author</p>`)
	require.FileExists(t, filepath.Join(f.output, "images", "2024-01-01-First-Post", "cover.png"))
	require.FileExists(t, filepath.Join(f.output, "images", "2024-01-01-First-Post", "cat.png"))

	second := f.read(t, "2024-02-01-Second-Post.html")
	require.Contains(t, second, `<a href="https://golang.org/">Second “Post”</a>`)
	require.Contains(t, second, `content="https://example.com/default.png"`)

	index := f.read(t, "index.html")
	require.Less(t, strings.Index(index, "Third Post"), strings.Index(index, "Second"))
	require.NotContains(t, index, "First Post")
	require.Contains(t, index, `rel="prev" href="https://example.com/index2.html"`)
	require.NotContains(t, index, `rel="next"`)

	index2 := f.read(t, "index2.html")
	require.Contains(t, index2, "First Post")
	require.Contains(t, index2, `rel="next" href="https://example.com/index.html"`)
	require.NotContains(t, index2, `rel="prev"`)

	require.Contains(t, f.read(t, "about.html"), "<p>I write things.</p>")
	require.Equal(t, "body{}", f.read(t, "style.css"))
	require.NoFileExists(t, filepath.Join(f.output, "post-page.html"))

	parsed, err := gofeed.NewParser().ParseString(f.read(t, "feed.xml"))
	require.NoError(t, err)
	require.Len(t, parsed.Items, 3)
	require.Equal(t, "Third Post", parsed.Items[0].Title)
	require.Equal(t, "https://example.com/2024-03-01-Third-Post.html", parsed.Items[0].Link)
	require.NotContains(t, parsed.Items[0].Content, "track()")
	require.Equal(t, time.Date(2024, 3, 1, 17, 0, 0, 0, time.UTC), parsed.Items[0].UpdatedParsed.UTC())
}

func TestBuild_Idempotent(t *testing.T) {
	f := newFixture(t)
	f.addThreePosts(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	b := NewBuilder(f.settings, WithClock(func() time.Time { return now }))

	_, err := b.Build(context.Background())
	require.NoError(t, err)
	firstIndex, firstFeed := f.read(t, "index.html"), f.read(t, "feed.xml")

	_, err = b.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, firstIndex, f.read(t, "index.html"))
	require.Equal(t, firstFeed, f.read(t, "feed.xml"))
}

func TestBuild_NoPostsWritesEmptyIndexAndSkipsFeed(t *testing.T) {
	f := newFixture(t)

	report, err := NewBuilder(f.settings).Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, report.Posts)
	require.Equal(t, 1, report.Pages)
	require.False(t, report.AboutWritten)
	require.FileExists(t, filepath.Join(f.output, "index.html"))
	require.NoFileExists(t, filepath.Join(f.output, "feed.xml"))
	require.Equal(t, StageResultWarning, report.StageResults[StageFeed])
	require.Len(t, report.Warnings, 1)
	require.Equal(t, metrics.OutcomeSuccess, report.Outcome)
}

func TestBuild_MissingTemplateIsFatal(t *testing.T) {
	f := newFixture(t)
	f.addThreePosts(t)
	require.NoError(t, os.Remove(filepath.Join(f.settings.Site.TemplateDir, render.TemplatePostPage)))

	report, err := NewBuilder(f.settings).Build(context.Background())
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryTemplate))
	require.Equal(t, metrics.OutcomeFailed, report.Outcome)
	require.Equal(t, StageResultFatal, report.StageResults[StageRender])
	_, ran := report.StageResults[StagePaginate]
	require.False(t, ran)
}

func TestBuild_MalformedDateFailsFeed(t *testing.T) {
	f := newFixture(t)
	f.write(t, "odd.md", "Title: Odd\nDate: sometime\n\nBody\n")

	report, err := NewBuilder(f.settings).Build(context.Background())
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryFeed))
	require.Equal(t, StageResultFatal, report.StageResults[StageFeed])
}

func TestBuild_SlugConflicts(t *testing.T) {
	t.Run("warn keeps last source", func(t *testing.T) {
		f := newFixture(t)
		f.write(t, "a.md", "Title: Same Title\nDate: 2024-01-01 00:00:00\n\nfrom a\n")
		f.write(t, "b.md", "Title: Same Title!\nDate: 2024-01-01 10:00:00\n\nfrom b\n")

		report, err := NewBuilder(f.settings).Build(context.Background())
		require.NoError(t, err)
		require.Equal(t, []string{"2024-01-01-Same-Title"}, report.SlugConflicts)
		require.Equal(t, StageResultWarning, report.StageResults[StageConflicts])
		require.Contains(t, f.read(t, "2024-01-01-Same-Title.html"), "from b")
	})

	t.Run("error mode fails before writing", func(t *testing.T) {
		f := newFixture(t)
		f.settings.Build.SlugConflicts = config.SlugConflictError
		f.write(t, "a.md", "Title: Same Title\nDate: 2024-01-01 00:00:00\n\nfrom a\n")
		f.write(t, "b.md", "Title: Same Title\nDate: 2024-01-01 00:00:00\n\nfrom b\n")

		report, err := NewBuilder(f.settings).Build(context.Background())
		require.Error(t, err)
		require.True(t, errors.HasCategory(err, errors.CategoryContent))
		require.Equal(t, StageResultFatal, report.StageResults[StageConflicts])
		require.NoFileExists(t, filepath.Join(f.output, "2024-01-01-Same-Title.html"))
	})
}

func TestBuild_CanceledContext(t *testing.T) {
	f := newFixture(t)
	f.addThreePosts(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := NewBuilder(f.settings).Build(ctx)
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, metrics.OutcomeCanceled, report.Outcome)
}

func TestBuild_RecordsMetricsAndWritesTextfile(t *testing.T) {
	f := newFixture(t)
	f.addThreePosts(t)
	f.settings.Metrics.Textfile = filepath.Join(t.TempDir(), "sitebuilder.prom")
	rec := metrics.NewPrometheusRecorder(nil)

	_, err := NewBuilder(f.settings, WithRecorder(rec)).Build(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(f.settings.Metrics.Textfile)
	require.NoError(t, err)
	require.Contains(t, string(data), "sitebuilder_posts_rendered_total 3")
	require.Contains(t, string(data), "sitebuilder_documents_rejected_total 1")

	n, err := testutil.GatherAndCount(rec.Registry(), "sitebuilder_build_outcomes_total")
	require.NoError(t, err)
	require.Equal(t, 1, n)
}
