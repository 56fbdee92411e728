package feed

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/content"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
)

const (
	atomTemplate = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom"><title>{{sitename}}</title><link href="{{webRoot}}"/><id>{{webRoot}}</id><updated>{{gen-time}}</updated>{{{atom-entry}}}</feed>`
	entryTemplate = `<entry><title type="html">{{{title}}}</title><link href="{{postURL}}"/><id>{{postURL}}</id><updated>{{date}}</updated><content type="html"><![CDATA[{{{content}}}]]></content></entry>`
)

func newGenerator(t *testing.T, limit int) *Generator {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, render.TemplateAtom), []byte(atomTemplate), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, render.TemplateAtomEntry), []byte(entryTemplate), 0o600))

	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	site := map[string]any{"sitename": "Blog", "webRoot": "https://example.com/"}
	return NewGenerator(render.New(dir, t.TempDir(), nil, nil), limit, loc, site)
}

func post(i int, title, date, body string) *content.Post {
	slug := fmt.Sprintf("post-%d", i)
	return &content.Post{
		Fields:  map[string]string{"title": title},
		Slug:    slug,
		URL:     "https://example.com/" + slug + ".html",
		Content: body,
		RawDate: date,
	}
}

func TestBuild_ParsesAsAtom(t *testing.T) {
	g := newGenerator(t, 0)
	posts := []*content.Post{
		post(1, "Tom & Jerry", "2024-07-04 09:30:00", `<p>Hi</p><script>alert(1)</script><iframe src="x"></iframe>`),
		post(2, "Older", "2024-01-15 10:00:00", `<p>Old<object data="y"></object></p>`),
	}

	now := time.Date(2024, 7, 5, 1, 2, 3, 456789000, time.UTC)
	out, err := g.Build(posts, now)
	require.NoError(t, err)
	require.Contains(t, out, "<updated>2024-07-05T01:02:03.456789Z</updated>")

	feed, err := gofeed.NewParser().ParseString(out)
	require.NoError(t, err)
	require.Equal(t, "Blog", feed.Title)
	require.Len(t, feed.Items, 2)

	first := feed.Items[0]
	require.Equal(t, "Tom & Jerry", first.Title)
	require.Equal(t, "https://example.com/post-1.html", first.Link)
	require.NotNil(t, first.UpdatedParsed)
	require.Equal(t, time.Date(2024, 7, 4, 16, 30, 0, 0, time.UTC), first.UpdatedParsed.UTC())
	require.Contains(t, first.Content, "<p>Hi</p>")
	require.NotContains(t, first.Content, "script")
	require.NotContains(t, first.Content, "iframe")

	second := feed.Items[1]
	require.Equal(t, time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC), second.UpdatedParsed.UTC())
	require.NotContains(t, second.Content, "object")
}

func TestBuild_CapsEntries(t *testing.T) {
	g := newGenerator(t, 3)
	var posts []*content.Post
	for i := 0; i < 5; i++ {
		posts = append(posts, post(i, fmt.Sprintf("Post %d", i), "2024-01-15 10:00:00", "<p>x</p>"))
	}

	out, err := g.Build(posts, time.Now())
	require.NoError(t, err)
	require.Equal(t, 3, strings.Count(out, "<entry>"))
}

func TestBuild_IgnoresPostsPastLimit(t *testing.T) {
	g := newGenerator(t, 2)
	posts := []*content.Post{
		post(1, "First", "2024-01-15 10:00:00", "<p>x</p>"),
		post(2, "Second", "2024-01-14 10:00:00", "<p>y</p>"),
		post(3, "Old", "not a date", "<p>z</p>"),
	}

	out, err := g.Build(posts, time.Now())
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(out, "<entry>"))
	require.NotContains(t, out, "Old")
}

func TestBuild_EmptyListIsFeedError(t *testing.T) {
	_, err := newGenerator(t, 0).Build(nil, time.Now())
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryFeed))
}

func TestBuild_MalformedDateIsFatal(t *testing.T) {
	g := newGenerator(t, 0)
	_, err := g.Build([]*content.Post{post(1, "Bad", "next tuesday", "<p>x</p>")}, time.Now())
	require.Error(t, err)
	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	require.Equal(t, errors.CategoryFeed, ce.Category())
	require.True(t, ce.IsFatal())
}

func TestRFC3339(t *testing.T) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	got, err := RFC3339("2024-07-04 09:30:00", loc)
	require.NoError(t, err)
	require.Equal(t, "2024-07-04T16:30:00Z", got)

	got, err = RFC3339("2024-07-04 09:30:00", time.UTC)
	require.NoError(t, err)
	require.Equal(t, "2024-07-04T09:30:00Z", got)
}

func TestSanitize(t *testing.T) {
	out, err := Sanitize(`<style>p{}</style><p>keep <b>this</b></p><script>x()</script><div><iframe></iframe>ok</div>`)
	require.NoError(t, err)
	require.Equal(t, `<style>p{}</style><p>keep <b>this</b></p><div>ok</div>`, out)
}
