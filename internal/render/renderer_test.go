package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

func writeTemplate(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestRender_SubstitutesAndLeavesMissingEmpty(t *testing.T) {
	tpl := t.TempDir()
	writeTemplate(t, tpl, TemplatePostContent, "<h1>{{title}}</h1>{{{content}}}[{{missing}}]")

	r := New(tpl, t.TempDir(), nil, nil)
	out, err := r.Render(TemplatePostContent, map[string]any{"title": "A & B", "content": "<p>x</p>"})
	require.NoError(t, err)
	require.Equal(t, "<h1>A &amp; B</h1><p>x</p>[]", out)
}

func TestRender_MissingTemplateIsFatalTemplateError(t *testing.T) {
	r := New(t.TempDir(), t.TempDir(), nil, nil)

	_, err := r.Render(TemplatePostPage, map[string]any{})
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryTemplate))
	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	require.True(t, ce.IsFatal())
}

func TestRender_CachesParsedTemplate(t *testing.T) {
	tpl := t.TempDir()
	writeTemplate(t, tpl, TemplateAbout, "v1 {{about}}")
	r := New(tpl, t.TempDir(), nil, nil)

	out, err := r.Render(TemplateAbout, map[string]any{"about": "me"})
	require.NoError(t, err)
	require.Equal(t, "v1 me", out)

	writeTemplate(t, tpl, TemplateAbout, "v2 {{about}}")
	out, err = r.Render(TemplateAbout, map[string]any{"about": "me"})
	require.NoError(t, err)
	require.Equal(t, "v1 me", out)
}

func TestRender_SectionsOverPostLists(t *testing.T) {
	tpl := t.TempDir()
	writeTemplate(t, tpl, TemplateIndex, "{{#post-content}}<li>{{title}}</li>{{/post-content}}{{#previous}}<a href=\"{{previous}}\">older</a>{{/previous}}")
	r := New(tpl, t.TempDir(), nil, nil)

	out, err := r.Render(TemplateIndex, map[string]any{
		"post-content": []map[string]any{{"title": "One"}, {"title": "Two"}},
		"previous":     "https://example.com/index2.html",
	})
	require.NoError(t, err)
	require.Equal(t, `<li>One</li><li>Two</li><a href="https://example.com/index2.html">older</a>`, out)
}

func TestRender_InvalidUTF8Dropped(t *testing.T) {
	tpl := t.TempDir()
	writeTemplate(t, tpl, TemplateAbout, "{{{about}}}")
	r := New(tpl, t.TempDir(), nil, nil)

	out, err := r.Render(TemplateAbout, map[string]any{"about": "ok\xff!"})
	require.NoError(t, err)
	require.Equal(t, "ok!", out)
}

func TestRender_Partials(t *testing.T) {
	tpl := t.TempDir()
	writeTemplate(t, tpl, "header.mustache", "<header>{{sitename}}</header>")
	writeTemplate(t, tpl, TemplateAbout, "{{> header}}<main>{{about}}</main>")
	r := New(tpl, t.TempDir(), nil, nil)

	out, err := r.Render(TemplateAbout, map[string]any{"sitename": "Blog", "about": "hi"})
	require.NoError(t, err)
	require.Equal(t, "<header>Blog</header><main>hi</main>", out)
}

func TestWritePage_EncodesCharsetAndRejectsEscapes(t *testing.T) {
	out := t.TempDir()
	enc, err := NewEncoder("iso-8859-1")
	require.NoError(t, err)
	r := New(t.TempDir(), out, enc, nil)

	require.NoError(t, r.WritePage("about.html", "café ☃"))
	data, err := os.ReadFile(filepath.Join(out, "about.html"))
	require.NoError(t, err)
	require.Equal(t, []byte("caf\xe9 &#9731;"), data)

	require.Error(t, r.WritePage("../escape.html", "x"))
}

func TestWritePage_UTF8PassThroughAndOverwrite(t *testing.T) {
	out := t.TempDir()
	r := New(t.TempDir(), out, nil, nil)

	require.NoError(t, r.WritePage("index.html", "old"))
	require.NoError(t, r.WritePage("index.html", "ünïcode ☃"))
	data, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	require.Equal(t, "ünïcode ☃", string(data))
}

func TestNewEncoder_UnknownCharset(t *testing.T) {
	_, err := NewEncoder("klingon-8")
	require.Error(t, err)

	enc, err := NewEncoder("latin1")
	require.NoError(t, err)
	require.Equal(t, "windows-1252", enc.Name())
}

func TestSiteDataAndMerge(t *testing.T) {
	s := config.Default()
	s.Site.SiteName = "Blog"
	s.Site.WebRoot = "https://example.com/"
	s.Social.FediHandle = "@me@example.social"

	data := Merge(map[string]any{"sitename": "overridden", "title": "T"}, SiteData(s))
	require.Equal(t, "Blog", data["sitename"])
	require.Equal(t, "T", data["title"])
	require.Equal(t, "@me@example.social", data["fediHandle"])
}
