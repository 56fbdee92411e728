package assets

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

type missingCounter struct {
	metrics.NoopRecorder
	missing atomic.Int32
}

func (m *missingCounter) IncMissingAssets() { m.missing.Add(1) }

func setup(t *testing.T) (src, out string, rec *missingCounter, r *Rewriter) {
	t.Helper()
	src = t.TempDir()
	out = t.TempDir()
	rec = &missingCounter{}
	r = NewRewriter(out, "https://example.com/", nil, rec)
	return src, out, rec, r
}

func TestRewrite_CopiesAndRewritesRelativeSources(t *testing.T) {
	src, out, rec, r := setup(t)
	require.NoError(t, os.WriteFile(filepath.Join(src, "cat.png"), []byte("meow"), 0o600))

	html := `<p><img alt="cat" src="cat.png"> <img src="https://cdn.example.org/x.png"> <img src="/static/y.png"></p>`
	got := r.Rewrite(html, "2024-01-15-Cats", src)

	require.Equal(t,
		`<p><img alt="cat" src="https://example.com/images/2024-01-15-Cats/cat.png"> <img src="https://cdn.example.org/x.png"> <img src="/static/y.png"></p>`,
		got)
	data, err := os.ReadFile(filepath.Join(out, "images", "2024-01-15-Cats", "cat.png"))
	require.NoError(t, err)
	require.Equal(t, "meow", string(data))
	require.Zero(t, rec.missing.Load())
}

func TestRewrite_MissingSourceStillRewrites(t *testing.T) {
	src, out, rec, r := setup(t)

	got := r.Rewrite(`<img srcset="gone.jpg">`, "slug", src)

	require.Equal(t, `<img srcset="https://example.com/images/slug/gone.jpg">`, got)
	require.NoDirExists(t, filepath.Join(out, "images", "slug"))
	require.Equal(t, int32(1), rec.missing.Load())
}

func TestRewrite_NestedValueKeepsPathInURLAndBaseNameOnDisk(t *testing.T) {
	src, out, _, r := setup(t)
	require.NoError(t, os.MkdirAll(filepath.Join(src, "pics"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(src, "pics", "a.gif"), []byte("gif"), 0o600))

	got := r.Rewrite(`<img src="pics/a.gif">`, "slug", src)

	require.Equal(t, `<img src="https://example.com/images/slug/pics/a.gif">`, got)
	require.FileExists(t, filepath.Join(out, "images", "slug", "a.gif"))
}

func TestRewriteSingle(t *testing.T) {
	src, out, rec, r := setup(t)
	require.NoError(t, os.WriteFile(filepath.Join(src, "cover.jpg"), []byte("jpg"), 0o600))

	require.Equal(t, "https://example.com/images/post/cover.jpg", r.RewriteSingle("cover.jpg", "post", src))
	require.Equal(t, "https://elsewhere.org/c.jpg", r.RewriteSingle("https://elsewhere.org/c.jpg", "post", src))
	require.Equal(t, "/c.jpg", r.RewriteSingle("/c.jpg", "post", src))
	require.FileExists(t, filepath.Join(out, "images", "post", "cover.jpg"))
	require.Zero(t, rec.missing.Load())
}

func TestRewrite_Idempotent(t *testing.T) {
	src, _, _, r := setup(t)
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.png"), []byte("a"), 0o600))

	first := r.Rewrite(`<img src="a.png">`, "s", src)
	second := r.Rewrite(first, "s", src)
	require.Equal(t, first, second)
}
