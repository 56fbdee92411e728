// Package assets copies images referenced by posts into the output tree and
// rewrites the references to absolute site URLs.
package assets

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/fsutil"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

// ImagesDir is the output subdirectory holding per-post images.
const ImagesDir = "images"

var srcAttr = regexp.MustCompile(`(src|srcset)="([^"]+)"`)

// Rewriter resolves relative image references for one site. It is safe for
// concurrent use; posts never share an output image directory.
type Rewriter struct {
	outputDir string
	webRoot   string
	logger    *slog.Logger
	recorder  metrics.Recorder
}

// NewRewriter creates a Rewriter writing below outputDir and linking below
// webRoot (which must end in "/").
func NewRewriter(outputDir, webRoot string, logger *slog.Logger, recorder metrics.Recorder) *Rewriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Rewriter{
		outputDir: outputDir,
		webRoot:   webRoot,
		logger:    logger,
		recorder:  metrics.OrNoop(recorder),
	}
}

// Rewrite rewrites every relative src and srcset attribute value in html.
func (r *Rewriter) Rewrite(html, slug, sourceDir string) string {
	return srcAttr.ReplaceAllStringFunc(html, func(match string) string {
		m := srcAttr.FindStringSubmatch(match)
		attr, value := m[1], m[2]
		if IsAbsolute(value) {
			return match
		}
		return attr + `="` + r.resolve(value, slug, sourceDir) + `"`
	})
}

// RewriteSingle applies the same rule to a single value, such as the image
// metadata field.
func (r *Rewriter) RewriteSingle(value, slug, sourceDir string) string {
	if IsAbsolute(value) {
		return value
	}
	return r.resolve(value, slug, sourceDir)
}

// URL returns the site URL a relative value is rewritten to.
func (r *Rewriter) URL(value, slug string) string {
	return r.webRoot + ImagesDir + "/" + slug + "/" + value
}

// IsAbsolute reports whether value is left alone by the rewriter.
func IsAbsolute(value string) bool {
	return strings.Contains(value, "://") || strings.HasPrefix(value, "/")
}

// resolve copies the referenced file when it exists and returns the
// rewritten URL either way. Copy problems are logged, never returned.
func (r *Rewriter) resolve(value, slug, sourceDir string) string {
	src := filepath.Join(sourceDir, filepath.FromSlash(value))
	info, err := os.Stat(src)
	switch {
	case err != nil || info.IsDir():
		r.recorder.IncMissingAssets()
		r.logger.Warn("Referenced image not found; link will dangle",
			logfields.Slug(slug), logfields.Path(src))
	default:
		dstDir := filepath.Join(r.outputDir, ImagesDir, slug)
		if err := os.MkdirAll(dstDir, 0o750); err != nil {
			r.logger.Warn("Failed to create image directory", logfields.Path(dstDir), logfields.Error(err))
			break
		}
		dst := filepath.Join(dstDir, filepath.Base(src))
		if err := fsutil.CopyFile(src, dst); err != nil {
			r.logger.Warn("Failed to copy image", logfields.Slug(slug), logfields.Path(src), logfields.Error(err))
		}
	}
	return r.URL(value, slug)
}
