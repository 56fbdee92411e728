// Package drafts promotes finished drafts into the content directory.
//
// A draft is ready once its metadata carries a usable title, a date, an
// author and a category. Promotion copies the images it references into the
// output tree, points the references at their published URLs and moves the
// document to {content_dir}/{slug}.md.
package drafts

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/assets"
	"git.home.luguber.info/inful/sitebuilder/internal/content"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
)

// RequiredFields lists the metadata keys a draft needs before it is published.
var RequiredFields = []string{"title", "date", "author", "category"}

// Complete reports whether meta has every required field and a usable title.
func Complete(meta frontmatter.Metadata) bool {
	for _, key := range RequiredFields {
		v, ok := meta.First(key)
		if !ok || strings.TrimSpace(v) == "" {
			return false
		}
	}
	title, _ := meta.First("title")
	return content.ValidTitle(title)
}

// Draft is a ready draft waiting to be promoted.
type Draft struct {
	Path string
	Slug string
	Doc  *frontmatter.Document
}

// Promoter moves ready drafts into the content directory.
type Promoter struct {
	draftsDir  string
	contentDir string
	rewriter   *assets.Rewriter
	logger     *slog.Logger
}

// NewPromoter creates a Promoter. rewriter copies referenced images into
// the output tree.
func NewPromoter(draftsDir, contentDir string, rewriter *assets.Rewriter, logger *slog.Logger) *Promoter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Promoter{
		draftsDir:  draftsDir,
		contentDir: contentDir,
		rewriter:   rewriter,
		logger:     logger,
	}
}

// Ready lists the drafts that are complete, in file name order. Unreadable
// or incomplete drafts are skipped. A missing drafts directory has no drafts.
func (p *Promoter) Ready() ([]Draft, error) {
	entries, err := os.ReadDir(p.draftsDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.FileSystemError("failed to list drafts directory").
			WithCause(err).
			WithContext("path", p.draftsDir).
			Build()
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !content.IsMarkdown(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var ready []Draft
	for _, name := range names {
		path := filepath.Join(p.draftsDir, name)
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			p.logger.Warn("Skipping unreadable draft", logfields.Path(path), logfields.Error(err))
			continue
		}
		doc, err := frontmatter.Parse(data)
		if err != nil {
			p.logger.Debug("Skipping draft with unreadable metadata", logfields.Path(path), logfields.Error(err))
			continue
		}
		if !Complete(doc.Meta) {
			continue
		}
		title, _ := doc.Meta.First("title")
		date, _ := doc.Meta.First("date")
		ready = append(ready, Draft{Path: path, Slug: content.Slug(title, date), Doc: doc})
	}
	return ready, nil
}

// Promote publishes every ready draft and returns the promoted slugs. A
// draft whose target file already exists is left in place.
func (p *Promoter) Promote(ctx context.Context) ([]string, error) {
	ready, err := p.Ready()
	if err != nil {
		return nil, err
	}

	var slugs []string
	for _, d := range ready {
		if err := ctx.Err(); err != nil {
			return slugs, err
		}
		target := filepath.Join(p.contentDir, d.Slug+".md")
		if _, err := os.Stat(target); err == nil {
			p.logger.Warn("Post already exists, leaving draft in place", logfields.Slug(d.Slug), logfields.Path(target))
			continue
		}
		if err := p.promote(d, target); err != nil {
			return slugs, err
		}
		p.logger.Info("Promoted draft", logfields.Slug(d.Slug), logfields.Path(target))
		slugs = append(slugs, d.Slug)
	}
	return slugs, nil
}

func (p *Promoter) promote(d Draft, target string) error {
	doc := d.Doc
	if image, ok := doc.Meta.First("image"); ok && image != "" {
		doc.Meta.Set("image", p.rewriter.RewriteSingle(image, d.Slug, p.draftsDir))
	}

	body := markdown.RewriteImageDestinations(doc.Body, func(dest string) string {
		return p.rewriter.RewriteSingle(dest, d.Slug, p.draftsDir)
	})
	doc.Body = []byte(p.rewriter.Rewrite(string(body), d.Slug, p.draftsDir))

	out, err := frontmatter.Render(doc)
	if err != nil {
		return errors.ContentError("failed to render draft metadata").
			WithCause(err).
			WithContext("path", d.Path).
			Build()
	}
	if err := os.WriteFile(target, out, 0o644); err != nil { //nolint:gosec // published posts are world-readable
		return errors.FileSystemError("failed to write promoted post").
			WithCause(err).
			WithContext("path", target).
			Build()
	}
	if err := os.Remove(d.Path); err != nil {
		return errors.FileSystemError("failed to remove promoted draft").
			WithCause(err).
			WithContext("path", d.Path).
			Build()
	}
	return nil
}
