package site

import (
	"context"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/feed"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/fsutil"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/pagination"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
)

// stagePaginate writes index.html, index2.html, ... Pages left over from a
// larger earlier build are not removed.
func stagePaginate(_ context.Context, bs *buildState) error {
	s := bs.settings
	bs.pages = pagination.Paginate(bs.posts, s.Site.PostsPerPage, s.Site.WebRoot)

	for _, page := range bs.pages {
		entries := make([]map[string]any, len(page.Posts))
		for i, p := range page.Posts {
			entries[i] = p.Data()
		}
		data := render.Merge(bs.site, map[string]any{"post-content": entries})
		if page.Previous != "" {
			data["previous"] = page.Previous
		}
		if page.Next != "" {
			data["next"] = page.Next
		}
		if err := bs.renderer.RenderToFile(render.TemplateIndex, page.FileName, data); err != nil {
			return err
		}
		bs.logger.Debug("Wrote index page", logfields.Page(page.FileName), logfields.Posts(len(page.Posts)))
	}
	bs.report.Pages = len(bs.pages)
	return nil
}

func stageFeed(_ context.Context, bs *buildState) error {
	if len(bs.posts) == 0 {
		return errors.FeedError("no posts; feed not written").Warning().Build()
	}

	gen := feed.NewGenerator(bs.renderer, bs.settings.Build.FeedLimit, bs.feedLoc, bs.site)
	xml, err := gen.Build(bs.posts, bs.now)
	if err != nil {
		return err
	}
	if err := bs.renderer.WritePage(feed.FileName, xml); err != nil {
		return err
	}
	bs.report.FeedEntries = min(len(bs.posts), bs.settings.Build.FeedLimit)
	return nil
}

// stageResources copies the template directory's static files (anything not
// ending in .html or .xml) into the output root.
func stageResources(_ context.Context, bs *buildState) error {
	s := bs.settings
	copied, err := fsutil.CopyFilesExcept(s.Site.TemplateDir, s.Site.OutputDir, func(name string) bool {
		return strings.HasSuffix(name, ".html") || strings.HasSuffix(name, ".xml")
	})
	if err != nil {
		return errors.FileSystemError("failed to copy template resources").
			WithCause(err).
			WithContext("path", s.Site.TemplateDir).
			Build()
	}
	bs.logger.Debug("Copied template resources", slog.Int("files", len(copied)))
	return nil
}
