package site

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/content"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
)

func stageParse(_ context.Context, bs *buildState) error {
	docs, rejected, err := bs.parser.ParseDir(bs.settings.Site.ContentDir)
	if err != nil {
		return err
	}
	bs.docs = docs
	bs.report.Rejected = rejected
	bs.recorder.AddDocumentsRejected(rejected)
	return nil
}

// stageConflicts finds documents that map to the same slug. In error mode the
// build fails before anything is written.
func stageConflicts(_ context.Context, bs *buildState) error {
	sources := map[string][]string{}
	for _, doc := range bs.docs {
		slug := content.Slug(doc.Title(), doc.Date())
		sources[slug] = append(sources[slug], doc.Name)
	}

	bs.conflicts = map[string]bool{}
	var slugs []string
	for slug, names := range sources {
		if len(names) > 1 {
			bs.conflicts[slug] = true
			slugs = append(slugs, slug)
		}
	}
	if len(slugs) == 0 {
		return nil
	}
	sort.Strings(slugs)
	bs.report.SlugConflicts = slugs

	if bs.settings.Build.SlugConflicts == config.SlugConflictError {
		return errors.ContentError("multiple posts share a slug").
			Fatal().
			WithContext("slugs", strings.Join(slugs, ",")).
			Build()
	}
	for _, slug := range slugs {
		bs.logger.Warn("Posts share a slug; the last source in name order wins",
			logfields.Slug(slug), logfields.Path(strings.Join(sources[slug], ",")))
	}
	return errors.ContentError("multiple posts share a slug").
		Warning().
		WithContext("slugs", strings.Join(slugs, ",")).
		Build()
}

// renderedPage is a post page held back until after the join.
type renderedPage struct {
	slug string
	text string
}

// stageRender renders posts concurrently, then joins the about page.
func stageRender(ctx context.Context, bs *buildState) error {
	posts := make([]*content.Post, len(bs.docs))
	deferred := make([]*renderedPage, len(bs.docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bs.settings.Build.Workers)
	for i, doc := range bs.docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			post, page, err := bs.renderPost(doc)
			if err != nil {
				return err
			}
			posts[i] = post
			if bs.conflicts[post.Slug] {
				deferred[i] = &renderedPage{slug: post.Slug, text: page}
				return nil
			}
			return bs.renderer.WritePage(post.Slug+".html", page)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// docs are in source name order, so the last writer is the last source.
	for _, page := range deferred {
		if page == nil {
			continue
		}
		if err := bs.renderer.WritePage(page.slug+".html", page.text); err != nil {
			return err
		}
	}

	bs.posts = posts
	bs.report.Posts = len(posts)
	bs.recorder.AddPostsRendered(len(posts))

	return bs.waitAbout()
}

// renderPost derives the post from a document and renders its page text.
func (bs *buildState) renderPost(doc *content.RawDocument) (*content.Post, string, error) {
	s := bs.settings
	rawTitle, date := doc.Title(), doc.Date()
	slug := content.Slug(rawTitle, date)

	title, err := bs.engine.Title(rawTitle)
	if err != nil {
		return nil, "", errors.ContentError("failed to typeset title").WithCause(err).WithContext("path", doc.Source).Build()
	}

	fields := doc.Meta.Flatten()
	fields["title"] = title
	for k, v := range bs.site {
		if str, ok := v.(string); ok {
			fields[k] = str
		}
	}

	image := s.Site.OGPDefaultImage
	if v, ok := doc.Meta.First("image"); ok && v != "" {
		image = bs.rewriter.RewriteSingle(v, slug, s.Site.ContentDir)
	}

	post := &content.Post{
		Fields:  fields,
		Slug:    slug,
		URL:     content.PostURL(s.Site.WebRoot, slug),
		Image:   image,
		Content: bs.rewriter.Rewrite(doc.HTML, slug, s.Site.ContentDir),
		RawDate: date,
		Source:  doc.Name,
	}
	if t, err := content.ParseDate(date, bs.feedLoc); err == nil {
		post.Date = t
	}

	fragment := render.TemplatePostContent
	if doc.Meta.Has("link") {
		fragment = render.TemplatePostContentLink
	}
	rendered, err := bs.renderer.Render(fragment, post.Data())
	if err != nil {
		return nil, "", err
	}
	post.Rendered = rendered

	page, err := bs.renderer.Render(render.TemplatePostPage, post.Data())
	if err != nil {
		return nil, "", err
	}
	bs.logger.Debug("Rendered post", logfields.Slug(slug), logfields.Path(doc.Source))
	return post, page, nil
}

func stageSort(_ context.Context, bs *buildState) error {
	content.SortPosts(bs.posts)
	return nil
}
