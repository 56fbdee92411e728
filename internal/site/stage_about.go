package site

import (
	"context"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/content"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
)

// AboutPage is the output file of the about page.
const AboutPage = "about.html"

// stageAbout starts rendering the about page in the background. The render
// stage joins it.
func stageAbout(_ context.Context, bs *buildState) error {
	path := filepath.Join(bs.settings.Site.ContentDir, content.AboutFile)
	if _, err := os.Stat(path); err != nil {
		bs.logger.Info("No about page source; skipping", logfields.Path(path))
		return nil
	}

	bs.aboutDone = make(chan error, 1)
	go func() {
		bs.aboutDone <- bs.writeAbout(path)
	}()
	return nil
}

func (bs *buildState) writeAbout(path string) error {
	src, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return errors.FileSystemError("failed to read about page").WithCause(err).WithContext("path", path).Build()
	}
	doc, err := frontmatter.Parse(src)
	if err != nil {
		bs.logger.Warn("Ignoring unreadable about page metadata", logfields.Path(path), logfields.Error(err))
		doc = &frontmatter.Document{Body: src}
	}
	html, err := bs.engine.Convert(doc.Body)
	if err != nil {
		return errors.ContentError("failed to convert about page").WithCause(err).WithContext("path", path).Build()
	}

	data := render.Merge(bs.site, map[string]any{"about": html})
	if err := bs.renderer.RenderToFile(render.TemplateAbout, AboutPage, data); err != nil {
		return err
	}

	bs.report.mu.Lock()
	bs.report.AboutWritten = true
	bs.report.mu.Unlock()
	return nil
}
