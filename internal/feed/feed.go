// Package feed builds the site's Atom feed from the ordered post list.
package feed

import (
	"html"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/sitebuilder/internal/content"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
)

// FileName is the feed output file.
const FileName = "feed.xml"

// GenTimeLayout formats the feed generation time.
const GenTimeLayout = "2006-01-02T15:04:05.000000Z"

// DefaultLimit caps the number of entries.
const DefaultLimit = 50

// disallowed elements are removed from entry content.
const disallowed = "script, object, iframe"

// TemplateRenderer renders named templates.
type TemplateRenderer interface {
	Render(name string, data map[string]any) (string, error)
}

// Entry is the sanitized projection of a post used by the entry template.
type Entry struct {
	Title   string // HTML escaped
	Date    string // RFC 3339, UTC
	Content string
	Data    map[string]any
}

// Generator renders the feed. Site values are added to the feed-level data.
type Generator struct {
	renderer TemplateRenderer
	limit    int
	loc      *time.Location
	site     map[string]any
}

// NewGenerator creates a Generator. Post dates are read in loc.
func NewGenerator(renderer TemplateRenderer, limit int, loc *time.Location, site map[string]any) *Generator {
	if limit < 1 {
		limit = DefaultLimit
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Generator{renderer: renderer, limit: limit, loc: loc, site: site}
}

// Entries converts every post, newest first as given. A post with a date
// that does not parse fails the whole feed.
func (g *Generator) Entries(posts []*content.Post) ([]Entry, error) {
	entries := make([]Entry, 0, len(posts))
	for _, p := range posts {
		date, err := RFC3339(p.RawDate, g.loc)
		if err != nil {
			return nil, errors.FeedError("malformed post date").
				WithCause(err).
				WithContext("slug", p.Slug).
				WithContext("date", p.RawDate).
				Build()
		}
		body, err := Sanitize(p.Content)
		if err != nil {
			return nil, errors.FeedError("failed to sanitize post content").
				WithCause(err).
				WithContext("slug", p.Slug).
				Build()
		}

		title := html.EscapeString(markdown.StripTags(p.Fields["title"]))
		data := p.Data()
		data["date"] = date
		data["content"] = body
		data["title"] = title
		entries = append(entries, Entry{Title: title, Date: date, Content: body, Data: data})
	}
	return entries, nil
}

// Build renders the feed document from the first limit posts. posts must
// not be empty.
func (g *Generator) Build(posts []*content.Post, now time.Time) (string, error) {
	if len(posts) == 0 {
		return "", errors.FeedError("feed requires at least one post").Build()
	}

	entries, err := g.Entries(posts[:min(len(posts), g.limit)])
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, e := range entries {
		out, err := g.renderer.Render(render.TemplateAtomEntry, e.Data)
		if err != nil {
			return "", err
		}
		b.WriteString(out)
	}

	data := render.Merge(posts[0].Data(), g.site)
	data["gen-time"] = now.UTC().Format(GenTimeLayout)
	data["atom-entry"] = b.String()
	return g.renderer.Render(render.TemplateAtom, data)
}

// RFC3339 converts a local "YYYY-MM-DD HH:MM:SS" date read in loc to UTC
// with a Z suffix.
func RFC3339(raw string, loc *time.Location) (string, error) {
	t, err := content.ParseDate(raw, loc)
	if err != nil {
		return "", err
	}
	return t.UTC().Format("2006-01-02T15:04:05Z"), nil
}

// Sanitize removes script, object and iframe elements from an HTML fragment.
func Sanitize(fragment string) (string, error) {
	container := &nethtml.Node{Type: nethtml.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := nethtml.ParseFragment(strings.NewReader(fragment), container)
	if err != nil {
		return "", err
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	sel := goquery.NewDocumentFromNode(container).Selection
	sel.Find(disallowed).Remove()
	return sel.Html()
}
