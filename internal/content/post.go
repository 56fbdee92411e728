package content

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
	_ "time/tzdata" // feed time zones must load on hosts without zoneinfo

	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
)

// RawDocument is a parsed source file that passed the title check.
type RawDocument struct {
	Source string // absolute path
	Name   string // file name, used as ordering tie-break
	Meta   frontmatter.Metadata
	HTML   string
}

// Title returns the first title value.
func (d *RawDocument) Title() string {
	title, _ := d.Meta.First("title")
	return title
}

// Date returns the first date value.
func (d *RawDocument) Date() string {
	date, _ := d.Meta.First("date")
	return date
}

// Post is a rendered document. It is not modified after rendering.
type Post struct {
	Fields   map[string]string // flattened metadata, title already typeset
	Slug     string
	URL      string
	Image    string
	Content  string // post body HTML with assets rewritten
	Rendered string // post-content fragment
	RawDate  string
	Date     time.Time // zero when RawDate does not parse
	Source   string
}

// Data returns the template data for the post. Metadata keys come first so
// derived values always win.
func (p *Post) Data() map[string]any {
	data := make(map[string]any, len(p.Fields)+6)
	for k, v := range p.Fields {
		data[k] = v
	}
	data["content"] = p.Content
	data["postURL"] = p.URL
	data["image"] = p.Image
	data["date"] = p.RawDate
	data["slug"] = p.Slug
	if p.Rendered != "" {
		data["post-content"] = p.Rendered
	}
	return data
}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate parses a frontmatter date in loc. Only the layouts the site has
// historically used are accepted.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q (want YYYY-MM-DD HH:MM:SS)", raw)
}

// SortPosts orders posts newest first. The raw date strings sort
// chronologically for the accepted layouts; equal dates fall back to source
// file name ascending so output does not depend on directory order.
func SortPosts(posts []*Post) {
	slices.SortStableFunc(posts, func(a, b *Post) int {
		if c := cmp.Compare(b.RawDate, a.RawDate); c != 0 {
			return c
		}
		return cmp.Compare(a.Source, b.Source)
	})
}
