package content

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
)

// AboutFile is the about page source inside the content directory. It is
// never treated as a post.
const AboutFile = "about.markdown"

var validTitle = regexp.MustCompile(`^[A-Za-z0-9]`)

// Converter renders markdown bodies to HTML.
type Converter interface {
	Convert(body []byte) (string, error)
}

// Parser reads source documents. It keeps no per-document state, so a
// single Parser may be shared by concurrent callers.
type Parser struct {
	converter Converter
	webRoot   string
	logger    *slog.Logger
}

// NewParser creates a parser. webRoot enables the http to https upgrade of
// self links when it is an https URL.
func NewParser(converter Converter, webRoot string, logger *slog.Logger) *Parser {
	if converter == nil {
		converter = markdown.New(markdown.DefaultOptions())
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{converter: converter, webRoot: webRoot, logger: logger}
}

// ParseFile reads and converts one document. ok is false when the document
// is rejected (no usable title or unreadable metadata); err is reserved for
// I/O and conversion failures.
func (p *Parser) ParseFile(path string) (doc *RawDocument, ok bool, err error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, false, errors.FileSystemError("failed to read content file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}

	parsed, err := frontmatter.Parse(data)
	if err != nil {
		p.logger.Debug("Rejected document with unreadable metadata", logfields.Path(path), logfields.Error(err))
		return nil, false, nil
	}

	title, _ := parsed.Meta.First("title")
	if !ValidTitle(title) {
		p.logger.Debug("Rejected document without usable title", logfields.Path(path))
		return nil, false, nil
	}

	html, err := p.converter.Convert(parsed.Body)
	if err != nil {
		return nil, false, errors.ContentError("failed to convert markdown").
			WithCause(err).
			WithContext("path", path).
			Build()
	}

	return &RawDocument{
		Source: path,
		Name:   filepath.Base(path),
		Meta:   parsed.Meta,
		HTML:   UpgradeSelfLinks(html, p.webRoot),
	}, true, nil
}

// ParseDir parses every post source in dir in file name order and returns
// the accepted documents together with the number of rejected ones.
func (p *Parser) ParseDir(dir string) ([]*RawDocument, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, errors.FileSystemError("failed to list content directory").
			WithCause(err).
			WithContext("path", dir).
			Build()
	}

	var docs []*RawDocument
	rejected := 0
	for _, entry := range entries {
		if entry.IsDir() || !IsPostSource(entry.Name()) {
			continue
		}
		doc, ok, err := p.ParseFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, rejected, err
		}
		if !ok {
			rejected++
			continue
		}
		docs = append(docs, doc)
	}

	p.logger.Debug("Parsed content directory", logfields.Path(dir), logfields.Posts(len(docs)), logfields.Rejected(rejected))
	return docs, rejected, nil
}

// ValidTitle reports whether title starts with an ASCII letter or digit.
func ValidTitle(title string) bool {
	return validTitle.MatchString(title)
}

// IsMarkdown reports whether name has a markdown extension.
func IsMarkdown(name string) bool {
	return strings.HasSuffix(name, ".md") || strings.HasSuffix(name, ".markdown")
}

// IsPostSource reports whether name is a post candidate: a visible markdown
// file other than the about page.
func IsPostSource(name string) bool {
	return IsMarkdown(name) && name != AboutFile && !strings.HasPrefix(name, ".")
}

// UpgradeSelfLinks rewrites http links to the site's own host to https when
// the site itself is served over https.
func UpgradeSelfLinks(html, webRoot string) string {
	base, ok := strings.CutPrefix(webRoot, "https://")
	if !ok || base == "" {
		return html
	}
	return strings.ReplaceAll(html, "http://"+base, "https://"+base)
}
