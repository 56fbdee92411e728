package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Options controls the goldmark configuration used by an Engine.
type Options struct {
	// HeadingAnchors wraps every heading's text in a self link to its id.
	HeadingAnchors bool
}

// DefaultOptions is the configuration used for posts and the about page.
func DefaultOptions() Options {
	return Options{HeadingAnchors: true}
}

// Engine converts markdown bodies to HTML. It holds no per-document state and
// is safe for concurrent use.
type Engine struct {
	body   goldmark.Markdown
	inline goldmark.Markdown
}

// New builds an Engine with typographic punctuation, GFM extensions, heading
// ids and raw HTML passthrough.
func New(opts Options) *Engine {
	parserOpts := []parser.Option{parser.WithAutoHeadingID()}
	if opts.HeadingAnchors {
		parserOpts = append(parserOpts, parser.WithASTTransformers(util.Prioritized(headingAnchorTransformer{}, 999)))
	}

	return &Engine{
		body: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Typographer),
			goldmark.WithParserOptions(parserOpts...),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		inline: goldmark.New(
			goldmark.WithExtensions(extension.Typographer),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Convert renders a markdown body (metadata already removed) to HTML.
func (e *Engine) Convert(body []byte) (string, error) {
	var buf bytes.Buffer
	if err := e.body.Convert(body, &buf, parser.WithContext(parser.NewContext())); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}

// Title applies typographic punctuation to a post title and returns it as
// plain text with all markup removed.
func (e *Engine) Title(raw string) (string, error) {
	var buf bytes.Buffer
	if err := e.inline.Convert([]byte(raw), &buf); err != nil {
		return "", fmt.Errorf("convert title: %w", err)
	}
	return strings.TrimSpace(StripTags(buf.String())), nil
}

// headingAnchorTransformer turns `<h2 id="x">Text</h2>` into
// `<h2 id="x"><a class="toclink" href="#x">Text</a></h2>`.
type headingAnchorTransformer struct{}

func (headingAnchorTransformer) Transform(doc *gmast.Document, _ text.Reader, _ parser.Context) {
	_ = gmast.Walk(doc, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		heading, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}
		id, ok := heading.AttributeString("id")
		if !ok {
			return gmast.WalkSkipChildren, nil
		}
		idBytes, ok := id.([]byte)
		if !ok || len(idBytes) == 0 || !heading.HasChildren() {
			return gmast.WalkSkipChildren, nil
		}

		link := gmast.NewLink()
		link.Destination = append([]byte("#"), idBytes...)
		link.SetAttributeString("class", []byte("toclink"))
		for c := heading.FirstChild(); c != nil; {
			next := c.NextSibling()
			link.AppendChild(link, c)
			c = next
		}
		heading.AppendChild(heading, link)
		return gmast.WalkSkipChildren, nil
	})
}
