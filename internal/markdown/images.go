package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// ImageDestinations returns the destinations of markdown image references in
// body, in document order, without duplicates.
func ImageDestinations(body []byte) []string {
	md := goldmark.New()
	ctx := parser.NewContext()
	root := md.Parser().Parse(text.NewReader(body), parser.WithContext(ctx))

	seen := map[string]bool{}
	var out []string
	add := func(dest string) {
		if dest == "" || seen[dest] {
			return
		}
		seen[dest] = true
		out = append(out, dest)
	}

	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if img, ok := n.(*gmast.Image); ok {
			add(string(img.Destination))
		}
		return gmast.WalkContinue, nil
	})

	for _, dest := range spacedImageTargets(body) {
		add(dest)
	}
	return out
}

// RewriteImageDestinations replaces every markdown image destination in body
// with rewrite(dest) and leaves the rest of the document byte-for-byte intact.
func RewriteImageDestinations(body []byte, rewrite func(dest string) string) []byte {
	var spans []span
	for _, dest := range ImageDestinations(body) {
		if repl := rewrite(dest); repl != dest {
			spans = append(spans, imageSpans(body, dest, repl)...)
		}
	}
	return splice(body, spans)
}

// imageSpans locates `](dest)` and `](dest "title")` occurrences of dest
// that belong to an image.
func imageSpans(body []byte, dest, repl string) []span {
	needle := []byte("](" + dest)
	var spans []span
	for offset := 0; ; {
		idx := bytes.Index(body[offset:], needle)
		if idx < 0 {
			return spans
		}
		start := offset + idx + 2
		end := start + len(dest)
		offset = end
		if end >= len(body) || (body[end] != ')' && body[end] != ' ') || !isImageLink(body, start) {
			continue
		}
		spans = append(spans, span{start: start, end: end, repl: []byte(repl)})
	}
}

// isImageLink reports whether the `](` before destStart closes an `![...]`.
func isImageLink(body []byte, destStart int) bool {
	closeBracket := destStart - 2
	depth := 0
	for i := closeBracket; i >= 0; i-- {
		switch body[i] {
		case ']':
			depth++
		case '[':
			depth--
			if depth == 0 {
				return i > 0 && body[i-1] == '!'
			}
		case '\n':
			return false
		}
	}
	return false
}
