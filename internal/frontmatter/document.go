package frontmatter

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/adrg/frontmatter"
)

// Format identifies how a document stores its metadata.
type Format int

const (
	// FormatNone means the document carries no metadata.
	FormatNone Format = iota
	// FormatHeader is the "Key: value" header block ended by a blank line.
	FormatHeader
	// FormatYAML is a `---` delimited YAML block.
	FormatYAML
	// FormatTOML is a `+++` delimited TOML block.
	FormatTOML
)

func (f Format) String() string {
	switch f {
	case FormatHeader:
		return "header"
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	default:
		return "none"
	}
}

// Document is a source file split into metadata and markdown body.
type Document struct {
	Meta   Metadata
	Body   []byte
	Format Format
	Style  Style

	// order keeps header keys in source order for Render.
	order []string
}

// Parse extracts metadata from content. Delimited YAML and TOML blocks are
// decoded with adrg/frontmatter; anything else is tried as a header block.
func Parse(content []byte) (*Document, error) {
	style := detectStyle(content)
	format := delimitedFormat(content, style.Newline)

	if format == FormatNone {
		meta, order, body := parseHeader(content)
		doc := &Document{Meta: meta, Body: body, Format: FormatHeader, Style: style, order: order}
		if len(order) == 0 {
			doc.Format = FormatNone
		}
		return doc, nil
	}

	fields := map[string]any{}
	body, err := frontmatter.Parse(bytes.NewReader(content), &fields)
	if err != nil {
		return nil, fmt.Errorf("parse %s frontmatter: %w", format, err)
	}
	return &Document{Meta: fromFields(fields), Body: body, Format: format, Style: style}, nil
}

// Render writes doc back in its own metadata format. Documents without
// metadata but with Meta set are rendered in header style.
func Render(doc *Document) ([]byte, error) {
	nl := doc.Style.nl()

	switch doc.Format {
	case FormatYAML:
		raw, err := SerializeYAML(doc.Meta, doc.Style)
		if err != nil {
			return nil, fmt.Errorf("serialize yaml frontmatter: %w", err)
		}
		return delimit("---", raw, doc.Body, nl), nil
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(toFields(doc.Meta)); err != nil {
			return nil, fmt.Errorf("serialize toml frontmatter: %w", err)
		}
		raw := buf.Bytes()
		if nl != "\n" {
			raw = bytes.ReplaceAll(raw, []byte("\n"), []byte(nl))
		}
		return delimit("+++", raw, doc.Body, nl), nil
	default:
		if len(doc.Meta) == 0 {
			return doc.Body, nil
		}
		return renderHeader(doc.Meta, doc.order, doc.Body, nl), nil
	}
}

func delimitedFormat(content []byte, nl string) Format {
	switch {
	case bytes.HasPrefix(content, []byte("---"+nl)):
		return FormatYAML
	case bytes.HasPrefix(content, []byte("+++"+nl)):
		return FormatTOML
	default:
		return FormatNone
	}
}

// toFields converts Metadata into encoder input: single values stay scalar.
func toFields(m Metadata) map[string]any {
	fields := make(map[string]any, len(m))
	for k, v := range m {
		switch len(v) {
		case 0:
		case 1:
			fields[k] = v[0]
		default:
			fields[k] = append([]string(nil), v...)
		}
	}
	return fields
}
