package render

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// Encoder converts rendered text into the site charset. Characters the
// charset cannot represent become numeric character references.
type Encoder struct {
	name string
	enc  encoding.Encoding // nil for UTF-8
}

// NewEncoder looks up charset by its WHATWG name or label.
func NewEncoder(charset string) (*Encoder, error) {
	if charset == "" {
		charset = "utf-8"
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, err
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(name, "utf-8") {
		return &Encoder{name: name}, nil
	}
	return &Encoder{name: name, enc: enc}, nil
}

// Name returns the canonical charset name.
func (e *Encoder) Name() string {
	return e.name
}

// Encode returns text encoded in the charset. Invalid UTF-8 is dropped first.
func (e *Encoder) Encode(text string) ([]byte, error) {
	text = strings.ToValidUTF8(text, "")
	if e.enc == nil {
		return []byte(text), nil
	}
	out, err := encoding.HTMLEscapeUnsupported(e.enc.NewEncoder()).String(text)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}
