package markdown

import (
	"bytes"
	"cmp"
	"slices"
)

// span replaces src[start:end] with repl.
type span struct {
	start, end int
	repl       []byte
}

// splice applies spans to src. When spans overlap the one starting first
// wins, and the longer one on equal starts; the others are dropped.
func splice(src []byte, spans []span) []byte {
	if len(spans) == 0 {
		return src
	}
	sorted := slices.Clone(spans)
	slices.SortFunc(sorted, func(a, b span) int {
		if c := cmp.Compare(a.start, b.start); c != 0 {
			return c
		}
		return cmp.Compare(b.end, a.end)
	})

	var buf bytes.Buffer
	buf.Grow(len(src))
	pos := 0
	for _, s := range sorted {
		if s.start < pos || s.end < s.start || s.end > len(src) {
			continue
		}
		buf.Write(src[pos:s.start])
		buf.Write(s.repl)
		pos = s.end
	}
	buf.Write(src[pos:])
	return buf.Bytes()
}
