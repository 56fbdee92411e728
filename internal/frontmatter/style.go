package frontmatter

import "bytes"

// Style is the newline convention of a source file. Rendered documents keep
// the convention of the file they were parsed from.
type Style struct {
	Newline string
}

func (s Style) nl() string {
	if s.Newline == "" {
		return "\n"
	}
	return s.Newline
}

// detectStyle looks at the first line ending only.
func detectStyle(content []byte) Style {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return Style{Newline: "\r\n"}
	}
	return Style{Newline: "\n"}
}

// delimit fences raw metadata with marker lines ("---" or "+++") and
// appends body.
func delimit(marker string, raw, body []byte, nl string) []byte {
	fence := marker + nl
	var buf bytes.Buffer
	buf.Grow(2*len(fence) + len(raw) + len(body))
	buf.WriteString(fence)
	buf.Write(raw)
	if len(raw) > 0 && !bytes.HasSuffix(raw, []byte(nl)) {
		buf.WriteString(nl)
	}
	buf.WriteString(fence)
	buf.Write(body)
	return buf.Bytes()
}
