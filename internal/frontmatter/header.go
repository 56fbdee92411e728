package frontmatter

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"
)

var (
	headerKeyRE  = regexp.MustCompile(`^[ ]{0,3}([A-Za-z0-9_-]+):\s*(.*)$`)
	headerContRE = regexp.MustCompile(`^[ ]{4,}(.*)$`)
)

// parseHeader reads "Key: value" metadata lines at the top of a document.
// Indented lines continue the previous key. The block ends at the first line
// that is neither; a blank terminator line is consumed. A document whose
// first line is not a key line has no header metadata.
func parseHeader(content []byte) (Metadata, []string, []byte) {
	meta := Metadata{}
	var order []string
	var lastKey string
	offset := 0

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), len(content)+1)
	for scanner.Scan() {
		raw := scanner.Text()
		lineLen := len(raw) + 1
		line := strings.TrimRight(raw, "\r")

		if m := headerKeyRE.FindStringSubmatch(line); m != nil {
			lastKey = strings.ToLower(m[1])
			if _, seen := meta[lastKey]; !seen {
				order = append(order, lastKey)
			}
			meta[lastKey] = append(meta[lastKey], strings.TrimSpace(m[2]))
			offset += lineLen
			continue
		}
		if lastKey != "" {
			if m := headerContRE.FindStringSubmatch(line); m != nil && strings.TrimSpace(m[1]) != "" {
				meta[lastKey] = append(meta[lastKey], strings.TrimSpace(m[1]))
				offset += lineLen
				continue
			}
		}
		if lastKey != "" && strings.TrimSpace(line) == "" {
			offset += lineLen
		}
		break
	}

	if len(order) == 0 {
		return Metadata{}, nil, content
	}
	if offset > len(content) {
		offset = len(content)
	}
	return meta, order, content[offset:]
}

// renderHeader writes metadata in header style, keys in the given order
// followed by any remaining keys sorted.
func renderHeader(meta Metadata, order []string, body []byte, nl string) []byte {
	var buf bytes.Buffer
	written := map[string]bool{}
	emit := func(key string) {
		values := meta[key]
		if written[key] || len(values) == 0 {
			return
		}
		written[key] = true
		buf.WriteString(key + ": " + values[0] + nl)
		for _, v := range values[1:] {
			buf.WriteString("    " + v + nl)
		}
	}
	for _, k := range order {
		emit(k)
	}
	for _, k := range meta.Keys() {
		emit(k)
	}
	buf.WriteString(nl)
	buf.Write(body)
	return buf.Bytes()
}
