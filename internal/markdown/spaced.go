package markdown

import (
	"regexp"
	"strings"
)

var (
	spacedImage = regexp.MustCompile(`!\[[^\]]*\]\(([^)"]*[ \t][^)"]*)\)`)
	inlineCode  = regexp.MustCompile("`[^`]*`")
)

// spacedImageTargets finds `![alt](my photo.png)` references, which
// CommonMark does not treat as images because the destination has a space.
// Fenced and indented code is skipped.
func spacedImageTargets(body []byte) []string {
	var (
		out   []string
		fence string
	)
	for _, line := range strings.Split(string(body), "\n") {
		trimmed := strings.TrimSpace(line)
		if marker := fenceMarker(trimmed); marker != "" {
			switch fence {
			case "":
				fence = marker
			case marker:
				fence = ""
			}
			continue
		}
		if fence != "" || strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t") {
			continue
		}
		line = inlineCode.ReplaceAllString(line, "")
		for _, m := range spacedImage.FindAllStringSubmatch(line, -1) {
			out = append(out, strings.TrimSpace(m[1]))
		}
	}
	return out
}

func fenceMarker(line string) string {
	for _, m := range []string{"```", "~~~"} {
		if strings.HasPrefix(line, m) {
			return m
		}
	}
	return ""
}
