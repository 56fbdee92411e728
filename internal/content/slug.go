package content

import (
	"regexp"
	"strings"
)

// space matches Unicode whitespace, which RE2's \s does not.
const space = `\s\v\x{85}\p{Z}`

var (
	isolatedPunctuation = regexp.MustCompile(`[` + space + `][^a-zA-Z0-9][` + space + `]`)
	nonSlugCharacters   = regexp.MustCompile(`[^a-zA-Z0-9` + space + `]+`)
	slugSeparators      = regexp.MustCompile(`[` + space + `]`)
)

// RemovePunctuation collapses single punctuation characters surrounded by
// whitespace into a space and drops every remaining character that is not
// an ASCII letter, digit or whitespace character.
func RemovePunctuation(title string) string {
	title = isolatedPunctuation.ReplaceAllString(title, " ")
	return nonSlugCharacters.ReplaceAllString(title, "")
}

// Slug derives the post identifier from its title and date:
// "2024-01-15 10:00:00" + "My Test Post" gives "2024-01-15-My-Test-Post".
func Slug(title, date string) string {
	name := slugSeparators.ReplaceAllString(RemovePunctuation(title), "-")

	var parts []string
	for _, part := range strings.Split(name, "-") {
		if part != "" {
			parts = append(parts, part)
		}
	}

	day, _, _ := strings.Cut(date, " ")
	return day + "-" + strings.Join(parts, "-")
}

// PostURL returns the absolute URL of the page for slug.
func PostURL(webRoot, slug string) string {
	return webRoot + slug + ".html"
}
