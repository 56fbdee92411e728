// Package pagination splits the ordered post list into index pages and
// computes their navigation links.
//
// "Previous" points at older posts (a higher page number) and "Next" at
// newer posts. The links follow the site's historic scheme exactly,
// including the asymmetry between the first two pages and the rest.
package pagination

import (
	"strconv"

	"git.home.luguber.info/inful/sitebuilder/internal/content"
)

// Page is one index page.
type Page struct {
	Number   int // zero based
	FileName string
	Posts    []*content.Post
	Previous string // empty when absent
	Next     string // empty when absent
}

// FileName returns the output file of page n (zero based).
func FileName(n int) string {
	if n == 0 {
		return "index.html"
	}
	return "index" + strconv.Itoa(n+1) + ".html"
}

// Paginate partitions posts into pages of size posts. With no posts a single
// empty first page is returned so the site always has an index.
func Paginate(posts []*content.Post, size int, webRoot string) []Page {
	if size < 1 {
		size = 1
	}
	if len(posts) == 0 {
		return []Page{{Number: 0, FileName: FileName(0)}}
	}

	total := (len(posts) + size - 1) / size
	pages := make([]Page, 0, total)
	for k := 0; k < total; k++ {
		end := min((k+1)*size, len(posts))
		page := Page{Number: k, FileName: FileName(k), Posts: posts[k*size : end]}

		switch {
		case k == 0:
			if total > 1 {
				page.Previous = webRoot + "index2.html"
			}
		case k == 1:
			page.Next = webRoot + "index.html"
			if total > 2 {
				page.Previous = webRoot + "index3.html"
			}
		default:
			if k+1 < total {
				page.Previous = webRoot + "index" + strconv.Itoa(k+2) + ".html"
			}
			page.Next = webRoot + "index" + strconv.Itoa(k-1) + ".html"
		}
		pages = append(pages, page)
	}
	return pages
}
