// Package content turns markdown source files into posts: it reads and
// parses documents, rejects those without a usable title, derives slugs and
// URLs, and orders the resulting posts.
package content
