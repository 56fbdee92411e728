// Package render wraps the mustache template engine: it loads and caches the
// site templates, renders page data, and writes pages to the output
// directory in the configured character set.
//
// Rendering is best effort. Missing variables render empty and invalid UTF-8
// in data values is dropped. A missing template is fatal.
package render
