package render

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cbroglie/mustache"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// Template file names read from the template directory.
const (
	TemplateIndex           = "index.html"
	TemplateAbout           = "about.html"
	TemplatePostPage        = "post-page.html"
	TemplatePostContent     = "post-content.html"
	TemplatePostContentLink = "post-content-link.html"
	TemplateAtom            = "atom.xml"
	TemplateAtomEntry       = "atom-entry.xml"
)

// Renderer renders templates from one template directory into one output
// directory. Parsed templates are cached for the Renderer's lifetime, which
// is a single build. It is safe for concurrent use.
type Renderer struct {
	templateDir string
	outputDir   string
	encoder     *Encoder
	logger      *slog.Logger

	mu    sync.Mutex
	cache map[string]*mustache.Template
}

// New creates a Renderer. A nil encoder writes UTF-8.
func New(templateDir, outputDir string, encoder *Encoder, logger *slog.Logger) *Renderer {
	if encoder == nil {
		encoder = &Encoder{name: "utf-8"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		templateDir: templateDir,
		outputDir:   outputDir,
		encoder:     encoder,
		logger:      logger,
		cache:       map[string]*mustache.Template{},
	}
}

// Render renders the named template with data.
func (r *Renderer) Render(name string, data map[string]any) (string, error) {
	tmpl, err := r.template(name)
	if err != nil {
		return "", err
	}
	out, err := tmpl.Render(sanitize(data))
	if err != nil {
		// Substitution problems never abort a build.
		r.logger.Debug("Template substitution error ignored", logfields.Template(name), logfields.Error(err))
	}
	return out, nil
}

// RenderToFile renders the named template and writes it to relPath.
func (r *Renderer) RenderToFile(name, relPath string, data map[string]any) error {
	text, err := r.Render(name, data)
	if err != nil {
		return err
	}
	return r.WritePage(relPath, text)
}

// WritePage encodes text in the site charset and writes it below the output
// directory, replacing any existing file.
func (r *Renderer) WritePage(relPath, text string) error {
	cleanRel := filepath.Clean(relPath)
	if filepath.IsAbs(cleanRel) || cleanRel == ".." || strings.HasPrefix(cleanRel, ".."+string(filepath.Separator)) {
		return errors.InternalError("output path escapes output directory").
			WithContext("path", relPath).
			Build()
	}

	data, err := r.encoder.Encode(text)
	if err != nil {
		return errors.BuildError("failed to encode page").
			WithCause(err).
			WithContext("path", relPath).
			WithContext("charset", r.encoder.Name()).
			Build()
	}

	fullPath := filepath.Join(r.outputDir, cleanRel)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return errors.FileSystemError("failed to create output directory").
			WithCause(err).
			WithContext("path", filepath.Dir(fullPath)).
			Build()
	}
	// #nosec G306 -- published site files are world readable.
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return errors.FileSystemError("failed to write page").
			WithCause(err).
			WithContext("path", fullPath).
			Build()
	}
	return nil
}

func (r *Renderer) template(name string) (*mustache.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tmpl, ok := r.cache[name]; ok {
		return tmpl, nil
	}

	path := filepath.Join(r.templateDir, name)
	src, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.TemplateError("required template is missing").
			WithCause(err).
			WithContext("template", path).
			Build()
	}

	partials := &mustache.FileProvider{
		Paths:      []string{r.templateDir},
		Extensions: []string{".mustache", ".html"},
	}
	tmpl, err := mustache.ParseStringPartials(string(src), partials)
	if err != nil {
		return nil, errors.TemplateError(fmt.Sprintf("failed to parse template %s", name)).
			WithCause(err).
			WithContext("template", path).
			Build()
	}
	r.cache[name] = tmpl
	return tmpl, nil
}

// sanitize drops invalid UTF-8 from every string reachable from v.
func sanitize(v any) any {
	switch vv := v.(type) {
	case string:
		return strings.ToValidUTF8(vv, "")
	case map[string]any:
		out := make(map[string]any, len(vv))
		for k, val := range vv {
			out[k] = sanitize(val)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(vv))
		for k, val := range vv {
			out[k] = strings.ToValidUTF8(val, "")
		}
		return out
	case []map[string]any:
		out := make([]any, len(vv))
		for i, val := range vv {
			out[i] = sanitize(val)
		}
		return out
	case []any:
		out := make([]any, len(vv))
		for i, val := range vv {
			out[i] = sanitize(val)
		}
		return out
	default:
		return v
	}
}
