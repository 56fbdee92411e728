package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

const exampleHeader = "sitebuilder settings. Directories are relative to site.root."

// Example returns a settings value suitable as a starting point for new sites.
func Example() *Settings {
	s := Default()
	s.Site.WebRoot = "https://example.com/"
	s.Site.SiteName = "My Site"
	s.Site.Author = "Your Name"
	s.Site.OGPDefaultImage = "https://example.com/images/default.jpg"
	s.Build.Workers = 0
	return s
}

// WriteExample writes an example settings file in the format implied by the
// extension of path.
func WriteExample(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return ferrors.ConfigError("settings file already exists (use --force to overwrite)").
			WithContext("path", path).
			Build()
	}

	var buf bytes.Buffer
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		buf.WriteString("# " + exampleHeader + "\n")
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(Example()); err != nil {
			return ferrors.InternalError("failed to encode example settings").WithCause(err).Build()
		}
		_ = enc.Close()
	default:
		buf.WriteString("# " + exampleHeader + "\n\n")
		if err := toml.NewEncoder(&buf).Encode(Example()); err != nil {
			return ferrors.InternalError("failed to encode example settings").WithCause(err).Build()
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return ferrors.FileSystemError("failed to create settings directory").WithCause(err).Build()
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return ferrors.FileSystemError("failed to write settings file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	return nil
}
