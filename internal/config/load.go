package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Load reads, defaults, resolves and validates a settings file. The format is
// chosen by extension: .toml, or .yaml/.yml.
func Load(path string) (*Settings, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ferrors.ConfigError("settings file not found").
				WithContext("path", path).
				Build()
		}
		return nil, ferrors.ConfigError("failed to read settings file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}

	s, err := Parse(filepath.Ext(path), []byte(os.ExpandEnv(string(data))))
	if err != nil {
		if c, ok := ferrors.AsClassified(err); ok {
			return nil, c.WithContext("path", path)
		}
		return nil, err
	}
	return s, nil
}

// Parse decodes settings content in the format named by ext and returns the
// finished, validated settings.
func Parse(ext string, data []byte) (*Settings, error) {
	var s Settings
	switch strings.ToLower(ext) {
	case ".toml":
		md, err := toml.Decode(string(data), &s)
		if err != nil {
			return nil, ferrors.ConfigError("failed to parse TOML settings").WithCause(err).Build()
		}
		for _, key := range md.Undecoded() {
			slog.Warn("Ignoring unknown settings key", "key", key.String())
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, ferrors.ConfigError("failed to parse YAML settings").WithCause(err).Build()
		}
	default:
		return nil, ferrors.ConfigError("unsupported settings file format").
			WithContext("extension", ext).
			Build()
	}

	s.applyDefaults()
	s.resolvePaths()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
