package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the site configuration. It is loaded once per process and
// treated as read-only by every build component.
type Settings struct {
	Site         SiteConfig         `yaml:"site" toml:"site"`
	Integrations IntegrationsConfig `yaml:"integrations" toml:"integrations"`
	Social       SocialConfig       `yaml:"social" toml:"social"`
	Build        BuildConfig        `yaml:"build" toml:"build"`
	Watch        WatchConfig        `yaml:"watch" toml:"watch"`
	Metrics      MetricsConfig      `yaml:"metrics" toml:"metrics"`
}

// SiteConfig holds paths and site identity.
type SiteConfig struct {
	Root            string `yaml:"root" toml:"root"`
	WebRoot         string `yaml:"web_root" toml:"web_root"`
	ContentDir      string `yaml:"content_dir" toml:"content_dir"`
	TemplateDir     string `yaml:"template_dir" toml:"template_dir"`
	OutputDir       string `yaml:"output_dir" toml:"output_dir"`
	DraftsDir       string `yaml:"drafts_dir" toml:"drafts_dir"`
	SiteName        string `yaml:"site_name" toml:"site_name"`
	Author          string `yaml:"author" toml:"author"`
	OGPDefaultImage string `yaml:"ogp_default_image" toml:"ogp_default_image"`
	PostsPerPage    int    `yaml:"posts_per_page" toml:"posts_per_page"`
	// Charset is the encoding pages are written in. Characters it cannot
	// represent are emitted as numeric character references.
	Charset string `yaml:"charset" toml:"charset"`
}

// IntegrationsConfig holds optional third-party page integrations.
type IntegrationsConfig struct {
	TypekitID       string `yaml:"typekit_id" toml:"typekit_id"`
	AnalyticsDomain string `yaml:"analytics_domain" toml:"analytics_domain"`
}

// SocialConfig holds social handles exposed to templates.
type SocialConfig struct {
	TwitterHandle string `yaml:"twitter_handle" toml:"twitter_handle"`
	FediHandle    string `yaml:"fedi_handle" toml:"fedi_handle"`
}

// SlugConflictMode selects what happens when two posts derive the same slug.
type SlugConflictMode string

const (
	SlugConflictWarn  SlugConflictMode = "warn"
	SlugConflictError SlugConflictMode = "error"
)

// BuildConfig tunes the build pipeline.
type BuildConfig struct {
	Workers       int              `yaml:"workers" toml:"workers"`
	FeedLimit     int              `yaml:"feed_limit" toml:"feed_limit"`
	FeedTimezone  string           `yaml:"feed_timezone" toml:"feed_timezone"`
	SlugConflicts SlugConflictMode `yaml:"slug_conflicts" toml:"slug_conflicts"`
}

// WatchConfig tunes the rebuild controller.
type WatchConfig struct {
	Debounce        Duration `yaml:"debounce" toml:"debounce"`
	RebuildInterval Duration `yaml:"rebuild_interval" toml:"rebuild_interval"`
	PublishDrafts   bool     `yaml:"publish_drafts" toml:"publish_drafts"`
}

// MetricsConfig enables the Prometheus textfile output.
type MetricsConfig struct {
	Textfile string `yaml:"textfile" toml:"textfile"`
}

// Duration is a time.Duration that decodes from strings like "3s" in both
// YAML and TOML settings files.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// UnmarshalText implements encoding.TextUnmarshaler (used by the TOML decoder).
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalYAML accepts duration strings; bare integers are read as seconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be a scalar, got kind %d", value.Kind)
	}
	if value.Tag == "!!int" {
		var secs int64
		if err := value.Decode(&secs); err != nil {
			return err
		}
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}
	return d.UnmarshalText([]byte(value.Value))
}

// MarshalYAML renders the duration as a string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// resolve joins dir onto root unless dir is absolute.
func resolve(root, dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(root, dir)
}
