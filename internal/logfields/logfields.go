package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyPath       = "path"
	KeySlug       = "slug"
	KeyTemplate   = "template"
	KeyPage       = "page"
	KeyPosts      = "posts"
	KeyRejected   = "rejected"
	KeyDurationMS = "duration_ms"
	KeyState      = "state"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Slug(s string) slog.Attr         { return slog.String(KeySlug, s) }
func Template(name string) slog.Attr  { return slog.String(KeyTemplate, name) }
func Page(file string) slog.Attr      { return slog.String(KeyPage, file) }
func Posts(n int) slog.Attr           { return slog.Int(KeyPosts, n) }
func Rejected(n int) slog.Attr        { return slog.Int(KeyRejected, n) }
func State(s string) slog.Attr        { return slog.String(KeyState, s) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }

// Duration converts d into the canonical duration_ms attribute.
func Duration(d time.Duration) slog.Attr {
	return DurationMS(float64(d.Microseconds()) / 1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
