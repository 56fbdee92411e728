package errors

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation", err: ValidationError("bad flag").Build(), expected: 2},
		{name: "config", err: ConfigError("bad settings").Build(), expected: 7},
		{name: "template", err: TemplateError("missing").Build(), expected: 11},
		{name: "feed", err: FeedError("bad date").Build(), expected: 11},
		{name: "watch", err: WatchError("fsnotify").Build(), expected: 12},
		{name: "internal", err: InternalError("bug").Build(), expected: 10},
		{name: "unclassified", err: errors.New("boom"), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tt.err); got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	err := TemplateError("template not found").WithContext("template", "post-page").Build()

	quiet := NewCLIErrorAdapter(false, slog.Default())
	msg := quiet.FormatError(err)
	if !strings.HasPrefix(msg, "Error: template not found") {
		t.Errorf("unexpected quiet message %q", msg)
	}
	if !strings.Contains(msg, "template: post-page") {
		t.Errorf("expected context in message, got %q", msg)
	}

	verbose := NewCLIErrorAdapter(true, slog.Default())
	if got := verbose.FormatError(err); !strings.Contains(got, "[template:fatal]") {
		t.Errorf("expected classified prefix in verbose output, got %q", got)
	}

	if got := quiet.FormatError(InternalError("x").Build()); !strings.Contains(got, "use -v") {
		t.Errorf("expected internal errors to be hidden, got %q", got)
	}
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var out, logs bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	adapter.out = &out
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(ConfigError("settings file not found").Build())

	if code != 7 {
		t.Errorf("expected exit code 7, got %d", code)
	}
	if !strings.Contains(out.String(), "settings file not found") {
		t.Errorf("expected message on output, got %q", out.String())
	}
	if !strings.Contains(logs.String(), "category=config") {
		t.Errorf("expected fatal error to be logged, got %q", logs.String())
	}
}
