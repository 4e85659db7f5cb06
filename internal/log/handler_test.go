package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// testHandler returns a TidyHandler with a fixed home directory writing
// to buf, so tests do not depend on the environment.
func testHandler(buf *bytes.Buffer, home string) *TidyHandler {
	inner := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return &TidyHandler{handler: inner, home: home}
}

// TestTidyPath tests the home-directory prefix rewriting.
func TestTidyPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		home  string
		value string
		want  string
	}{
		{
			name:  "path under home is shortened",
			home:  "/home/alice",
			value: "/home/alice/thesis/main.tex",
			want:  "~/thesis/main.tex",
		},
		{
			name:  "home itself becomes tilde",
			home:  "/home/alice",
			value: "/home/alice",
			want:  "~",
		},
		{
			name:  "sibling directory is untouched",
			home:  "/home/alice",
			value: "/home/alicetwo/main.tex",
			want:  "/home/alicetwo/main.tex",
		},
		{
			name:  "path outside home is untouched",
			home:  "/home/alice",
			value: "/tmp/texbuddy-123.tex",
			want:  "/tmp/texbuddy-123.tex",
		},
		{
			name:  "non-path string is untouched",
			home:  "/home/alice",
			value: "aspell",
			want:  "aspell",
		},
		{
			name:  "unknown home leaves value alone",
			home:  "",
			value: "/home/alice/main.tex",
			want:  "/home/alice/main.tex",
		},
		{
			name:  "root home leaves value alone",
			home:  "/",
			value: "/etc/hosts",
			want:  "/etc/hosts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := &TidyHandler{home: tt.home}
			if got := h.tidyPath(tt.value); got != tt.want {
				t.Errorf("tidyPath(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

// TestTidyHandler_Handle tests that record attributes are rewritten.
func TestTidyHandler_Handle(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(testHandler(&buf, "/home/alice"))

	logger.Info("checking document", "file", "/home/alice/thesis/main.tex", "checker", "aspell")

	output := buf.String()
	if !strings.Contains(output, "~/thesis/main.tex") {
		t.Errorf("expected shortened path in output, got: %s", output)
	}
	if strings.Contains(output, "/home/alice") {
		t.Errorf("expected home prefix to be removed, got: %s", output)
	}
	if !strings.Contains(output, "checker=aspell") {
		t.Errorf("expected non-path attribute to pass through, got: %s", output)
	}
}

// TestTidyHandler_WithAttrs tests that attributes added via With are rewritten.
func TestTidyHandler_WithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(testHandler(&buf, "/home/alice"))

	logger.With("whitelist", "/home/alice/.local/share/texbuddy/whitelist.db").Info("opened store")

	output := buf.String()
	if !strings.Contains(output, "~/.local/share/texbuddy/whitelist.db") {
		t.Errorf("expected shortened path in output, got: %s", output)
	}
}

// TestTidyHandler_WithGroup tests that grouped attributes are rewritten.
func TestTidyHandler_WithGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(testHandler(&buf, "/home/alice"))

	logger.WithGroup("run").Info("done",
		slog.Group("paths", "config", "/home/alice/texbuddy.yaml"),
		"modules", "3",
	)

	output := buf.String()
	if !strings.Contains(output, "~/texbuddy.yaml") {
		t.Errorf("expected shortened path inside group, got: %s", output)
	}
	if !strings.Contains(output, "modules=3") {
		t.Errorf("expected plain attribute to pass through, got: %s", output)
	}
}

// TestNewLogger_Levels tests that verbosity controls the log level.
func TestNewLogger_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		verbose    bool
		logLevel   slog.Level
		shouldShow bool
	}{
		{
			name:       "debug message shown in verbose mode",
			verbose:    true,
			logLevel:   slog.LevelDebug,
			shouldShow: true,
		},
		{
			name:       "debug message hidden in non-verbose mode",
			verbose:    false,
			logLevel:   slog.LevelDebug,
			shouldShow: false,
		},
		{
			name:       "info message hidden in non-verbose mode",
			verbose:    false,
			logLevel:   slog.LevelInfo,
			shouldShow: false,
		},
		{
			name:       "warn message shown in non-verbose mode",
			verbose:    false,
			logLevel:   slog.LevelWarn,
			shouldShow: true,
		},
		{
			name:       "error message shown in non-verbose mode",
			verbose:    false,
			logLevel:   slog.LevelError,
			shouldShow: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewLogger(&buf, tt.verbose)

			testMsg := "unique_test_message_98765"

			switch tt.logLevel {
			case slog.LevelDebug:
				logger.Debug(testMsg)
			case slog.LevelInfo:
				logger.Info(testMsg)
			case slog.LevelWarn:
				logger.Warn(testMsg)
			case slog.LevelError:
				logger.Error(testMsg)
			}

			hasMessage := strings.Contains(buf.String(), testMsg)
			if tt.shouldShow != hasMessage {
				t.Errorf("message shown = %v, want %v (output: %s)", hasMessage, tt.shouldShow, buf.String())
			}
		})
	}
}

// TestNewJSONLogger tests JSON logger creation.
func TestNewJSONLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, true)

	logger.Warn("check failed", "checker", "chktex")

	output := buf.String()
	if !strings.Contains(output, "{") || !strings.Contains(output, "}") {
		t.Errorf("expected JSON format, but got: %s", output)
	}
	if !strings.Contains(output, `"checker":"chktex"`) {
		t.Errorf("expected attribute in output, but got: %s", output)
	}
}

// TestNewTidyHandler_NilHandler tests that nil handler is handled gracefully.
func TestNewTidyHandler_NilHandler(t *testing.T) {
	t.Parallel()

	handler := NewTidyHandler(nil)
	if handler == nil {
		t.Fatal("expected non-nil handler")
	}

	logger := slog.New(handler)
	logger.Info("test message") // Should not panic
}
