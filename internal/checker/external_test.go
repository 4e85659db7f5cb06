package checker

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/texbuddy/texbuddy/internal/config"
	"github.com/texbuddy/texbuddy/internal/problem"
	"github.com/texbuddy/texbuddy/internal/texdoc"
)

// writePlugin drops an executable shell script into dir.
func writePlugin(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	script := "#!/bin/sh\ncat >/dev/null\n" + body
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("writing plugin: %v", err)
	}
	return path
}

// TestDiscover tests plugin discovery from module directories.
func TestDiscover(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("plugin fixtures are shell scripts")
	}

	t.Run("registers executables by file name", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writePlugin(t, dir, "misspell", "exit 0\n")

		r := NewRegistry()
		r.Discover([]string{dir})

		if _, ok := r.Lookup("misspell"); !ok {
			t.Error("Lookup(misspell) = false, want discovered")
		}
	})

	t.Run("skips non-executable files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "notes.txt")
		if err := os.WriteFile(path, []byte("not a plugin"), 0o644); err != nil {
			t.Fatalf("writing file: %v", err)
		}

		r := NewRegistry()
		r.Discover([]string{dir})

		if _, ok := r.Lookup("notes"); ok {
			t.Error("Lookup(notes) = true, want skipped")
		}
	})

	t.Run("missing directories are ignored", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		r.Discover([]string{filepath.Join(t.TempDir(), "does-not-exist")})

		if got := r.Names(); len(got) != 0 {
			t.Errorf("Names = %v, want empty", got)
		}
	})

	t.Run("keeps the first registration on name collision", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writePlugin(t, dir, "aspell", "exit 0\n")

		r := Builtin()
		r.Discover([]string{dir})

		f, ok := r.Lookup("aspell")
		if !ok {
			t.Fatal("Lookup(aspell) = false")
		}
		if _, isExternal := f().(*External); isExternal {
			t.Error("built-in aspell was shadowed by a plugin")
		}
	})
}

// TestExternalCheck tests the line-JSON plugin protocol end to end.
func TestExternalCheck(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("plugin fixtures are shell scripts")
	}

	t.Run("parses reported problems", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		line := `{"line":0,"col":4,"text":"teh","type":"typo","severity":"warning","category":"spelling","description":"common typo","suggestions":["the"]}`
		path := writePlugin(t, dir, "misspell", "printf '%s\\n' '"+line+"'\n")

		ext := NewExternal("misspell", path)
		doc := texdoc.New("not teh best\n")
		problems, err := ext.Check(context.Background(), config.NewResolver(nil), doc)
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		if len(problems) != 1 {
			t.Fatalf("got %d problems, want 1", len(problems))
		}

		p := problems[0]
		if p.Checker != "misspell" {
			t.Errorf("Checker = %q, want %q", p.Checker, "misspell")
		}
		if p.Position == nil || p.Position.Line != 0 || p.Position.Col != 4 {
			t.Errorf("Position = %+v, want line 0, col 4", p.Position)
		}
		if p.Severity != problem.SeverityWarning {
			t.Errorf("Severity = %v, want warning", p.Severity)
		}
		if p.Key != "en_spelling_teh" {
			t.Errorf("Key = %q, want %q", p.Key, "en_spelling_teh")
		}
	})

	t.Run("omitted line yields a general problem", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		line := `{"text":"document too informal","severity":"info"}`
		path := writePlugin(t, dir, "tone", "printf '%s\\n' '"+line+"'\n")

		ext := NewExternal("tone", path)
		problems, err := ext.Check(context.Background(), config.NewResolver(nil), texdoc.New("hi\n"))
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		if len(problems) != 1 {
			t.Fatalf("got %d problems, want 1", len(problems))
		}
		if problems[0].Position != nil {
			t.Errorf("Position = %+v, want nil", problems[0].Position)
		}
	})

	t.Run("malformed output fails the checker", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writePlugin(t, dir, "broken", "printf '%s\\n' 'not json'\n")

		ext := NewExternal("broken", path)
		if _, err := ext.Check(context.Background(), config.NewResolver(nil), texdoc.New("hi\n")); err == nil {
			t.Error("expected error for malformed plugin output")
		}
	})

	t.Run("non-zero exit fails the checker", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writePlugin(t, dir, "crash", "echo boom >&2\nexit 3\n")

		ext := NewExternal("crash", path)
		if _, err := ext.Check(context.Background(), config.NewResolver(nil), texdoc.New("hi\n")); err == nil {
			t.Error("expected error for failing plugin")
		}
	})
}
