package texdoc

import (
	"strings"
	"testing"
)

// TestSimpleDetexer tests the built-in markup stripper.
func TestSimpleDetexer(t *testing.T) {
	t.Parallel()

	t.Run("keeps plain prose verbatim", func(t *testing.T) {
		t.Parallel()

		plain, charmap, err := SimpleDetexer{}.Detex("hello world")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if plain != "hello world" {
			t.Errorf("plain = %q, want %q", plain, "hello world")
		}
		if len(charmap) != len(plain) {
			t.Errorf("charmap length %d != plain length %d", len(charmap), len(plain))
		}
		for i, m := range charmap {
			if m != i {
				t.Errorf("charmap[%d] = %d, want identity", i, m)
			}
		}
	})

	t.Run("strips comments but keeps the newline", func(t *testing.T) {
		t.Parallel()

		plain, _, err := SimpleDetexer{}.Detex("a % comment\nb")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if plain != "a \nb" {
			t.Errorf("plain = %q, want %q", plain, "a \nb")
		}
	})

	t.Run("drops commands and keeps formatted text", func(t *testing.T) {
		t.Parallel()

		plain, charmap, err := SimpleDetexer{}.Detex(`pre \textbf{bold} post`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if plain != "pre bold post" {
			t.Errorf("plain = %q, want %q", plain, "pre bold post")
		}

		// "bold" starts at plain offset 4 and markup offset 12.
		boldPlain := strings.Index(plain, "bold")
		boldMarkup := strings.Index(`pre \textbf{bold} post`, "bold")
		if charmap[boldPlain] != boldMarkup {
			t.Errorf("charmap[%d] = %d, want %d", boldPlain, charmap[boldPlain], boldMarkup)
		}
	})

	t.Run("drops reference-like arguments entirely", func(t *testing.T) {
		t.Parallel()

		plain, _, err := SimpleDetexer{}.Detex(`see \ref{fig:one} here`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if plain != "see  here" {
			t.Errorf("plain = %q, want %q", plain, "see  here")
		}
	})

	t.Run("drops math", func(t *testing.T) {
		t.Parallel()

		plain, _, err := SimpleDetexer{}.Detex(`x $a+b$ y`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if plain != "x  y" {
			t.Errorf("plain = %q, want %q", plain, "x  y")
		}
	})

	t.Run("handles escaped literals", func(t *testing.T) {
		t.Parallel()

		plain, _, err := SimpleDetexer{}.Detex(`100\% done`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if plain != "100% done" {
			t.Errorf("plain = %q, want %q", plain, "100% done")
		}
	})

	t.Run("reports unbalanced braces", func(t *testing.T) {
		t.Parallel()

		if _, _, err := (SimpleDetexer{}).Detex("a { b"); err == nil {
			t.Error("expected error for unbalanced open brace")
		}
		if _, _, err := (SimpleDetexer{}).Detex("a } b"); err == nil {
			t.Error("expected error for unbalanced close brace")
		}
	})
}

// TestDocumentNew tests projection construction.
func TestDocumentNew(t *testing.T) {
	t.Parallel()

	t.Run("valid markup produces a projection", func(t *testing.T) {
		t.Parallel()

		doc := New(`a \textbf{b} c`)
		if doc.Faulty {
			t.Error("expected Faulty to be false")
		}
		if doc.Plain != "a b c" {
			t.Errorf("Plain = %q, want %q", doc.Plain, "a b c")
		}
	})

	t.Run("unparsable markup falls back to raw text", func(t *testing.T) {
		t.Parallel()

		doc := New("broken { markup")
		if !doc.Faulty {
			t.Error("expected Faulty to be true")
		}
		if doc.Plain != doc.Markup {
			t.Errorf("Plain = %q, want raw markup %q", doc.Plain, doc.Markup)
		}
	})
}

// TestDocumentPlainToMarkup tests the plain-to-markup position mapping.
func TestDocumentPlainToMarkup(t *testing.T) {
	t.Parallel()

	t.Run("maps prose back to its markup position", func(t *testing.T) {
		t.Parallel()

		// Markup line 1 (0-based) holds "world" at column 8.
		doc := New("hello\n\\textbf{world}\n")
		offset := strings.Index(doc.Plain, "world")
		if offset < 0 {
			t.Fatalf("plain text %q does not contain %q", doc.Plain, "world")
		}

		line, col, ok := doc.PlainToMarkup(offset)
		if !ok {
			t.Fatal("expected a mapping")
		}
		if line != 1 || col != 8 {
			t.Errorf("mapped to (%d, %d), want (1, 8)", line, col)
		}
	})

	t.Run("rejects out of range offsets", func(t *testing.T) {
		t.Parallel()

		doc := New("abc")
		if _, _, ok := doc.PlainToMarkup(len(doc.Plain) + 5); ok {
			t.Error("expected no mapping for out-of-range offset")
		}
		if _, _, ok := doc.PlainToMarkup(-1); ok {
			t.Error("expected no mapping for negative offset")
		}
	})

	t.Run("identity mapping for faulty documents", func(t *testing.T) {
		t.Parallel()

		doc := New("broken { markup\nsecond")
		line, col, ok := doc.PlainToMarkup(16)
		if !ok {
			t.Fatal("expected identity mapping")
		}
		if line != 1 || col != 0 {
			t.Errorf("mapped to (%d, %d), want (1, 0)", line, col)
		}
	})
}
