package texdoc

import (
	"log/slog"
	"sync"
)

// Document is the projection of one checked input artifact: the original
// markup, its derived plain-text form, and the mapping between the two.
// It is immutable after construction and safe for concurrent use.
type Document struct {
	// Markup is the original LaTeX source text.
	Markup string

	// Plain is the derived plain-text projection. When the markup could
	// not be parsed, Plain equals Markup (raw fallback).
	Plain string

	// Faulty is true when the markup was syntactically unparsable and
	// Plain is the raw-markup fallback.
	Faulty bool

	// charmap maps each plain-text byte offset to the originating byte
	// offset in Markup, or -1 when the byte has no origin. Nil means
	// identity mapping (raw fallback).
	charmap []int

	plainOnce     sync.Once
	plainOffsets  []int
	markupOnce    sync.Once
	markupOffsets []int
}

// Option configures Document construction.
type Option func(*settings)

type settings struct {
	detexer Detexer
	logger  *slog.Logger
}

// WithDetexer replaces the built-in SimpleDetexer with a custom
// markup-to-text converter.
func WithDetexer(d Detexer) Option {
	return func(s *settings) {
		s.detexer = d
	}
}

// WithLogger sets the logger used to report projection construction
// problems. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// New builds the projection for the given markup.
//
// A detex failure is not fatal: the document is marked Faulty and the
// raw markup doubles as the plain text so text-oriented checkers still
// have something to work with. In that mode the plain-to-markup mapping
// is the identity.
func New(markup string, opts ...Option) *Document {
	s := settings{detexer: SimpleDetexer{}, logger: slog.Default()}
	for _, opt := range opts {
		opt(&s)
	}

	plain, charmap, err := s.detexer.Detex(markup)
	if err != nil {
		s.logger.Warn("markup could not be parsed, using raw text fallback",
			"error", err,
		)
		return &Document{Markup: markup, Plain: markup, Faulty: true}
	}

	return &Document{Markup: markup, Plain: plain, charmap: charmap}
}

// PlainLineOffsets returns the line offset table for the plain text.
// The table is built on first use and cached.
func (d *Document) PlainLineOffsets() []int {
	d.plainOnce.Do(func() {
		d.plainOffsets = LineOffsets(d.Plain)
	})
	return d.plainOffsets
}

// MarkupLineOffsets returns the line offset table for the markup text.
// The table is built on first use and cached.
func (d *Document) MarkupLineOffsets() []int {
	d.markupOnce.Do(func() {
		d.markupOffsets = LineOffsets(d.Markup)
	})
	return d.markupOffsets
}

// PlainToMarkup traces a 0-based plain-text byte offset back to its
// 0-based (line, column) position in the original markup. It reports
// ok=false when the offset is out of range or the plain-text byte was
// synthesized and has no markup origin. It never returns a silently
// wrong position.
func (d *Document) PlainToMarkup(offset int) (line, col int, ok bool) {
	if offset < 0 {
		return 0, 0, false
	}

	markupOffset := offset // identity mapping for the raw fallback
	if d.charmap != nil {
		if offset >= len(d.charmap) {
			return 0, 0, false
		}
		markupOffset = d.charmap[offset]
		if markupOffset < 0 {
			return 0, 0, false
		}
	}
	if markupOffset >= len(d.Markup) && markupOffset != 0 {
		return 0, 0, false
	}

	line, col = LookupLineCol(d.MarkupLineOffsets(), markupOffset)
	return line, col, true
}

// MarkupToLineCol converts a 0-based byte offset in the markup itself
// into a 0-based (line, column) pair. Checkers that operate directly on
// the markup (LaTeX syntax checks) use this instead of PlainToMarkup.
func (d *Document) MarkupToLineCol(offset int) (line, col int) {
	return LookupLineCol(d.MarkupLineOffsets(), offset)
}
