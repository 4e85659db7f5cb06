package texdoc

import "sort"

// LineOffsets returns the absolute offset of the first character of each
// line in text. The result always starts with 0 and has one entry per
// line, where the text after the final newline counts as a line even if
// it is empty:
//
//	LineOffsets("")          == []int{0}
//	LineOffsets("ab\ncde\n") == []int{0, 3, 7}
//
// The table is intended to be built once per text and reused for many
// lookups via LookupLineCol.
func LineOffsets(text string) []int {
	offsets := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// LookupLineCol resolves a 0-based absolute offset against a line offset
// table built by LineOffsets. It returns the 0-based line index and the
// 0-based column within that line.
//
// Design decision: We binary-search the offset table rather than
// scanning the text because checkers typically resolve many positions
// against the same document. Building the table is O(n) once; each
// lookup is then O(log n).
func LookupLineCol(offsets []int, offset int) (line, col int) {
	// Index of the last line start that is <= offset.
	line = sort.SearchInts(offsets, offset+1) - 1
	if line < 0 {
		line = 0
	}
	return line, offset - offsets[line]
}

// AbsoluteToLineCol converts a 0-based absolute character offset in text
// into a 0-based (line, column) pair. It also returns the line offset
// table used for the conversion so callers performing repeated lookups
// can amortize the table build with LookupLineCol.
//
// The 0-based convention for both line and column is deliberate and
// pinned by tests; renderers add 1 for human-facing output.
func AbsoluteToLineCol(text string, offset int) (line, col int, offsets []int) {
	offsets = LineOffsets(text)
	line, col = LookupLineCol(offsets, offset)
	return line, col, offsets
}
