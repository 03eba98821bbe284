package diag

import (
	"sort"
	"strings"
)

// LineTable maps byte offsets to 1-based line/column pairs using a
// precomputed table of line-start offsets and binary search. Built once per
// source, queried for every diagnostic.
type LineTable struct {
	src    string
	starts []int // byte offset of the first byte of each line
}

// NewLineTable scans the source once and records line-start offsets.
func NewLineTable(src string) *LineTable {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineTable{src: src, starts: starts}
}

// Position resolves a byte offset to its line and column, both 1-based.
// Offsets past the end of the source resolve to the final position.
func (t *LineTable) Position(offset int) (line, column int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(t.src) {
		offset = len(t.src)
	}
	// Find the last line start <= offset.
	idx := sort.Search(len(t.starts), func(i int) bool {
		return t.starts[i] > offset
	}) - 1
	return idx + 1, offset - t.starts[idx] + 1
}

// Line returns the text of the given 1-based line without its terminator.
func (t *LineTable) Line(line int) string {
	if line < 1 || line > len(t.starts) {
		return ""
	}
	start := t.starts[line-1]
	end := len(t.src)
	if line < len(t.starts) {
		end = t.starts[line] - 1
	}
	return strings.TrimRight(t.src[start:end], "\r")
}

// Resolve fills the line/column fields of a span from its byte offsets and
// returns the span together with the source line it points at.
func (t *LineTable) Resolve(span Span) (Span, string) {
	span.Line, span.Column = t.Position(span.Start)
	return span, t.Line(span.Line)
}
