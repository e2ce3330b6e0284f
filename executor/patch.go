package executor

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/membraneframework-labs/sebex/analysis"
)

// edit replaces the byte range spanned by Span with Replacement.
type edit struct {
	Span        analysis.Span
	Replacement string
}

// applyEdits rewrites data by replacing each edit's span with its
// replacement text. Spans are 1-indexed, inclusive-start/exclusive-end,
// exactly as the analyzer adapter reports them and as the release
// document stores them.
func applyEdits(data []byte, edits []edit) ([]byte, error) {
	lineStarts := computeLineStarts(data)

	type byteEdit struct {
		start, end int
		text       string
	}
	byteEdits := make([]byteEdit, 0, len(edits))
	for _, e := range edits {
		start, err := byteOffset(lineStarts, data, e.Span.StartLine, e.Span.StartCol)
		if err != nil {
			return nil, errors.Wrapf(err, "patch: start of span %s", e.Span)
		}
		end, err := byteOffset(lineStarts, data, e.Span.EndLine, e.Span.EndCol)
		if err != nil {
			return nil, errors.Wrapf(err, "patch: end of span %s", e.Span)
		}
		if end < start {
			return nil, errors.Errorf("patch: span %s ends before it starts", e.Span)
		}
		byteEdits = append(byteEdits, byteEdit{start, end, e.Replacement})
	}

	// Apply from the highest offset down so earlier edits' offsets stay
	// valid as the slice shrinks/grows.
	sort.Slice(byteEdits, func(i, j int) bool { return byteEdits[i].start > byteEdits[j].start })

	out := append([]byte{}, data...)
	for i, e := range byteEdits {
		if i > 0 && e.end > byteEdits[i-1].start {
			return nil, errors.New("patch: overlapping edit spans")
		}
		out = append(out[:e.start], append([]byte(e.text), out[e.end:]...)...)
	}
	return out, nil
}

// computeLineStarts returns the byte offset at which each 1-indexed line
// begins; computeLineStarts(data)[1] == 0.
func computeLineStarts(data []byte) []int {
	starts := []int{0, 0} // index 0 unused, line 1 starts at 0
	for i, b := range data {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func byteOffset(lineStarts []int, data []byte, line, col int) (int, error) {
	if line < 1 || line >= len(lineStarts) {
		return 0, errors.Errorf("line %d out of range (file has %d lines)", line, len(lineStarts)-1)
	}
	off := lineStarts[line] + (col - 1)
	if off < 0 || off > len(data) {
		return 0, errors.Errorf("column %d on line %d out of range", col, line)
	}
	return off, nil
}
