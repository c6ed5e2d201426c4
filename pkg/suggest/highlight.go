package suggest

import (
	"strings"

	"github.com/bastiangx/placeserve/pkg/places"
)

const (
	boldOpen  = "<b>"
	boldClose = "</b>"
)

// Highlight wraps every matched span of ft in <b> tags and passes the rest
// through verbatim.
func Highlight(ft *places.FormattableText) string {
	return HighlightWith(ft, func(s string) string {
		return boldOpen + s + boldClose
	})
}

// HighlightWith passes every matched span of ft through mark. Matches must be
// sorted and non-overlapping; they are not merged or reordered. Offsets count
// code points and are clamped to the text.
func HighlightWith(ft *places.FormattableText, mark func(string) string) string {
	if ft == nil {
		return ""
	}

	runes := []rune(ft.Text)
	var b strings.Builder
	b.Grow(len(ft.Text) + len(ft.Matches)*(len(boldOpen)+len(boldClose)))

	last := 0
	for _, m := range ft.Matches {
		start := clamp(m.StartOffset, last, len(runes))
		end := clamp(m.EndOffset, start, len(runes))

		b.WriteString(string(runes[last:start]))
		b.WriteString(mark(string(runes[start:end])))
		last = end
	}
	b.WriteString(string(runes[last:]))
	return b.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
