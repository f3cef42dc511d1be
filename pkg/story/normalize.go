package story

import "strings"

// Normalize cleans raw node text for display: carriage returns are
// stripped, leading spaces on each line are dropped, interior runs of
// spaces collapse to one, and trailing spaces before a newline are
// removed. Newlines are preserved as semantic line breaks.
//
// Normalize is idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r", "")

	var b strings.Builder
	b.Grow(len(s))

	atLineStart := true
	spaceRun := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\n':
			trimTrailingSpaces(&b)
			b.WriteByte('\n')
			atLineStart = true
			spaceRun = false
		case c == ' ':
			if atLineStart || spaceRun {
				continue
			}
			spaceRun = true
			b.WriteByte(' ')
		default:
			atLineStart = false
			spaceRun = false
			b.WriteByte(c)
		}
	}

	trimTrailingSpaces(&b)
	return b.String()
}

func trimTrailingSpaces(b *strings.Builder) {
	s := b.String()
	trimmed := strings.TrimRight(s, " ")
	if len(trimmed) != len(s) {
		b.Reset()
		b.WriteString(trimmed)
	}
}
