package source

import "strings"

// ApplyWhitespace normalizes s according to policy.
func ApplyWhitespace(s string, policy WhitespacePolicy) string {
	switch policy {
	case Trim:
		return strings.TrimSpace(s)
	case Collapse:
		return collapseRuns(s, false)
	case TrimCollapse:
		return collapseRuns(s, true)
	default: // Preserve
		return s
	}
}

// collapseRuns replaces every run of whitespace with a single ASCII space.
// When trim is true, leading/trailing whitespace is removed first rather
// than collapsed to a boundary space.
func collapseRuns(s string, trim bool) string {
	if trim {
		s = strings.TrimSpace(s)
	}

	var b strings.Builder

	inRun := false

	for _, r := range s {
		if isWhitespaceRune(r) {
			if !inRun {
				b.WriteByte(' ')
				inRun = true
			}

			continue
		}

		inRun = false

		b.WriteRune(r)
	}

	return b.String()
}

func isWhitespaceRune(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	default:
		return false
	}
}
