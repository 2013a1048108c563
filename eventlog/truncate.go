package eventlog

import "unicode/utf8"

const truncatedSuffix = "[TRUNCATED]"

// Truncate returns s unmodified if its UTF-8 byte length is already
// <= max. Otherwise it cuts s (never splitting a multi-byte rune) so
// that the result plus the literal "[TRUNCATED]" suffix fits within
// max bytes.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= len(truncatedSuffix) {
		// Degenerate cap: no room for real content, only the marker
		// (and only as much of it as fits).
		if max >= len(truncatedSuffix) {
			return truncatedSuffix
		}
		return truncatedSuffix[:max]
	}

	budget := max - len(truncatedSuffix)
	cut := budget
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + truncatedSuffix
}
