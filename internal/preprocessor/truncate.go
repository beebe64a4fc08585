package preprocessor

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TruncationLookback is how far before the budget boundary Truncate looks
// for a clean place to cut
const TruncationLookback = 500

const truncationMarker = "\n// ... (truncated, %d chars omitted)"

// Truncate bounds content to maxChars bytes, cutting at the best code
// boundary near the limit and appending a marker with the number of bytes
// dropped. Content within budget is returned unchanged.
func Truncate(content string, maxChars int) string {
	if len(content) <= maxChars {
		return content
	}
	if maxChars < 0 {
		maxChars = 0
	}

	pos := strings.LastIndexByte(content[:maxChars], '\n')
	if pos < 0 {
		pos = runeStart(content, maxChars)
	}

	cut := safeCut(content, pos)
	kept := strings.TrimRightFunc(content[:cut], unicode.IsSpace)
	return kept + fmt.Sprintf(truncationMarker, len(content)-len(kept))
}

// safeCut searches the lookback window ending at limit for, in order, a
// blank line, a line ending in "}", a line ending in ";" and any newline.
// It falls back to limit itself.
func safeCut(content string, limit int) int {
	start := max(0, limit-TruncationLookback)
	region := content[start:limit]

	if i := strings.LastIndex(region, "\n\n"); i >= 0 {
		return start + i + 1
	}
	if i := strings.LastIndex(region, "}\n"); i >= 0 {
		return start + i + 2
	}
	if i := strings.LastIndex(region, ";\n"); i >= 0 {
		return start + i + 2
	}
	if i := strings.LastIndexByte(region, '\n'); i >= 0 {
		return start + i + 1
	}
	return limit
}

// runeStart moves i back onto the first byte of a UTF-8 sequence
func runeStart(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}
