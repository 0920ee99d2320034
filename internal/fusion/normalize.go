package fusion

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// removeDiacritics strips diacritical marks (e.g., "café" -> "cafe").
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizeIdentifier normalizes a free-text classifier label for merging:
// diacritics removed, lowercased, surrounding whitespace trimmed and inner
// runs of whitespace collapsed to single spaces.
func NormalizeIdentifier(id string) string {
	id = removeDiacritics(id)
	id = strings.ToLower(strings.TrimSpace(id))
	return strings.Join(strings.Fields(id), " ")
}
