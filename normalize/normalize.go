// Package normalize converts free text into the canonical comparison form
// used by the lexical matchers: lower case, no diacritics, ASCII letters and
// digits only, single spaces.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Text returns the normalized form of s. It never fails; an empty or
// punctuation-only input yields "".
func Text(s string) string {
	if s == "" {
		return ""
	}
	folded := StripDiacritics(strings.ToLower(s))

	var b strings.Builder
	b.Grow(len(folded))
	space := true
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			space = false
			continue
		}
		// Everything else, whitespace included, becomes a single separator.
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// StripDiacritics removes combining marks after canonical decomposition, so
// "canción" becomes "cancion" and "pingüino" becomes "pinguino". Case and
// punctuation are left alone.
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Words splits already normalized text into its words.
func Words(normalized string) []string {
	if normalized == "" {
		return nil
	}
	return strings.Split(normalized, " ")
}
