// Package phrase builds literal, whitespace-tolerant, case-insensitive
// patterns with Unicode-aware word boundaries. It is the single place where
// user supplied keywords and configured phrases are turned into regular
// expressions, so every caller counts occurrences the same way.
package phrase

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Pattern matches one phrase. The zero value and a nil *Pattern match nothing.
type Pattern struct {
	text      string
	re        *regexp.Regexp
	leadWord  bool
	trailWord bool
}

// Compile builds a Pattern for p. Metacharacters are escaped and every run of
// whitespace inside the phrase matches one or more whitespace characters.
// Invalid UTF-8 bytes are replaced with U+FFFD. A phrase without any
// non-space character yields nil.
func Compile(p string) *Pattern {
	fields := strings.Fields(strings.ToValidUTF8(p, "\uFFFD"))
	if len(fields) == 0 {
		return nil
	}
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = regexp.QuoteMeta(f)
	}
	first, _ := utf8.DecodeRuneInString(fields[0])
	last, _ := utf8.DecodeLastRuneInString(fields[len(fields)-1])
	return &Pattern{
		text:      strings.Join(fields, " "),
		re:        regexp.MustCompile(`(?i)` + strings.Join(quoted, `\s+`)),
		leadWord:  isWordRune(first),
		trailWord: isWordRune(last),
	}
}

// String returns the phrase with its whitespace collapsed.
func (p *Pattern) String() string {
	if p == nil {
		return ""
	}
	return p.text
}

// FindAll returns the byte offsets of every whole-word occurrence in s, in
// document order and without overlaps.
func (p *Pattern) FindAll(s string) [][]int {
	if p == nil || s == "" {
		return nil
	}
	var out [][]int
	pos := 0
	for pos < len(s) {
		loc := p.re.FindStringIndex(s[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if p.bounded(s, start, end) {
			out = append(out, []int{start, end})
			pos = end
			continue
		}
		// Retry one rune further so a rejected match cannot hide an
		// overlapping valid one.
		_, size := utf8.DecodeRuneInString(s[start:])
		pos = start + max(size, 1)
	}
	return out
}

// Count returns the number of whole-word occurrences in s.
func (p *Pattern) Count(s string) int {
	return len(p.FindAll(s))
}

// In reports whether s contains at least one whole-word occurrence.
func (p *Pattern) In(s string) bool {
	return p.Count(s) > 0
}

func (p *Pattern) bounded(s string, start, end int) bool {
	if p.leadWord && start > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:start])
		if isWordRune(r) {
			return false
		}
	}
	if p.trailWord && end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}
