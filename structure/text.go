package structure

import (
	"regexp"
	"strings"
)

var (
	wordPattern     = regexp.MustCompile(`[\p{L}\p{N}\p{Mn}]+(?:['’\-][\p{L}\p{N}\p{Mn}]+)*`)
	sentenceEndings = regexp.MustCompile(`[.!?…]+["'»”’)\]]*(?:\s+|$)`)
)

// CountWords returns the number of words in plain text. Punctuation and
// markup characters never count as words.
func CountWords(s string) int {
	return len(wordPattern.FindAllStringIndex(s, -1))
}

// Words returns the words of plain text in order.
func Words(s string) []string {
	return wordPattern.FindAllString(s, -1)
}

// SplitSentences splits plain text after terminal punctuation followed by
// whitespace or the end of the text. Trailing text without a terminator is
// its own sentence. Fragments without words are glued to the previous
// sentence, or dropped when there is none.
func SplitSentences(s string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceEndings.FindAllStringIndex(s, -1) {
		out = appendSentence(out, s[start:loc[1]])
		start = loc[1]
	}
	if start < len(s) {
		out = appendSentence(out, s[start:])
	}
	return out
}

func appendSentence(out []string, s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return out
	}
	if CountWords(s) == 0 {
		if len(out) > 0 {
			out[len(out)-1] += " " + s
		}
		return out
	}
	return append(out, s)
}
