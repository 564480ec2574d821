package remediate

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/seo-optimizer/contentgate/phrase"
)

// DefaultAlternatives are neutral references used when a KeywordLimit does
// not bring its own.
var DefaultAlternatives = []string{
	"esta actividad",
	"esta práctica",
	"este tema",
	"lo anterior",
	"ello",
}

// Text the enforcer never rewrites and never counts: comments, code (HTML
// elements, fences, inline spans), Markdown images including their alt text,
// HTML tags and link destinations. structure.Count leaves the same regions out
// of its keyword count, so a recount after enforcement agrees with the
// evaluator.
var protectedSpans = regexp.MustCompile(strings.Join([]string{
	`<!--(?s:.*?)-->`,
	`(?is:<(?:code|pre|kbd|samp|script|style|noscript|template)\b[^>]*>.*?</(?:code|pre|kbd|samp|script|style|noscript|template)\s*>)`,
	"(?ms:^ {0,3}```.*?(?:^ {0,3}```[ \t]*$|\\z))",
	`(?ms:^ {0,3}~~~.*?(?:^ {0,3}~~~[ \t]*$|\z))`,
	`!\[[^\]]*\](?:\([^)]*\)|\[[^\]]*\])?`,
	`<[^>]*>`,
	`\]\([^)]*\)`,
	"`(?:[^`\n]|\n[^`\n])*`",
}, "|"))

// KeywordLimit describes one enforcement run. StartIndex is the rotation
// position in Alternatives; pass the previous Enforcement.NextIndex to keep
// rotating across calls.
type KeywordLimit struct {
	Keyword      string   `json:"keyword"`
	Max          int      `json:"max"`
	Alternatives []string `json:"alternatives,omitempty"`
	StartIndex   int      `json:"startIndex"`
}

// Enforcement reports what EnforceKeywordLimit did. Before and After are
// recounted from the content, never assumed.
type Enforcement struct {
	Content   string `json:"content"`
	Before    int    `json:"before"`
	After     int    `json:"after"`
	Replaced  int    `json:"replaced"`
	NextIndex int    `json:"nextIndex"`
	Achieved  bool   `json:"achieved"`
}

// EnforceKeywordLimit keeps the first lim.Max occurrences of lim.Keyword and
// replaces the rest, from the last one backward, with alternatives taken in
// rotation. The i-th excess occurrence in document order gets
// Alternatives[(StartIndex+i) mod n]. Alternatives containing the keyword are
// ignored. A capitalized occurrence gets a capitalized replacement.
func EnforceKeywordLimit(content string, lim KeywordLimit) Enforcement {
	pat := phrase.Compile(lim.Keyword)
	if pat == nil {
		return Enforcement{Content: content, NextIndex: lim.StartIndex, Achieved: true}
	}
	limit := max(lim.Max, 0)

	matches := eligibleMatches(content, pat)
	res := Enforcement{
		Content:   content,
		Before:    len(matches),
		NextIndex: lim.StartIndex,
	}
	if len(matches) <= limit {
		res.After = res.Before
		res.Achieved = true
		return res
	}

	alts := usableAlternatives(lim.Alternatives, pat)
	if len(alts) == 0 {
		res.After = res.Before
		return res
	}

	start := lim.StartIndex % len(alts)
	if start < 0 {
		start += len(alts)
	}
	excess := matches[limit:]
	out := content
	for i := len(excess) - 1; i >= 0; i-- {
		m := excess[i]
		alt := alts[(start+i)%len(alts)]
		out = out[:m[0]] + matchCase(out[m[0]:m[1]], alt) + out[m[1]:]
	}

	res.Content = out
	res.Replaced = len(excess)
	res.NextIndex = (start + len(excess)) % len(alts)
	res.After = len(eligibleMatches(out, pat))
	res.Achieved = res.After <= limit
	return res
}

// CountKeyword counts the keyword occurrences the enforcer may rewrite: those
// in prose, outside code and markup.
func CountKeyword(content, keyword string) int {
	pat := phrase.Compile(keyword)
	if pat == nil {
		return 0
	}
	return len(eligibleMatches(content, pat))
}

func eligibleMatches(content string, pat *phrase.Pattern) [][]int {
	all := pat.FindAll(content)
	if len(all) == 0 {
		return nil
	}
	spans := protectedSpans.FindAllStringIndex(content, -1)
	if len(spans) == 0 {
		return all
	}
	out := all[:0:0]
	for _, m := range all {
		if !overlaps(m, spans) {
			out = append(out, m)
		}
	}
	return out
}

func overlaps(m []int, spans [][]int) bool {
	for _, s := range spans {
		if m[0] < s[1] && s[0] < m[1] {
			return true
		}
	}
	return false
}

func usableAlternatives(alts []string, pat *phrase.Pattern) []string {
	if len(alts) == 0 {
		alts = DefaultAlternatives
	}
	out := make([]string, 0, len(alts))
	for _, a := range alts {
		a = strings.TrimSpace(a)
		if a == "" || pat.In(a) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// matchCase upper-cases the first letter of alt when original starts with
// an upper-case letter.
func matchCase(original, alt string) string {
	r, _ := utf8.DecodeRuneInString(original)
	if !unicode.IsUpper(r) {
		return alt
	}
	a, size := utf8.DecodeRuneInString(alt)
	return string(unicode.ToUpper(a)) + alt[size:]
}
