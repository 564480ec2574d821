package lexicon

import (
	"github.com/seo-optimizer/contentgate/normalize"
	"github.com/seo-optimizer/contentgate/phrase"
)

// PhraseHit records how often one phrase matched.
type PhraseHit struct {
	Category string `json:"category,omitempty"`
	Phrase   string `json:"phrase"`
	Count    int    `json:"count"`
}

// Matches is the outcome of matching a phrase list against a text.
type Matches struct {
	Count      int            `json:"count"`
	Hits       []PhraseHit    `json:"hits,omitempty"`
	ByCategory map[string]int `json:"byCategory,omitempty"`
}

// MatchedPhrases returns the phrases that matched at least once, in list order.
func (m Matches) MatchedPhrases() []string {
	out := make([]string, len(m.Hits))
	for i, h := range m.Hits {
		out[i] = h.Phrase
	}
	return out
}

type compiledCategory struct {
	name     string
	patterns []*phrase.Pattern
}

// Matcher holds the compiled patterns of a lexicon. It is read-only after
// construction and safe for concurrent use.
type Matcher struct {
	categories []compiledCategory
}

// NewMatcher validates lex and compiles every phrase once.
func NewMatcher(lex Lexicon) (*Matcher, error) {
	if err := lex.Validate(); err != nil {
		return nil, err
	}
	m := &Matcher{categories: make([]compiledCategory, 0, len(lex.Categories))}
	for _, c := range lex.Categories {
		m.categories = append(m.categories, compiledCategory{
			name:     c.Name,
			patterns: compileList(c.Phrases),
		})
	}
	return m, nil
}

// CountMatches matches every category against normalized text.
func (m *Matcher) CountMatches(normalized string) Matches {
	res := Matches{ByCategory: make(map[string]int, len(m.categories))}
	for _, c := range m.categories {
		n := countInto(&res, c.name, c.patterns, normalized)
		res.ByCategory[c.name] = n
	}
	return res
}

// CountCategory matches a single category. Unknown names match nothing.
func (m *Matcher) CountCategory(normalized, category string) Matches {
	res := Matches{ByCategory: map[string]int{}}
	for _, c := range m.categories {
		if c.name == category {
			res.ByCategory[c.name] = countInto(&res, c.name, c.patterns, normalized)
		}
	}
	return res
}

// Categories returns the category names in configuration order.
func (m *Matcher) Categories() []string {
	out := make([]string, len(m.categories))
	for i, c := range m.categories {
		out[i] = c.name
	}
	return out
}

// CountMatches matches an ad hoc phrase list against normalized text.
func CountMatches(normalized string, phrases []string) Matches {
	var res Matches
	countInto(&res, "", compileList(phrases), normalized)
	return res
}

func compileList(phrases []string) []*phrase.Pattern {
	seen := make(map[string]bool, len(phrases))
	out := make([]*phrase.Pattern, 0, len(phrases))
	for _, p := range phrases {
		key := normalize.Text(p)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, phrase.Compile(key))
	}
	return out
}

func countInto(res *Matches, category string, patterns []*phrase.Pattern, text string) int {
	total := 0
	for _, p := range patterns {
		n := p.Count(text)
		if n == 0 {
			continue
		}
		total += n
		res.Hits = append(res.Hits, PhraseHit{Category: category, Phrase: p.String(), Count: n})
	}
	res.Count += total
	return total
}
