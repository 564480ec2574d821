// Package lexicon holds the banned phrase lists used to spot robotic or
// AI-sounding prose and matches them against normalized text.
package lexicon

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/seo-optimizer/contentgate/normalize"
	"gopkg.in/yaml.v3"
)

// ErrInvalidLexicon is returned when a lexicon breaks one of its invariants.
var ErrInvalidLexicon = errors.New("invalid lexicon")

//go:embed default.yaml
var defaultYAML []byte

// Category is a named, fixed list of phrases.
type Category struct {
	Name    string   `yaml:"name" json:"name"`
	Phrases []string `yaml:"phrases" json:"phrases"`
}

// Lexicon is an ordered set of disjoint categories.
type Lexicon struct {
	Categories []Category `yaml:"categories" json:"categories"`
}

var (
	defaultOnce sync.Once
	defaultLex  Lexicon
)

// Default returns a copy of the embedded lexicon.
func Default() Lexicon {
	defaultOnce.Do(func() {
		lex, err := Parse(defaultYAML)
		if err != nil {
			panic(fmt.Sprintf("lexicon: embedded default is broken: %v", err))
		}
		defaultLex = lex
	})
	return defaultLex.clone()
}

// Parse decodes and validates a YAML lexicon.
func Parse(data []byte) (Lexicon, error) {
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return Lexicon{}, fmt.Errorf("parsing lexicon: %w", err)
	}
	if err := lex.Validate(); err != nil {
		return Lexicon{}, err
	}
	return lex, nil
}

// Load reads a YAML lexicon from path.
func Load(path string) (Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Lexicon{}, fmt.Errorf("reading lexicon %s: %w", path, err)
	}
	lex, err := Parse(data)
	if err != nil {
		return Lexicon{}, fmt.Errorf("%s: %w", path, err)
	}
	return lex, nil
}

// Validate checks that category names are present and unique, that every
// phrase has words left after normalization, and that no phrase belongs to
// more than one category.
func (l Lexicon) Validate() error {
	if len(l.Categories) == 0 {
		return fmt.Errorf("%w: no categories", ErrInvalidLexicon)
	}
	names := make(map[string]bool, len(l.Categories))
	owner := make(map[string]string)
	for _, c := range l.Categories {
		if c.Name == "" {
			return fmt.Errorf("%w: category without name", ErrInvalidLexicon)
		}
		if names[c.Name] {
			return fmt.Errorf("%w: duplicate category %q", ErrInvalidLexicon, c.Name)
		}
		names[c.Name] = true
		for _, p := range c.Phrases {
			key := normalize.Text(p)
			if key == "" {
				return fmt.Errorf("%w: empty phrase in category %q", ErrInvalidLexicon, c.Name)
			}
			if prev, ok := owner[key]; ok && prev != c.Name {
				return fmt.Errorf("%w: phrase %q is in both %q and %q", ErrInvalidLexicon, p, prev, c.Name)
			}
			owner[key] = c.Name
		}
	}
	return nil
}

// Size returns the total number of phrases.
func (l Lexicon) Size() int {
	n := 0
	for _, c := range l.Categories {
		n += len(c.Phrases)
	}
	return n
}

func (l Lexicon) clone() Lexicon {
	out := Lexicon{Categories: make([]Category, len(l.Categories))}
	for i, c := range l.Categories {
		out.Categories[i] = Category{
			Name:    c.Name,
			Phrases: append([]string(nil), c.Phrases...),
		}
	}
	return out
}
