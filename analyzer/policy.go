package analyzer

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidPolicy is returned when a policy's thresholds or weights are
// inconsistent.
var ErrInvalidPolicy = errors.New("invalid policy")

// DefaultArtificialDensityMax is the banned-phrase density, in percent of
// words, above which content is flagged as artificial.
const DefaultArtificialDensityMax = 2.0

// Weights are the maximum deductions per dimension. They must sum to 100.
type Weights struct {
	KeywordDensity  float64 `yaml:"keyword_density" json:"keywordDensity"`
	ContentLength   float64 `yaml:"content_length" json:"contentLength"`
	Headings        float64 `yaml:"headings" json:"headings"`
	Naturalness     float64 `yaml:"naturalness" json:"naturalness"`
	Readability     float64 `yaml:"readability" json:"readability"`
	Links           float64 `yaml:"links" json:"links"`
	Images          float64 `yaml:"images" json:"images"`
	Title           float64 `yaml:"title" json:"title"`
	MetaDescription float64 `yaml:"meta_description" json:"metaDescription"`
}

// Total returns the sum of all weights.
func (w Weights) Total() float64 {
	return w.KeywordDensity + w.ContentLength + w.Headings + w.Naturalness +
		w.Readability + w.Links + w.Images + w.Title + w.MetaDescription
}

// KeywordPolicy bands are percentages of total words.
type KeywordPolicy struct {
	OptimalMin    float64 `yaml:"optimal_min" json:"optimalMin"`
	OptimalMax    float64 `yaml:"optimal_max" json:"optimalMax"`
	AcceptableMin float64 `yaml:"acceptable_min" json:"acceptableMin"`
	AcceptableMax float64 `yaml:"acceptable_max" json:"acceptableMax"`
	// MinOccurrenceCap is the floor of the hard occurrence cap. Short texts
	// may repeat the keyword this many times before stuffing turns critical.
	MinOccurrenceCap int `yaml:"min_occurrence_cap" json:"minOccurrenceCap"`
}

// HardCap is the occurrence count above which keyword stuffing is critical
// for a text of the given length. The keyword enforcer uses it as its
// default target.
func (k KeywordPolicy) HardCap(words int) int {
	byDensity := int(math.Ceil(float64(words) * k.AcceptableMax / 100))
	return max(k.MinOccurrenceCap, byDensity)
}

// LengthPolicy thresholds are word counts.
type LengthPolicy struct {
	Optimal    int `yaml:"optimal" json:"optimal"`
	Acceptable int `yaml:"acceptable" json:"acceptable"`
}

type HeadingPolicy struct {
	MinH2     int `yaml:"min_h2" json:"minH2"`
	GoodH2    int `yaml:"good_h2" json:"goodH2"`
	GoodTotal int `yaml:"good_total" json:"goodTotal"`
}

type NaturalnessPolicy struct {
	ArtificialDensityMax float64 `yaml:"artificial_density_max" json:"artificialDensityMax"`
}

type ReadabilityPolicy struct {
	LongSentenceWords    int     `yaml:"long_sentence_words" json:"longSentenceWords"`
	MaxLongSentenceRatio float64 `yaml:"max_long_sentence_ratio" json:"maxLongSentenceRatio"`
	MaxParagraphWords    int     `yaml:"max_paragraph_words" json:"maxParagraphWords"`
}

type MediaPolicy struct {
	MinLinks  int `yaml:"min_links" json:"minLinks"`
	MinImages int `yaml:"min_images" json:"minImages"`
}

// SnippetPolicy bounds are rune counts.
type SnippetPolicy struct {
	TitleMin int `yaml:"title_min" json:"titleMin"`
	TitleMax int `yaml:"title_max" json:"titleMax"`
	MetaMin  int `yaml:"meta_min" json:"metaMin"`
	MetaMax  int `yaml:"meta_max" json:"metaMax"`
}

// Policy gathers every threshold the scorers use.
type Policy struct {
	Weights             Weights           `yaml:"weights" json:"weights"`
	Keyword             KeywordPolicy     `yaml:"keyword" json:"keyword"`
	Length              LengthPolicy      `yaml:"length" json:"length"`
	Headings            HeadingPolicy     `yaml:"headings" json:"headings"`
	Naturalness         NaturalnessPolicy `yaml:"naturalness" json:"naturalness"`
	Readability         ReadabilityPolicy `yaml:"readability" json:"readability"`
	Media               MediaPolicy       `yaml:"media" json:"media"`
	Snippets            SnippetPolicy     `yaml:"snippets" json:"snippets"`
	TranslationMinScore float64           `yaml:"translation_min_score" json:"translationMinScore"`
}

// DefaultPolicy returns the documented default thresholds.
func DefaultPolicy() Policy {
	return Policy{
		Weights: Weights{
			KeywordDensity:  20,
			ContentLength:   20,
			Headings:        15,
			Naturalness:     15,
			Readability:     10,
			Links:           5,
			Images:          5,
			Title:           5,
			MetaDescription: 5,
		},
		Keyword: KeywordPolicy{
			OptimalMin:       1.0,
			OptimalMax:       2.0,
			AcceptableMin:    0.5,
			AcceptableMax:    2.5,
			MinOccurrenceCap: 6,
		},
		Length:   LengthPolicy{Optimal: 1500, Acceptable: 800},
		Headings: HeadingPolicy{MinH2: 2, GoodH2: 4, GoodTotal: 6},
		Naturalness: NaturalnessPolicy{
			ArtificialDensityMax: DefaultArtificialDensityMax,
		},
		Readability: ReadabilityPolicy{
			LongSentenceWords:    20,
			MaxLongSentenceRatio: 25,
			MaxParagraphWords:    120,
		},
		Media:               MediaPolicy{MinLinks: 2, MinImages: 1},
		Snippets:            SnippetPolicy{TitleMin: 30, TitleMax: 60, MetaMin: 120, MetaMax: 160},
		TranslationMinScore: 70,
	}
}

// Validate checks weights and band ordering.
func (p Policy) Validate() error {
	w := p.Weights
	for name, v := range map[string]float64{
		DimKeywordDensity: w.KeywordDensity, DimContentLength: w.ContentLength,
		DimHeadings: w.Headings, DimNaturalness: w.Naturalness,
		DimReadability: w.Readability, DimLinks: w.Links, DimImages: w.Images,
		DimTitle: w.Title, DimMetaDescription: w.MetaDescription,
	} {
		if v < 0 {
			return fmt.Errorf("%w: weight %s is negative", ErrInvalidPolicy, name)
		}
	}
	if total := w.Total(); math.Abs(total-100) > 1e-6 {
		return fmt.Errorf("%w: weights sum to %g, want 100", ErrInvalidPolicy, total)
	}

	k := p.Keyword
	if !(k.AcceptableMin <= k.OptimalMin && k.OptimalMin <= k.OptimalMax && k.OptimalMax <= k.AcceptableMax) {
		return fmt.Errorf("%w: keyword bands must satisfy acceptable_min <= optimal_min <= optimal_max <= acceptable_max", ErrInvalidPolicy)
	}
	if k.AcceptableMin < 0 || k.MinOccurrenceCap < 0 {
		return fmt.Errorf("%w: keyword thresholds must not be negative", ErrInvalidPolicy)
	}
	if p.Length.Acceptable < 0 || p.Length.Acceptable > p.Length.Optimal {
		return fmt.Errorf("%w: length.acceptable must be between 0 and length.optimal", ErrInvalidPolicy)
	}
	if p.Headings.MinH2 < 0 || p.Headings.MinH2 > p.Headings.GoodH2 {
		return fmt.Errorf("%w: headings.min_h2 must be between 0 and headings.good_h2", ErrInvalidPolicy)
	}
	if p.Naturalness.ArtificialDensityMax <= 0 {
		return fmt.Errorf("%w: naturalness.artificial_density_max must be positive", ErrInvalidPolicy)
	}
	r := p.Readability
	if r.LongSentenceWords <= 0 || r.MaxParagraphWords <= 0 || r.MaxLongSentenceRatio < 0 || r.MaxLongSentenceRatio > 100 {
		return fmt.Errorf("%w: readability thresholds out of range", ErrInvalidPolicy)
	}
	s := p.Snippets
	if s.TitleMin > s.TitleMax || s.MetaMin > s.MetaMax {
		return fmt.Errorf("%w: snippet minimums exceed maximums", ErrInvalidPolicy)
	}
	if p.TranslationMinScore < 0 || p.TranslationMinScore > 100 {
		return fmt.Errorf("%w: translation_min_score must be within 0-100", ErrInvalidPolicy)
	}
	return nil
}
