package analyzer

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/seo-optimizer/contentgate/lexicon"
	"github.com/seo-optimizer/contentgate/normalize"
	"github.com/seo-optimizer/contentgate/phrase"
	"github.com/seo-optimizer/contentgate/structure"
)

// epsilon absorbs float noise at band boundaries so a density of exactly
// 1.0 % lands inside a band that starts at 1.0 %.
const epsilon = 1e-9

// Context is the read-only input shared by every scorer.
type Context struct {
	Input      Input
	Policy     Policy
	Counts     structure.Counts
	Normalized string
	Matches    lexicon.Matches
	Sentences  []string
}

// NewContext runs the structural counters and the normalizer once and
// matches the lexicon against the normalized text.
func NewContext(in Input, p Policy, m *lexicon.Matcher) Context {
	counts := structure.Count(in.Content, in.Keyword)
	normalized := normalize.Text(counts.Text)

	var sentences []string
	for _, para := range counts.ParagraphTexts {
		sentences = append(sentences, structure.SplitSentences(para)...)
	}

	ctx := Context{
		Input:      in,
		Policy:     p,
		Counts:     counts,
		Normalized: normalized,
		Sentences:  sentences,
	}
	if m != nil {
		ctx.Matches = m.CountMatches(normalized)
	}
	return ctx
}

// Outcome is what a scorer returns.
type Outcome struct {
	Breakdown Breakdown
	Issues    []Issue
}

// Scorer scores one dimension. Scorers must be pure.
type Scorer func(Context) Outcome

// Scorers lists every dimension in evaluation order.
var Scorers = []Scorer{
	ScoreKeywordDensity,
	ScoreContentLength,
	ScoreHeadings,
	ScoreNaturalness,
	ScoreReadability,
	ScoreLinks,
	ScoreImages,
	ScoreTitle,
	ScoreMetaDescription,
}

// ScoreKeywordDensity compares keyword occurrences per hundred words with
// the optimal and acceptable bands.
func ScoreKeywordDensity(ctx Context) Outcome {
	weight := ctx.Policy.Weights.KeywordDensity
	kp := ctx.Policy.Keyword

	if strings.TrimSpace(ctx.Input.Keyword) == "" {
		return failed(DimKeywordDensity, weight, weight, "no focus keyword", Issue{
			ID:            IssueKeywordMissing,
			Severity:      SeverityWarning,
			Message:       "No focus keyword was provided, keyword usage cannot be checked",
			CurrentValue:  "none",
			ExpectedValue: "a focus keyword",
		})
	}

	words := ctx.Counts.Words
	occ := ctx.Counts.KeywordOccurrences
	density := ctx.Counts.KeywordDensity()
	detail := fmt.Sprintf("%d occurrences in %d words (%.2f%%)", occ, words, density)
	current := fmt.Sprintf("%.2f%% (%d occurrences)", density, occ)
	expected := fmt.Sprintf("%.1f-%.1f%%", kp.OptimalMin, kp.OptimalMax)

	switch {
	case within(density, kp.OptimalMin, kp.OptimalMax):
		return passed(DimKeywordDensity, weight, detail)

	case density > kp.AcceptableMax+epsilon:
		limit := kp.HardCap(words)
		sev := SeverityWarning
		if occ > limit {
			sev = SeverityCritical
		}
		return failed(DimKeywordDensity, weight, weight, detail, Issue{
			ID:       IssueKeywordDensityHigh,
			Severity: sev,
			Message: fmt.Sprintf("Keyword %q is overused (keyword stuffing); reduce it to at most %d occurrences",
				ctx.Input.Keyword, limit),
			CurrentValue:  current,
			ExpectedValue: expected,
			AutoFixable:   true,
		})

	case density < kp.AcceptableMin-epsilon:
		return failed(DimKeywordDensity, weight, weight, detail, Issue{
			ID:            IssueKeywordDensityLow,
			Severity:      SeverityWarning,
			Message:       fmt.Sprintf("Keyword %q is under-used; mention it more often", ctx.Input.Keyword),
			CurrentValue:  current,
			ExpectedValue: expected,
		})

	case density < kp.OptimalMin:
		return failed(DimKeywordDensity, weight, weight/2, detail, Issue{
			ID:            IssueKeywordDensityLow,
			Severity:      SeverityWarning,
			Message:       fmt.Sprintf("Keyword %q density is acceptable but below the optimal range", ctx.Input.Keyword),
			CurrentValue:  current,
			ExpectedValue: expected,
		})

	default:
		return failed(DimKeywordDensity, weight, weight/2, detail, Issue{
			ID:            IssueKeywordDensityHigh,
			Severity:      SeverityWarning,
			Message:       fmt.Sprintf("Keyword %q density is acceptable but above the optimal range", ctx.Input.Keyword),
			CurrentValue:  current,
			ExpectedValue: expected,
			AutoFixable:   true,
		})
	}
}

// ScoreContentLength applies the optimal / acceptable / insufficient tiers.
func ScoreContentLength(ctx Context) Outcome {
	weight := ctx.Policy.Weights.ContentLength
	lp := ctx.Policy.Length
	words := ctx.Counts.Words
	detail := fmt.Sprintf("%d words", words)
	current := fmt.Sprintf("%d words", words)

	switch {
	case words >= lp.Optimal:
		return passed(DimContentLength, weight, detail)
	case words >= lp.Acceptable:
		return failed(DimContentLength, weight, weight/2, detail, Issue{
			ID:            IssueContentLengthAcceptable,
			Severity:      SeverityWarning,
			Message:       "Content length is acceptable but below the optimal length",
			CurrentValue:  current,
			ExpectedValue: fmt.Sprintf(">= %d words", lp.Optimal),
		})
	default:
		return failed(DimContentLength, weight, weight, detail, Issue{
			ID:            IssueContentTooShort,
			Severity:      SeverityCritical,
			Message:       "Content is too short",
			CurrentValue:  current,
			ExpectedValue: fmt.Sprintf(">= %d words", lp.Acceptable),
		})
	}
}

// ScoreHeadings checks the H2 minimum and the overall heading structure.
func ScoreHeadings(ctx Context) Outcome {
	weight := ctx.Policy.Weights.Headings
	hp := ctx.Policy.Headings
	c := ctx.Counts
	detail := fmt.Sprintf("H2: %d, H3: %d, H4: %d", c.H2, c.H3, c.H4)

	switch {
	case c.H2 < hp.MinH2:
		return failed(DimHeadings, weight, weight, detail, Issue{
			ID:            IssueHeadingsMissing,
			Severity:      SeverityCritical,
			Message:       "Not enough H2 sections",
			CurrentValue:  fmt.Sprintf("%d H2", c.H2),
			ExpectedValue: fmt.Sprintf(">= %d H2", hp.MinH2),
		})
	case c.H2 < hp.GoodH2 || c.Headings() < hp.GoodTotal:
		return failed(DimHeadings, weight, weight/2, detail, Issue{
			ID:            IssueHeadingsWeak,
			Severity:      SeverityWarning,
			Message:       "Heading structure is thin; add more H2/H3 sections",
			CurrentValue:  fmt.Sprintf("%d H2, %d headings", c.H2, c.Headings()),
			ExpectedValue: fmt.Sprintf(">= %d H2, >= %d headings", hp.GoodH2, hp.GoodTotal),
		})
	default:
		return passed(DimHeadings, weight, detail)
	}
}

// ScoreNaturalness flags content whose banned-phrase density exceeds the
// artificial-language cutoff. The sub-score falls linearly with density.
func ScoreNaturalness(ctx Context) Outcome {
	weight := ctx.Policy.Weights.Naturalness
	cutoff := ctx.Policy.Naturalness.ArtificialDensityMax
	density := bannedDensity(ctx)
	sub := math.Max(0, 100-50*density/cutoff)
	detail := fmt.Sprintf("%d banned phrases (%.2f%% of words)", ctx.Matches.Count, density)

	if density > cutoff+epsilon {
		out := failed(DimNaturalness, weight, weight, detail, Issue{
			ID:            IssueArtificialLanguage,
			Severity:      SeverityWarning,
			Message:       "Content reads as artificial: " + summarizeHits(ctx.Matches, 5),
			CurrentValue:  fmt.Sprintf("%.2f%%", density),
			ExpectedValue: fmt.Sprintf("<= %.1f%%", cutoff),
		})
		out.Breakdown.Score = round1(sub)
		return out
	}

	out := passed(DimNaturalness, weight, detail)
	out.Breakdown.Score = round1(sub)
	if ctx.Matches.Count > 0 {
		out.Issues = append(out.Issues, Issue{
			ID:            IssueBannedPhrases,
			Dimension:     DimNaturalness,
			Severity:      SeverityInfo,
			Message:       "Consider rewording: " + summarizeHits(ctx.Matches, 5),
			CurrentValue:  fmt.Sprintf("%d phrases", ctx.Matches.Count),
			ExpectedValue: "0 phrases",
		})
	}
	return out
}

// ScoreReadability checks the long-sentence ratio and paragraph length.
func ScoreReadability(ctx Context) Outcome {
	weight := ctx.Policy.Weights.Readability
	rp := ctx.Policy.Readability

	if len(ctx.Sentences) == 0 {
		return failed(DimReadability, weight, weight, "no paragraphs", Issue{
			ID:            IssueParagraphsMissing,
			Severity:      SeverityWarning,
			Message:       "No readable paragraphs were found",
			CurrentValue:  "0 paragraphs",
			ExpectedValue: ">= 1 paragraph",
		})
	}

	ratio := longSentenceRatio(ctx.Sentences, rp.LongSentenceWords)
	longParagraphs := 0
	for _, p := range ctx.Counts.ParagraphTexts {
		if structure.CountWords(p) > rp.MaxParagraphWords {
			longParagraphs++
		}
	}
	detail := fmt.Sprintf("%.0f%% long sentences, %d long paragraphs", ratio, longParagraphs)

	var issues []Issue
	penalty := 0.0
	if ratio > rp.MaxLongSentenceRatio+epsilon {
		penalty += weight / 2
		issues = append(issues, Issue{
			ID:            IssueLongSentences,
			Dimension:     DimReadability,
			Severity:      SeverityWarning,
			Message:       fmt.Sprintf("Too many sentences longer than %d words", rp.LongSentenceWords),
			CurrentValue:  fmt.Sprintf("%.0f%%", ratio),
			ExpectedValue: fmt.Sprintf("<= %.0f%%", rp.MaxLongSentenceRatio),
		})
	}
	if longParagraphs > 0 {
		penalty += weight / 2
		issues = append(issues, Issue{
			ID:            IssueLongParagraphs,
			Dimension:     DimReadability,
			Severity:      SeverityWarning,
			Message:       fmt.Sprintf("%d paragraphs are longer than %d words", longParagraphs, rp.MaxParagraphWords),
			CurrentValue:  fmt.Sprintf("%d long paragraphs", longParagraphs),
			ExpectedValue: fmt.Sprintf("<= %d words per paragraph", rp.MaxParagraphWords),
			AutoFixable:   true,
		})
	}
	if penalty == 0 {
		return passed(DimReadability, weight, detail)
	}
	out := Outcome{Breakdown: breakdown(DimReadability, weight, penalty, detail), Issues: issues}
	return out
}

// ScoreLinks requires a minimum number of links.
func ScoreLinks(ctx Context) Outcome {
	weight := ctx.Policy.Weights.Links
	minLinks := ctx.Policy.Media.MinLinks
	n := ctx.Counts.Links
	detail := fmt.Sprintf("%d links", n)
	if n >= minLinks {
		return passed(DimLinks, weight, detail)
	}
	return failed(DimLinks, weight, weight, detail, Issue{
		ID:            IssueLinksMissing,
		Severity:      SeverityWarning,
		Message:       "Add internal or external links",
		CurrentValue:  fmt.Sprintf("%d links", n),
		ExpectedValue: fmt.Sprintf(">= %d links", minLinks),
	})
}

// ScoreImages requires a minimum number of images.
func ScoreImages(ctx Context) Outcome {
	weight := ctx.Policy.Weights.Images
	minImages := ctx.Policy.Media.MinImages
	n := ctx.Counts.Images
	detail := fmt.Sprintf("%d images", n)
	if n >= minImages {
		return passed(DimImages, weight, detail)
	}
	return failed(DimImages, weight, weight, detail, Issue{
		ID:            IssueImagesMissing,
		Severity:      SeverityWarning,
		Message:       "Add at least one image",
		CurrentValue:  fmt.Sprintf("%d images", n),
		ExpectedValue: fmt.Sprintf(">= %d images", minImages),
	})
}

// ScoreTitle checks presence, length and keyword use of the SEO title.
func ScoreTitle(ctx Context) Outcome {
	sp := ctx.Policy.Snippets
	return scoreSnippet(ctx, snippetRule{
		dimension: DimTitle,
		label:     "Title",
		text:      ctx.Input.Title,
		weight:    ctx.Policy.Weights.Title,
		min:       sp.TitleMin,
		max:       sp.TitleMax,
		missing:   IssueTitleMissing,
		length:    IssueTitleLength,
		keyword:   IssueTitleKeyword,
	})
}

// ScoreMetaDescription checks presence, length and keyword use of the meta
// description. A missing description is scored as too short.
func ScoreMetaDescription(ctx Context) Outcome {
	sp := ctx.Policy.Snippets
	return scoreSnippet(ctx, snippetRule{
		dimension: DimMetaDescription,
		label:     "Meta description",
		text:      ctx.Input.MetaDescription,
		weight:    ctx.Policy.Weights.MetaDescription,
		min:       sp.MetaMin,
		max:       sp.MetaMax,
		missing:   IssueMetaMissing,
		length:    IssueMetaLength,
		keyword:   IssueMetaKeyword,
	})
}

type snippetRule struct {
	dimension string
	label     string
	text      string
	weight    float64
	min, max  int
	missing   IssueID
	length    IssueID
	keyword   IssueID
}

func scoreSnippet(ctx Context, s snippetRule) Outcome {
	text := strings.TrimSpace(s.text)
	bounds := fmt.Sprintf("%d-%d characters", s.min, s.max)
	if text == "" {
		return failed(s.dimension, s.weight, s.weight, "missing", Issue{
			ID:            s.missing,
			Severity:      SeverityWarning,
			Message:       s.label + " is missing",
			CurrentValue:  "0 characters",
			ExpectedValue: bounds,
		})
	}

	n := utf8.RuneCountInString(text)
	detail := fmt.Sprintf("%d characters", n)
	var issues []Issue
	penalty := 0.0
	if n < s.min || n > s.max {
		penalty += s.weight / 2
		msg := s.label + " is too short"
		if n > s.max {
			msg = s.label + " is too long"
		}
		issues = append(issues, Issue{
			ID:            s.length,
			Dimension:     s.dimension,
			Severity:      SeverityWarning,
			Message:       msg,
			CurrentValue:  fmt.Sprintf("%d characters", n),
			ExpectedValue: bounds,
		})
	}
	if kw := strings.TrimSpace(ctx.Input.Keyword); kw != "" && !phrase.Compile(kw).In(text) {
		penalty += s.weight / 2
		issues = append(issues, Issue{
			ID:            s.keyword,
			Dimension:     s.dimension,
			Severity:      SeverityWarning,
			Message:       fmt.Sprintf("%s does not contain the keyword %q", s.label, kw),
			CurrentValue:  "absent",
			ExpectedValue: "present",
		})
	}
	if penalty == 0 {
		return passed(s.dimension, s.weight, detail)
	}
	return Outcome{
		Breakdown: breakdown(s.dimension, s.weight, math.Min(penalty, s.weight), detail),
		Issues:    issues,
	}
}

func passed(dim string, weight float64, detail string) Outcome {
	return Outcome{Breakdown: breakdown(dim, weight, 0, detail)}
}

func failed(dim string, weight, penalty float64, detail string, iss Issue) Outcome {
	iss.Dimension = dim
	return Outcome{
		Breakdown: breakdown(dim, weight, penalty, detail),
		Issues:    []Issue{iss},
	}
}

func breakdown(dim string, weight, penalty float64, detail string) Breakdown {
	score := 100.0
	if weight > 0 {
		score = (weight - penalty) / weight * 100
	}
	return Breakdown{
		Dimension: dim,
		Passed:    penalty == 0,
		Detail:    detail,
		Weight:    weight,
		Penalty:   penalty,
		Score:     round1(score),
	}
}

func within(v, lo, hi float64) bool {
	return v >= lo-epsilon && v <= hi+epsilon
}

func bannedDensity(ctx Context) float64 {
	if ctx.Counts.Words == 0 {
		return 0
	}
	return float64(ctx.Matches.Count) / float64(ctx.Counts.Words) * 100
}

func longSentenceRatio(sentences []string, limit int) float64 {
	if len(sentences) == 0 {
		return 0
	}
	long := 0
	for _, s := range sentences {
		if structure.CountWords(s) > limit {
			long++
		}
	}
	return float64(long) / float64(len(sentences)) * 100
}

func summarizeHits(m lexicon.Matches, limit int) string {
	parts := make([]string, 0, limit)
	for i, h := range m.Hits {
		if i == limit {
			parts = append(parts, fmt.Sprintf("and %d more", len(m.Hits)-limit))
			break
		}
		parts = append(parts, fmt.Sprintf("%q x%d", h.Phrase, h.Count))
	}
	return strings.Join(parts, ", ")
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
