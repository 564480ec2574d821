package analyzer

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/seo-optimizer/contentgate/lexicon"
	"github.com/seo-optimizer/contentgate/structure"
)

// Evaluator runs the scoring pipeline. It holds only read-only state and is
// safe for concurrent use.
type Evaluator struct {
	policy  Policy
	matcher *lexicon.Matcher
}

// New validates policy and returns an Evaluator using matcher for the
// naturalness check.
func New(policy Policy, matcher *lexicon.Matcher) (*Evaluator, error) {
	if matcher == nil {
		return nil, errors.New("analyzer: nil lexicon matcher")
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{policy: policy, matcher: matcher}, nil
}

// Policy returns the thresholds in use.
func (e *Evaluator) Policy() Policy {
	return e.policy
}

// Matcher returns the compiled lexicon in use.
func (e *Evaluator) Matcher() *lexicon.Matcher {
	return e.matcher
}

// Evaluate scores in. It has no side effects and returns equal results for
// equal inputs.
func (e *Evaluator) Evaluate(in Input) Result {
	ctx := NewContext(in, e.policy, e.matcher)

	res := Result{
		Breakdown: make([]Breakdown, 0, len(Scorers)),
		Issues:    []Issue{},
	}
	deducted := 0.0
	for _, score := range Scorers {
		out := score(ctx)
		res.Breakdown = append(res.Breakdown, out.Breakdown)
		res.Issues = append(res.Issues, out.Issues...)
		deducted += out.Breakdown.Penalty
	}

	sort.SliceStable(res.Issues, func(i, j int) bool {
		return res.Issues[i].Severity.rank() < res.Issues[j].Severity.rank()
	})

	res.Score = round1(math.Max(0, 100-deducted))
	res.CanProceed = len(res.IssuesBySeverity(SeverityCritical)) == 0
	res.Metrics = Metrics{
		Words:               ctx.Counts.Words,
		KeywordOccurrences:  ctx.Counts.KeywordOccurrences,
		KeywordDensity:      round2(ctx.Counts.KeywordDensity()),
		BannedPhrases:       ctx.Matches.Count,
		BannedPhraseDensity: round2(bannedDensity(ctx)),
		Sentences:           len(ctx.Sentences),
		LongSentenceRatio:   round2(longSentenceRatio(ctx.Sentences, e.policy.Readability.LongSentenceWords)),
		Structure:           ctx.Counts,
	}
	return res
}

// KeywordCap is the default occurrence limit for content: the hard cap at
// its word count.
func (e *Evaluator) KeywordCap(content string) int {
	return e.policy.Keyword.HardCap(structure.Count(content, "").Words)
}

var (
	defaultOnce sync.Once
	defaultEval *Evaluator
)

// Default returns the evaluator built from DefaultPolicy and the embedded
// lexicon.
func Default() *Evaluator {
	defaultOnce.Do(func() {
		m, err := lexicon.NewMatcher(lexicon.Default())
		if err != nil {
			panic(fmt.Sprintf("analyzer: default lexicon: %v", err))
		}
		e, err := New(DefaultPolicy(), m)
		if err != nil {
			panic(fmt.Sprintf("analyzer: default policy: %v", err))
		}
		defaultEval = e
	})
	return defaultEval
}

// Evaluate scores in with the default evaluator.
func Evaluate(in Input) Result {
	return Default().Evaluate(in)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
