package analyzer

import "github.com/seo-optimizer/contentgate/structure"

// Input is one article submitted for evaluation. Empty optional fields are
// scored as the worst case for their dimension.
type Input struct {
	Content         string `json:"content"`
	Keyword         string `json:"keyword"`
	Title           string `json:"title,omitempty"`
	MetaDescription string `json:"metaDescription,omitempty"`
}

// Severity grades an issue. Only SeverityCritical blocks CanProceed.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

// IssueID identifies the kind of problem an issue reports.
type IssueID string

const (
	IssueKeywordMissing          IssueID = "keyword_missing"
	IssueKeywordDensityLow       IssueID = "keyword_density_low"
	IssueKeywordDensityHigh      IssueID = "keyword_density_high"
	IssueContentTooShort         IssueID = "content_too_short"
	IssueContentLengthAcceptable IssueID = "content_length_acceptable"
	IssueHeadingsMissing         IssueID = "headings_missing"
	IssueHeadingsWeak            IssueID = "headings_weak"
	IssueArtificialLanguage      IssueID = "artificial_language"
	IssueBannedPhrases           IssueID = "banned_phrases"
	IssueParagraphsMissing       IssueID = "paragraphs_missing"
	IssueLongSentences           IssueID = "long_sentences"
	IssueLongParagraphs          IssueID = "long_paragraphs"
	IssueLinksMissing            IssueID = "links_missing"
	IssueImagesMissing           IssueID = "images_missing"
	IssueTitleMissing            IssueID = "title_missing"
	IssueTitleLength             IssueID = "title_length"
	IssueTitleKeyword            IssueID = "title_keyword"
	IssueMetaMissing             IssueID = "meta_missing"
	IssueMetaLength              IssueID = "meta_length"
	IssueMetaKeyword             IssueID = "meta_keyword"
)

// Dimension names, in evaluation order.
const (
	DimKeywordDensity  = "keyword_density"
	DimContentLength   = "content_length"
	DimHeadings        = "headings"
	DimNaturalness     = "naturalness"
	DimReadability     = "readability"
	DimLinks           = "links"
	DimImages          = "images"
	DimTitle           = "title"
	DimMetaDescription = "meta_description"
)

// Issue is one actionable finding.
type Issue struct {
	ID            IssueID  `json:"id"`
	Dimension     string   `json:"dimension"`
	Severity      Severity `json:"severity"`
	Message       string   `json:"message"`
	CurrentValue  string   `json:"currentValue"`
	ExpectedValue string   `json:"expectedValue"`
	AutoFixable   bool     `json:"autoFixable"`
}

// Breakdown is the outcome of one dimension. Penalty is in [0, Weight] and is
// deducted from 100 by the evaluator; Score is the 0-100 sub-score shown in
// the editor.
type Breakdown struct {
	Dimension string  `json:"dimension"`
	Passed    bool    `json:"passed"`
	Detail    string  `json:"detail"`
	Weight    float64 `json:"weight"`
	Penalty   float64 `json:"penalty"`
	Score     float64 `json:"score"`
}

// Metrics are the raw numbers behind the breakdown.
type Metrics struct {
	Words               int              `json:"words"`
	KeywordOccurrences  int              `json:"keywordOccurrences"`
	KeywordDensity      float64          `json:"keywordDensity"`
	BannedPhrases       int              `json:"bannedPhrases"`
	BannedPhraseDensity float64          `json:"bannedPhraseDensity"`
	Sentences           int              `json:"sentences"`
	LongSentenceRatio   float64          `json:"longSentenceRatio"`
	Structure           structure.Counts `json:"structure"`
}

// Result is the outcome of one evaluation.
type Result struct {
	Score      float64     `json:"score"`
	Issues     []Issue     `json:"issues"`
	CanProceed bool        `json:"canProceed"`
	Breakdown  []Breakdown `json:"breakdown"`
	Metrics    Metrics     `json:"metrics"`
}

// ReadyForTranslation reports whether the content may be sent to translation:
// nothing critical and a score of at least minScore.
func (r Result) ReadyForTranslation(minScore float64) bool {
	return r.CanProceed && r.Score >= minScore
}

// PassedHumanization reports whether the naturalness dimension passed.
func (r Result) PassedHumanization() bool {
	d, ok := r.Dimension(DimNaturalness)
	return ok && d.Passed
}

// Dimension returns the breakdown entry for name.
func (r Result) Dimension(name string) (Breakdown, bool) {
	for _, d := range r.Breakdown {
		if d.Dimension == name {
			return d, true
		}
	}
	return Breakdown{}, false
}

// Issue returns the first issue with the given id.
func (r Result) Issue(id IssueID) (Issue, bool) {
	for _, iss := range r.Issues {
		if iss.ID == id {
			return iss, true
		}
	}
	return Issue{}, false
}

// IssuesBySeverity returns the issues of one severity, in report order.
func (r Result) IssuesBySeverity(sev Severity) []Issue {
	var out []Issue
	for _, iss := range r.Issues {
		if iss.Severity == sev {
			out = append(out, iss)
		}
	}
	return out
}
