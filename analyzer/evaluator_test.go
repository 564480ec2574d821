package analyzer

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	keywordSentence = "La pesca en este tramo exige paciencia."
	neutralSentence = "El río baja tranquilo entre las piedras grises."
	goodTitle       = "Guía de pesca en ríos de montaña para principiantes"
	goodMeta        = "Aprende a preparar tu jornada de pesca en ríos de montaña: equipo básico, horarios, permisos y consejos prácticos para volver con buenas capturas."
)

// goodArticle has 212 words, 4 keyword occurrences, 4 H2, 4 H3, 2 links
// and 1 image.
func goodArticle() string {
	var b strings.Builder
	for i := 1; i <= 4; i++ {
		fmt.Fprintf(&b, "## Sección %d\n\n### Detalle %d\n\n", i, i)
		b.WriteString(keywordSentence)
		for j := 0; j < 5; j++ {
			b.WriteString(" " + neutralSentence)
		}
		b.WriteString("\n\n")
	}
	b.WriteString("Más información en [la guía](https://example.com/guia) y [el mapa](https://example.com/mapa).\n\n")
	b.WriteString("![Río de montaña](https://example.com/rio.jpg)\n")
	return b.String()
}

func shortArticleEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	p := DefaultPolicy()
	p.Length = LengthPolicy{Optimal: 200, Acceptable: 100}
	e, err := New(p, Default().Matcher())
	require.NoError(t, err)
	return e
}

// stuffedSentence is a single 30-word sentence repeating keyword 12 times.
func stuffedSentence(keyword string) string {
	filler := []string{"de", "río", "y", "mar", "con", "amigos", "al", "alba", "sin", "prisa", "en", "verano", "o", "invierno", "cada", "semana", "junto", "al"}
	words := make([]string, 0, 30)
	next := 0
	for i := 0; i < 30; i++ {
		if i%5 == 0 || i%5 == 2 {
			words = append(words, keyword)
			continue
		}
		words = append(words, filler[next])
		next++
	}
	return strings.Join(words, " ") + "."
}

func TestEvaluate_GoodArticlePasses(t *testing.T) {
	e := shortArticleEvaluator(t)

	res := e.Evaluate(Input{
		Content:         goodArticle(),
		Keyword:         "pesca",
		Title:           goodTitle,
		MetaDescription: goodMeta,
	})

	assert.Empty(t, res.Issues)
	assert.Equal(t, 100.0, res.Score)
	assert.True(t, res.CanProceed)
	assert.True(t, res.ReadyForTranslation(e.Policy().TranslationMinScore))
	assert.True(t, res.PassedHumanization())

	assert.Equal(t, 212, res.Metrics.Words)
	assert.Equal(t, 4, res.Metrics.KeywordOccurrences)
	assert.Equal(t, 1.89, res.Metrics.KeywordDensity)
	assert.Equal(t, 4, res.Metrics.Structure.H2)
	assert.Equal(t, 4, res.Metrics.Structure.H3)
	assert.Equal(t, 2, res.Metrics.Structure.Links)
	assert.Equal(t, 1, res.Metrics.Structure.Images)
	assert.Equal(t, 25, res.Metrics.Sentences)
	require.Len(t, res.Breakdown, len(Scorers))
	for _, d := range res.Breakdown {
		assert.True(t, d.Passed, d.Dimension)
	}
}

func TestEvaluate_EmptyContent(t *testing.T) {
	res := Evaluate(Input{Content: "", Keyword: "pesca"})

	assert.Less(t, res.Score, 30.0)
	assert.Equal(t, 15.0, res.Score)
	assert.False(t, res.CanProceed)

	iss, ok := res.Issue(IssueContentTooShort)
	require.True(t, ok)
	assert.Equal(t, SeverityCritical, iss.Severity)

	require.NotEmpty(t, res.Issues)
	assert.Equal(t, SeverityCritical, res.Issues[0].Severity, "critical issues come first")
}

func TestEvaluate_KeywordStuffingIsCritical(t *testing.T) {
	content := stuffedSentence("pesca")
	res := Evaluate(Input{Content: content, Keyword: "pesca"})

	assert.Equal(t, 30, res.Metrics.Words)
	assert.Equal(t, 12, res.Metrics.KeywordOccurrences)

	iss, ok := res.Issue(IssueKeywordDensityHigh)
	require.True(t, ok)
	assert.Equal(t, SeverityCritical, iss.Severity)
	assert.False(t, res.CanProceed)
	assert.False(t, res.ReadyForTranslation(0))
}

func TestEvaluate_KeywordWithMetacharacters(t *testing.T) {
	content := "El precio es $5.00 (aprox) y C++ sigue vigente. Aprender C++ lleva tiempo."

	assert.NotPanics(t, func() {
		res := Evaluate(Input{Content: content, Keyword: "C++"})
		assert.Equal(t, 2, res.Metrics.KeywordOccurrences)
	})
	assert.NotPanics(t, func() {
		Evaluate(Input{Content: content, Keyword: "$5.00 (aprox"})
	})
}

func TestEvaluate_MissingOptionalFieldsNeverFail(t *testing.T) {
	res := Evaluate(Input{Content: goodArticle()})

	_, ok := res.Issue(IssueKeywordMissing)
	assert.True(t, ok)
	_, ok = res.Issue(IssueTitleMissing)
	assert.True(t, ok)
	_, ok = res.Issue(IssueMetaMissing)
	assert.True(t, ok)
}

func TestEvaluate_ArtificialLanguageFailsHumanization(t *testing.T) {
	content := strings.Repeat("Cabe destacar que la sinergia es increíble. ", 10)
	res := Evaluate(Input{Content: content, Keyword: "sinergia"})

	assert.False(t, res.PassedHumanization())
	iss, ok := res.Issue(IssueArtificialLanguage)
	require.True(t, ok)
	assert.Equal(t, SeverityWarning, iss.Severity)
	assert.Equal(t, 30, res.Metrics.BannedPhrases)
}

func TestResult_Gates(t *testing.T) {
	r := Result{Score: 80, CanProceed: true}
	assert.True(t, r.ReadyForTranslation(70))
	assert.False(t, r.ReadyForTranslation(85))

	r.CanProceed = false
	assert.False(t, r.ReadyForTranslation(0))
	assert.False(t, r.PassedHumanization(), "missing dimension never passes")

	r.Issues = []Issue{
		{ID: IssueLinksMissing, Severity: SeverityWarning},
		{ID: IssueContentTooShort, Severity: SeverityCritical},
		{ID: IssueImagesMissing, Severity: SeverityWarning},
	}
	assert.Len(t, r.IssuesBySeverity(SeverityWarning), 2)
	assert.Len(t, r.IssuesBySeverity(SeverityInfo), 0)
}

// keywordGen mixes plain keywords with arbitrary text and keywords carrying
// invalid UTF-8 bytes.
func keywordGen() gopter.Gen {
	return gen.OneGenOf(
		gen.AlphaString(),
		gen.AnyString(),
		gen.AlphaString().Map(func(s string) string { return s + "\xff" }),
		gen.AlphaString().Map(func(s string) string { return "\xc3(" + s }),
	)
}

func TestEvaluate_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("evaluation is idempotent", prop.ForAll(
		func(content, keyword string) bool {
			in := Input{Content: content, Keyword: keyword}
			return reflect.DeepEqual(Evaluate(in), Evaluate(in))
		},
		gen.AnyString(),
		keywordGen(),
	))

	properties.Property("score stays within 0-100 and gates agree with issues", prop.ForAll(
		func(content, keyword string) bool {
			res := Evaluate(Input{Content: content, Keyword: keyword})
			if res.Score < 0 || res.Score > 100 {
				return false
			}
			return res.CanProceed == (len(res.IssuesBySeverity(SeverityCritical)) == 0)
		},
		gen.AnyString(),
		keywordGen(),
	))

	properties.Property("more banned phrases never improve naturalness", prop.ForAll(
		func(filler, banned int) bool {
			base := strings.Repeat("agua ", filler)
			fewer := Evaluate(Input{Content: base + strings.Repeat("sinergia ", banned)})
			more := Evaluate(Input{Content: base + strings.Repeat("sinergia ", banned+1)})

			a, _ := fewer.Dimension(DimNaturalness)
			b, _ := more.Dimension(DimNaturalness)
			return b.Score <= a.Score &&
				b.Penalty >= a.Penalty &&
				more.Metrics.BannedPhrases == fewer.Metrics.BannedPhrases+1
		},
		gen.IntRange(10, 200),
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t)
}

func TestEvaluate_InvalidUTF8Keyword(t *testing.T) {
	in := Input{Content: "## a\n\nTexto de pesca\uFFFD para la prueba.", Keyword: "pesca\xff"}

	var res Result
	require.NotPanics(t, func() { res = Evaluate(in) })
	assert.Equal(t, 1, res.Metrics.KeywordOccurrences)
}

func TestEvaluator_KeywordCap(t *testing.T) {
	e := Default()

	assert.Equal(t, 6, e.KeywordCap(""))
	assert.Equal(t, 6, e.KeywordCap(goodArticle()))
	assert.Equal(t, 10, e.KeywordCap(strings.Repeat("palabra ", 400)))
}
