package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seo-optimizer/contentgate/analyzer"
	"github.com/seo-optimizer/contentgate/logging"
	"github.com/seo-optimizer/contentgate/middleware"
	"github.com/seo-optimizer/contentgate/server"
	"github.com/seo-optimizer/contentgate/stats"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	router http.Handler
	svc    *analyzer.Service
	stats  *logging.Statistics
}

func newFixture(t *testing.T, dev bool) fixture {
	t.Helper()
	dir := t.TempDir()
	store, err := stats.NewStorage(dir, zap.NewNop())
	require.NoError(t, err)
	svc := analyzer.NewService(nil, store, nil)
	t.Cleanup(func() { _ = svc.Shutdown() })
	st, err := logging.NewStatistics(dir, nil)
	require.NoError(t, err)

	return fixture{
		router: server.New(server.Deps{
			Service:     svc,
			Statistics:  st,
			RateLimiter: middleware.NewRateLimiter(1000, 1000),
			DevMode:     dev,
		}),
		svc:   svc,
		stats: st,
	}
}

func (f fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func stuffedContent() string {
	words := make([]string, 30)
	for i := range words {
		if i%2 == 0 && i < 24 {
			words[i] = "pesca"
		} else {
			words[i] = "agua"
		}
	}
	return strings.Join(words, " ") + "."
}

func TestHealth(t *testing.T) {
	f := newFixture(t, false)
	w := f.do(t, http.MethodGet, "/api/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
}

func TestEvaluate(t *testing.T) {
	f := newFixture(t, false)
	in := analyzer.Input{Content: stuffedContent(), Keyword: "pesca"}

	w := f.do(t, http.MethodPost, "/api/evaluate", in)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["cached"])
	assert.Equal(t, false, body["canProceed"])
	assert.Equal(t, false, body["readyForTranslation"])
	assert.Len(t, body["breakdown"], 9)
	assert.Contains(t, w.Body.String(), string(analyzer.IssueKeywordDensityHigh))

	w = f.do(t, http.MethodPost, "/api/evaluate", in)
	assert.Equal(t, true, decode(t, w)["cached"])
	assert.Equal(t, []logging.KeywordCount{{Keyword: "pesca", Count: 2}}, f.stats.GetPopularKeywords(5))
}

func TestEvaluate_EmptyContentIsScored(t *testing.T) {
	f := newFixture(t, false)
	w := f.do(t, http.MethodPost, "/api/evaluate", analyzer.Input{Keyword: "pesca"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 15.0, decode(t, w)["score"])
}

func TestEvaluate_InvalidBody(t *testing.T) {
	f := newFixture(t, false)
	w := f.do(t, http.MethodPost, "/api/evaluate", "{not json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid request body"}`, w.Body.String())
	assert.Equal(t, 100.0, f.stats.GetErrorRate())
}

func TestRemediateKeyword_DefaultsToHardCap(t *testing.T) {
	f := newFixture(t, false)
	w := f.do(t, http.MethodPost, "/api/remediate/keyword", map[string]any{
		"content": stuffedContent(),
		"keyword": "pesca",
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, 6.0, body["max"])

	enf := body["enforcement"].(map[string]any)
	assert.Equal(t, 12.0, enf["before"])
	assert.Equal(t, 6.0, enf["after"])
	assert.Equal(t, true, enf["achieved"])

	eval := body["evaluation"].(map[string]any)
	metrics := eval["metrics"].(map[string]any)
	assert.Equal(t, 6.0, metrics["keywordOccurrences"])
	for _, raw := range eval["issues"].([]any) {
		iss := raw.(map[string]any)
		if iss["id"] == string(analyzer.IssueKeywordDensityHigh) {
			assert.Equal(t, string(analyzer.SeverityWarning), iss["severity"])
		}
	}

	assert.Equal(t, 1, f.svc.Stats().GetCurrentStats().Remediations)
}

func TestRemediateKeyword_Rotation(t *testing.T) {
	f := newFixture(t, false)
	w := f.do(t, http.MethodPost, "/api/remediate/keyword", map[string]any{
		"content":      "x a x b x c",
		"keyword":      "x",
		"max":          1,
		"alternatives": []string{"y", "z"},
		"startIndex":   1,
	})

	require.Equal(t, http.StatusOK, w.Code)
	enf := decode(t, w)["enforcement"].(map[string]any)
	assert.Equal(t, "x a z b y c", enf["content"])
	assert.Equal(t, 1.0, enf["nextIndex"])
}

func TestRemediateKeyword_ExplicitZeroRemovesAll(t *testing.T) {
	f := newFixture(t, false)
	w := f.do(t, http.MethodPost, "/api/remediate/keyword", map[string]any{
		"content":      "x a x b",
		"keyword":      "x",
		"max":          0,
		"alternatives": []string{"y"},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, 0.0, body["max"])
	enf := body["enforcement"].(map[string]any)
	assert.Equal(t, "y a y b", enf["content"])
	assert.Equal(t, 0.0, enf["after"])
	assert.Equal(t, true, enf["achieved"])
}

func TestRemediateKeyword_Validation(t *testing.T) {
	f := newFixture(t, false)

	w := f.do(t, http.MethodPost, "/api/remediate/keyword", map[string]any{"content": "texto"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/remediate/keyword", map[string]any{
		"content": "texto", "keyword": "texto", "max": -1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, f.svc.Stats().GetCurrentStats().Remediations)
}

func TestRemediateParagraphs(t *testing.T) {
	f := newFixture(t, false)
	long := strings.Repeat("Una frase corta con cinco palabras. ", 10)

	w := f.do(t, http.MethodPost, "/api/remediate/paragraphs", map[string]any{
		"content":  long,
		"maxWords": 20,
		"keyword":  "frase",
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["changed"])
	assert.Equal(t, 20.0, body["maxWords"])
	content := body["content"].(string)
	for _, p := range strings.Split(content, "\n\n") {
		assert.LessOrEqual(t, len(strings.Fields(p)), 20)
	}
	assert.NotNil(t, body["evaluation"])
}

func TestRemediateParagraphs_DefaultLimit(t *testing.T) {
	f := newFixture(t, false)
	w := f.do(t, http.MethodPost, "/api/remediate/paragraphs", map[string]any{"content": "Corto."})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["changed"])
	assert.Equal(t, float64(analyzer.DefaultPolicy().Readability.MaxParagraphWords), body["maxWords"])

	w = f.do(t, http.MethodPost, "/api/remediate/paragraphs", map[string]any{"content": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLexicon(t *testing.T) {
	f := newFixture(t, false)
	w := f.do(t, http.MethodGet, "/api/lexicon", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Greater(t, body["total"], 0.0)
	cats := body["categories"].([]any)
	require.NotEmpty(t, cats)
	assert.NotContains(t, cats[0].(map[string]any), "phrases")

	dev := newFixture(t, true)
	cats = decode(t, dev.do(t, http.MethodGet, "/api/lexicon", nil))["categories"].([]any)
	assert.Contains(t, cats[0].(map[string]any), "phrases")
}

func TestStatistics(t *testing.T) {
	f := newFixture(t, false)
	f.do(t, http.MethodPost, "/api/evaluate", analyzer.Input{Content: "hola", Keyword: "pesca"})

	body := decode(t, f.do(t, http.MethodGet, "/api/statistics", nil))
	assert.Equal(t, 1.0, body["totalRequests"])
	assert.Contains(t, body, "cache")
	assert.Contains(t, body, "currentMonth")
	assert.NotContains(t, body, "popularKeywords")
	assert.NotContains(t, body, "months")

	dev := newFixture(t, true)
	dev.do(t, http.MethodPost, "/api/evaluate", analyzer.Input{Content: "hola", Keyword: "pesca"})
	body = decode(t, dev.do(t, http.MethodGet, "/api/statistics", nil))
	assert.Contains(t, body, "popularKeywords")
	assert.Contains(t, body, "months")
}

func TestRateLimit(t *testing.T) {
	dir := t.TempDir()
	st, err := logging.NewStatistics(dir, nil)
	require.NoError(t, err)
	svc := analyzer.NewService(nil, nil, nil)
	t.Cleanup(func() { _ = svc.Shutdown() })

	r := server.New(server.Deps{
		Service:     svc,
		Statistics:  st,
		RateLimiter: middleware.NewRateLimiter(0.001, 1),
	})

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		assert.Equal(t, want, w.Code, "request %d", i)
	}
}
