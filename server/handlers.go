package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/seo-optimizer/contentgate/analyzer"
	"github.com/seo-optimizer/contentgate/middleware"
	"github.com/seo-optimizer/contentgate/remediate"
	"github.com/seo-optimizer/contentgate/stats"
)

type evaluateResponse struct {
	analyzer.Result
	ReadyForTranslation bool `json:"readyForTranslation"`
	PassedHumanization  bool `json:"passedHumanization"`
	Cached              bool `json:"cached"`
}

func (h *handlers) respond(res analyzer.Result, cached bool) evaluateResponse {
	return evaluateResponse{
		Result:              res,
		ReadyForTranslation: res.ReadyForTranslation(h.svc.Evaluator().Policy().TranslationMinScore),
		PassedHumanization:  res.PassedHumanization(),
		Cached:              cached,
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func (h *handlers) evaluate(c *gin.Context) {
	var in analyzer.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Debug("invalid evaluate body", zap.Error(err))
		badRequest(c, "Invalid request body")
		return
	}
	c.Set(middleware.KeywordKey, in.Keyword)

	res, cached := h.svc.Evaluate(in)
	c.JSON(http.StatusOK, h.respond(res, cached))
}

type paragraphsRequest struct {
	Content         string `json:"content" binding:"required"`
	MaxWords        int    `json:"maxWords" binding:"min=0"`
	Keyword         string `json:"keyword"`
	Title           string `json:"title"`
	MetaDescription string `json:"metaDescription"`
}

func (h *handlers) remediateParagraphs(c *gin.Context) {
	var req paragraphsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "content is required and maxWords must not be negative")
		return
	}
	c.Set(middleware.KeywordKey, req.Keyword)

	maxWords := req.MaxWords
	if maxWords == 0 {
		maxWords = h.svc.Evaluator().Policy().Readability.MaxParagraphWords
	}
	content := remediate.SplitLongParagraphs(req.Content, maxWords)
	h.svc.RecordRemediation()

	res, cached := h.svc.Evaluate(analyzer.Input{
		Content:         content,
		Keyword:         req.Keyword,
		Title:           req.Title,
		MetaDescription: req.MetaDescription,
	})
	c.JSON(http.StatusOK, gin.H{
		"content":    content,
		"changed":    content != req.Content,
		"maxWords":   maxWords,
		"evaluation": h.respond(res, cached),
	})
}

type keywordRequest struct {
	Content         string   `json:"content" binding:"required"`
	Keyword         string   `json:"keyword" binding:"required"`
	Max             *int     `json:"max" binding:"omitempty,min=0"`
	Alternatives    []string `json:"alternatives"`
	StartIndex      int      `json:"startIndex" binding:"min=0"`
	Title           string   `json:"title"`
	MetaDescription string   `json:"metaDescription"`
}

func (h *handlers) remediateKeyword(c *gin.Context) {
	var req keywordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "content and keyword are required; max and startIndex must not be negative")
		return
	}
	c.Set(middleware.KeywordKey, req.Keyword)

	// An absent max falls back to the hard cap; an explicit 0 removes every use.
	limit := h.svc.Evaluator().KeywordCap(req.Content)
	if req.Max != nil {
		limit = *req.Max
	}
	enf := remediate.EnforceKeywordLimit(req.Content, remediate.KeywordLimit{
		Keyword:      req.Keyword,
		Max:          limit,
		Alternatives: req.Alternatives,
		StartIndex:   req.StartIndex,
	})
	h.svc.RecordRemediation()
	if !enf.Achieved {
		h.logger.Info("keyword limit not reached",
			zap.String("request_id", middleware.RequestIDFrom(c)),
			zap.Int("before", enf.Before),
			zap.Int("after", enf.After),
			zap.Int("max", limit))
	}

	res, cached := h.svc.Evaluate(analyzer.Input{
		Content:         enf.Content,
		Keyword:         req.Keyword,
		Title:           req.Title,
		MetaDescription: req.MetaDescription,
	})
	c.JSON(http.StatusOK, gin.H{
		"enforcement": enf,
		"max":         limit,
		"evaluation":  h.respond(res, cached),
	})
}

type categorySummary struct {
	Name    string   `json:"name"`
	Count   int      `json:"count"`
	Phrases []string `json:"phrases,omitempty"`
}

func (h *handlers) lexicon(c *gin.Context) {
	out := make([]categorySummary, 0, len(h.lex.Categories))
	for _, cat := range h.lex.Categories {
		s := categorySummary{Name: cat.Name, Count: len(cat.Phrases)}
		if h.devMode {
			s.Phrases = cat.Phrases
		}
		out = append(out, s)
	}
	c.JSON(http.StatusOK, gin.H{
		"categories": out,
		"total":      h.lex.Size(),
	})
}

func (h *handlers) statistics(c *gin.Context) {
	out := h.stats.GetStatistics(h.devMode)
	out["cache"] = h.svc.GetCacheStats()

	if store := h.svc.Stats(); store != nil {
		out["currentMonth"] = store.GetCurrentStats()
		if h.devMode {
			months := make(map[string]stats.MonthlyStats)
			for _, m := range store.GetAllMonths() {
				if ms, ok := store.GetMonthlyStats(m); ok {
					months[m] = ms
				}
			}
			out["months"] = months
		}
	}

	c.JSON(http.StatusOK, out)
}
