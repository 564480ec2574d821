// Package server exposes the evaluator and the remediation helpers over HTTP.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/seo-optimizer/contentgate/analyzer"
	"github.com/seo-optimizer/contentgate/lexicon"
	"github.com/seo-optimizer/contentgate/logging"
	"github.com/seo-optimizer/contentgate/middleware"
)

// Deps are the collaborators the router needs. Service and Statistics are
// required; the rest have defaults.
type Deps struct {
	Service     *analyzer.Service
	Statistics  *logging.Statistics
	Lexicon     lexicon.Lexicon
	RateLimiter *middleware.RateLimiter
	Logger      *zap.Logger
	DevMode     bool
}

type handlers struct {
	svc     *analyzer.Service
	stats   *logging.Statistics
	lex     lexicon.Lexicon
	logger  *zap.Logger
	devMode bool
}

// New builds the gin engine with middleware and routes.
func New(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.RateLimiter == nil {
		d.RateLimiter = middleware.NewRateLimiter(2, 5)
	}
	if len(d.Lexicon.Categories) == 0 {
		d.Lexicon = lexicon.Default()
	}

	h := &handlers{
		svc:     d.Service,
		stats:   d.Statistics,
		lex:     d.Lexicon,
		logger:  d.Logger,
		devMode: d.DevMode,
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.ErrorHandler(d.Logger))
	r.Use(middleware.CORS())
	r.Use(d.RateLimiter.RateLimit())
	r.Use(middleware.Stats(d.Statistics))

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		api.POST("/evaluate", h.evaluate)
		api.POST("/remediate/paragraphs", h.remediateParagraphs)
		api.POST("/remediate/keyword", h.remediateKeyword)
		api.GET("/lexicon", h.lexicon)
		api.GET("/statistics", h.statistics)
	}

	return r
}
