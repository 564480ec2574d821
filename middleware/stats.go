package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/seo-optimizer/contentgate/logging"
)

// KeywordKey is the context key handlers use to report the evaluated keyword.
const KeywordKey = "keyword"

const saveEvery = 100

// Stats tracks visitors and, for evaluation routes, latency, errors and the
// keyword the handler stored under KeywordKey. Statistics are saved in the
// background every 100 tracked requests.
func Stats(stats *logging.Statistics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		stats.TrackVisitor(c.ClientIP())

		c.Next()

		if c.Request.Method != http.MethodPost || !isEvaluationPath(c.Request.URL.Path) {
			return
		}
		latency := float64(time.Since(start).Microseconds()) / 1000
		stats.TrackEvaluation(c.GetString(KeywordKey), latency, c.Writer.Status() >= http.StatusBadRequest)

		if stats.Requests()%saveEvery == 0 {
			stats.SaveAsync()
		}
	}
}

func isEvaluationPath(path string) bool {
	return path == "/api/evaluate" || strings.HasPrefix(path, "/api/remediate/")
}

// Logger writes one structured line per request.
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("request_id", RequestIDFrom(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error("request failed", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request rejected", fields...)
		default:
			logger.Info("request handled", fields...)
		}
	}
}
