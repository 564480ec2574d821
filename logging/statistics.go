package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/seo-optimizer/contentgate/normalize"
)

const (
	statisticsFile   = "statistics.json"
	maxKeywordLength = 80
	visitorWindow    = 24 * time.Hour
)

// KeywordCount is one entry of the popular keyword ranking.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// Statistics represents the collected request statistics
type Statistics struct {
	UniqueVisitors     map[string]time.Time `json:"uniqueVisitors"`     // IP -> last visit
	EvaluationRequests int                  `json:"evaluationRequests"` // evaluate and remediate calls
	ErrorCount         int                  `json:"errorCount"`
	PopularKeywords    map[string]int       `json:"popularKeywords"` // normalized keyword -> count
	AverageLatency     float64              `json:"averageLatency"`  // milliseconds
	TotalLatency       float64              `json:"totalLatency"`
	LastPersisted      time.Time            `json:"lastPersisted"`

	mutex  sync.RWMutex
	path   string
	logger *zap.Logger
	now    func() time.Time
}

// NewStatistics loads dataDir/statistics.json if present. A corrupt file is
// logged and replaced by empty statistics on the next save.
func NewStatistics(dataDir string, logger *zap.Logger) (*Statistics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create data directory: %w", err)
	}

	s := &Statistics{
		UniqueVisitors:  make(map[string]time.Time),
		PopularKeywords: make(map[string]int),
		path:            filepath.Join(dataDir, statisticsFile),
		logger:          logger,
		now:             time.Now,
	}
	if err := s.Load(); err != nil {
		logger.Warn("could not load existing statistics", zap.String("path", s.path), zap.Error(err))
	}
	return s, nil
}

// TrackVisitor records a visitor by IP
func (s *Statistics) TrackVisitor(ip string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.UniqueVisitors[ip] = s.now()
}

// cleanKeyword normalizes a keyword for ranking; overly long keywords are
// not tracked.
func cleanKeyword(keyword string) string {
	k := normalize.Text(keyword)
	if utf8.RuneCountInString(k) > maxKeywordLength {
		return ""
	}
	return k
}

// TrackEvaluation records one evaluation request and its latency.
func (s *Statistics) TrackEvaluation(keyword string, latencyMs float64, hasError bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.EvaluationRequests++
	if k := cleanKeyword(keyword); k != "" && !hasError {
		s.PopularKeywords[k]++
	}
	if hasError {
		s.ErrorCount++
	}

	s.TotalLatency += latencyMs
	s.AverageLatency = s.TotalLatency / float64(s.EvaluationRequests)
}

// Requests returns the number of tracked evaluation requests.
func (s *Statistics) Requests() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.EvaluationRequests
}

// GetUniqueVisitorsCount returns the number of visitors in the last 24 hours
func (s *Statistics) GetUniqueVisitorsCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.uniqueVisitorsLocked()
}

func (s *Statistics) uniqueVisitorsLocked() int {
	cutoff := s.now().Add(-visitorWindow)
	count := 0
	for _, lastVisit := range s.UniqueVisitors {
		if lastVisit.After(cutoff) {
			count++
		}
	}
	return count
}

// GetPopularKeywords returns the n most evaluated keywords, most frequent
// first, ties broken alphabetically.
func (s *Statistics) GetPopularKeywords(n int) []KeywordCount {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.popularLocked(n)
}

func (s *Statistics) popularLocked(n int) []KeywordCount {
	out := make([]KeywordCount, 0, len(s.PopularKeywords))
	for k, c := range s.PopularKeywords {
		out = append(out, KeywordCount{Keyword: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Keyword < out[j].Keyword
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// GetErrorRate returns the error rate as a percentage
func (s *Statistics) GetErrorRate() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.errorRateLocked()
}

func (s *Statistics) errorRateLocked() float64 {
	if s.EvaluationRequests == 0 {
		return 0
	}
	return float64(s.ErrorCount) / float64(s.EvaluationRequests) * 100
}

// Save persists the statistics, pruning visitors older than a day.
func (s *Statistics) Save() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cutoff := s.now().Add(-visitorWindow)
	for ip, seen := range s.UniqueVisitors {
		if !seen.After(cutoff) {
			delete(s.UniqueVisitors, ip)
		}
	}
	s.LastPersisted = s.now()

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("could not encode statistics: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("could not write statistics file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("could not replace statistics file: %w", err)
	}
	return nil
}

// SaveAsync saves in the background and logs failures.
func (s *Statistics) SaveAsync() {
	go func() {
		if err := s.Save(); err != nil {
			s.logger.Warn("saving request statistics failed", zap.Error(err))
		}
	}()
}

// Load reads the statistics file. A missing file is not an error.
func (s *Statistics) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("could not open statistics file: %w", err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := json.Unmarshal(data, s); err != nil {
		return fmt.Errorf("could not decode statistics: %w", err)
	}
	if s.UniqueVisitors == nil {
		s.UniqueVisitors = make(map[string]time.Time)
	}
	if s.PopularKeywords == nil {
		s.PopularKeywords = make(map[string]int)
	}
	return nil
}

// GetStatistics returns a summary. Popular keywords are only included in
// development mode.
func (s *Statistics) GetStatistics(dev bool) map[string]any {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := map[string]any{
		"uniqueVisitors24h": s.uniqueVisitorsLocked(),
		"totalRequests":     s.EvaluationRequests,
		"errorRate":         s.errorRateLocked(),
		"averageLatency":    s.AverageLatency,
	}
	if dev {
		out["popularKeywords"] = s.popularLocked(5)
	}
	return out
}
