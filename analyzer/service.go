package analyzer

import (
	"crypto/md5"
	"encoding/hex"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/seo-optimizer/contentgate/stats"
)

// Cache entry with expiration
type cacheEntry struct {
	result    Result
	timestamp time.Time
}

// CacheStats provides statistics about the service's result cache
type CacheStats struct {
	Entries    int           `json:"entries"`
	MaxEntries int           `json:"maxEntries"`
	Hits       int64         `json:"hits"`
	Misses     int64         `json:"misses"`
	TTL        time.Duration `json:"ttl"`
}

// Service wraps an Evaluator with a TTL result cache and records monthly
// counters. Safe for concurrent use.
type Service struct {
	eval            *Evaluator
	stats           *stats.Storage
	logger          *zap.Logger
	cache           map[string]cacheEntry
	cacheMutex      sync.RWMutex
	cacheTTL        time.Duration
	maxCacheSize    int
	cleanupInterval time.Duration
	hits            atomic.Int64
	misses          atomic.Int64
	now             func() time.Time
	stop            chan struct{}
	done            chan struct{}
	stopOnce        sync.Once
}

// NewService creates a Service around eval. store may be nil, in which case
// nothing is persisted.
func NewService(eval *Evaluator, store *stats.Storage, logger *zap.Logger) *Service {
	if eval == nil {
		eval = Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		eval:            eval,
		stats:           store,
		logger:          logger,
		cache:           make(map[string]cacheEntry),
		cacheTTL:        30 * time.Minute,
		maxCacheSize:    1000,
		cleanupInterval: 5 * time.Minute,
		now:             time.Now,
		stop:            make(chan struct{}),
		done:            make(chan struct{}),
	}

	go s.periodicCleanup()

	return s
}

// Evaluator returns the wrapped evaluator.
func (s *Service) Evaluator() *Evaluator {
	return s.eval
}

// periodicCleanup removes expired entries until Shutdown is called
func (s *Service) periodicCleanup() {
	defer close(s.done)

	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stop:
			return
		}
	}
}

// cleanup removes expired entries and enforces the size limit
func (s *Service) cleanup() {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()
	s.cleanupLocked()
}

func (s *Service) cleanupLocked() {
	now := s.now()
	for key, entry := range s.cache {
		if now.Sub(entry.timestamp) > s.cacheTTL {
			delete(s.cache, key)
		}
	}

	if len(s.cache) <= s.maxCacheSize {
		return
	}

	type aged struct {
		key       string
		timestamp time.Time
	}
	entries := make([]aged, 0, len(s.cache))
	for key, entry := range s.cache {
		entries = append(entries, aged{key, entry.timestamp})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].timestamp.Before(entries[j].timestamp)
	})

	// oldest first
	for i := 0; i < len(entries)-s.maxCacheSize; i++ {
		delete(s.cache, entries[i].key)
	}
}

// SetMaxCacheSize sets the maximum number of cached results and evicts the
// oldest entries if the cache is now too large.
func (s *Service) SetMaxCacheSize(size int) {
	if size < 0 {
		size = 0
	}
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()
	s.maxCacheSize = size
	s.cleanupLocked()
}

// SetCacheTTL sets the cache TTL
func (s *Service) SetCacheTTL(ttl time.Duration) {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()
	s.cacheTTL = ttl
}

// ClearCache drops every cached result
func (s *Service) ClearCache() {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()
	s.cache = make(map[string]cacheEntry)
}

// generateCacheKey hashes every input field. Fields are separated by a NUL
// so ("ab", "c") and ("a", "bc") do not collide.
func generateCacheKey(in Input) string {
	h := md5.New()
	for _, field := range []string{in.Content, in.Keyword, in.Title, in.MetaDescription} {
		h.Write([]byte(field))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// GetCacheStats returns statistics about the cache
func (s *Service) GetCacheStats() CacheStats {
	s.cacheMutex.RLock()
	defer s.cacheMutex.RUnlock()

	return CacheStats{
		Entries:    len(s.cache),
		MaxEntries: s.maxCacheSize,
		Hits:       s.hits.Load(),
		Misses:     s.misses.Load(),
		TTL:        s.cacheTTL,
	}
}

// IsCached checks if an input's result is cached and not expired
func (s *Service) IsCached(in Input) bool {
	s.cacheMutex.RLock()
	defer s.cacheMutex.RUnlock()

	entry, found := s.cache[generateCacheKey(in)]
	return found && s.now().Sub(entry.timestamp) < s.cacheTTL
}

// Evaluate scores in, serving repeated inputs from the cache. The second
// return value reports a cache hit.
func (s *Service) Evaluate(in Input) (Result, bool) {
	key := generateCacheKey(in)

	s.cacheMutex.RLock()
	entry, found := s.cache[key]
	fresh := found && s.now().Sub(entry.timestamp) < s.cacheTTL
	s.cacheMutex.RUnlock()

	if fresh {
		s.hits.Add(1)
		s.record(stats.Delta{Hits: 1, Blocked: blocked(entry.result)})
		return cloneResult(entry.result), true
	}

	s.misses.Add(1)
	res := s.eval.Evaluate(in)
	s.record(stats.Delta{Misses: 1, Blocked: blocked(res)})

	s.cacheMutex.Lock()
	if s.maxCacheSize > 0 {
		s.cache[key] = cacheEntry{result: res, timestamp: s.now()}
		if len(s.cache) > s.maxCacheSize {
			s.cleanupLocked()
		}
	}
	s.cacheMutex.Unlock()

	s.logger.Debug("content evaluated",
		zap.Float64("score", res.Score),
		zap.Bool("can_proceed", res.CanProceed),
		zap.Int("issues", len(res.Issues)),
		zap.Int("words", res.Metrics.Words))

	return cloneResult(res), false
}

// RecordRemediation counts one remediation in the monthly statistics.
func (s *Service) RecordRemediation() {
	s.record(stats.Delta{Remediations: 1})
}

// Stats returns the monthly counter storage, or nil.
func (s *Service) Stats() *stats.Storage {
	return s.stats
}

func (s *Service) record(d stats.Delta) {
	if s.stats != nil {
		s.stats.Increment(d)
	}
}

// Shutdown stops the cleanup goroutine and persists the statistics.
func (s *Service) Shutdown() error {
	if s == nil {
		return nil
	}
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	<-s.done

	s.ClearCache()

	if s.stats != nil {
		return s.stats.Shutdown()
	}
	return nil
}

func blocked(r Result) int {
	if r.CanProceed {
		return 0
	}
	return 1
}

// cloneResult copies the slices a caller might modify so cached entries
// stay intact.
func cloneResult(r Result) Result {
	r.Issues = slices.Clone(r.Issues)
	r.Breakdown = slices.Clone(r.Breakdown)
	r.Metrics.Structure.ParagraphTexts = slices.Clone(r.Metrics.Structure.ParagraphTexts)
	return r
}
