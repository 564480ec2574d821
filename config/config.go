// Package config reads the service settings from the environment (optionally
// seeded from .env files) and the scoring policy and phrase lists from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/seo-optimizer/contentgate/analyzer"
	"github.com/seo-optimizer/contentgate/lexicon"
)

// Environment variable names.
const (
	EnvPort            = "PORT"
	EnvGinMode         = "GIN_MODE"
	EnvDevMode         = "DEV_MODE"
	EnvDataDir         = "DATA_DIR"
	EnvPolicyFile      = "POLICY_FILE"
	EnvLexiconFile     = "LEXICON_FILE"
	EnvRateLimitRPS    = "RATE_LIMIT_RPS"
	EnvRateLimitBurst  = "RATE_LIMIT_BURST"
	EnvCacheTTL        = "CACHE_TTL"
	EnvCacheMaxEntries = "CACHE_MAX_ENTRIES"
)

// Config holds the service settings.
type Config struct {
	Port            string
	GinMode         string
	DevMode         bool
	DataDir         string
	PolicyFile      string
	LexiconFile     string
	RateLimitRPS    float64
	RateLimitBurst  int
	CacheTTL        time.Duration
	CacheMaxEntries int
}

// Default returns the settings used when no variable is set.
func Default() Config {
	return Config{
		Port:            "8082",
		GinMode:         gin.ReleaseMode,
		DataDir:         "./data",
		RateLimitRPS:    2,
		RateLimitBurst:  5,
		CacheTTL:        30 * time.Minute,
		CacheMaxEntries: 1000,
	}
}

// LoadEnv seeds the environment from .env.development, falling back to .env.
// Variables already set are never overridden. Missing files are not an error.
func LoadEnv(logger *zap.Logger, dir string) {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, name := range []string{".env.development", ".env"} {
		file := filepath.Join(dir, name)
		if err := godotenv.Load(file); err == nil {
			logger.Debug("environment loaded", zap.String("file", file))
			return
		}
	}
	logger.Debug("no .env file found, using environment variables")
}

// FromEnv overlays environment variables on Default.
func FromEnv() (Config, error) {
	cfg := Default()
	var errs []error

	if v := os.Getenv(EnvPort); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv(EnvGinMode); v != "" {
		cfg.GinMode = v
	}
	cfg.DevMode = os.Getenv(EnvDevMode) == "true"
	if v := os.Getenv(EnvDataDir); v != "" {
		cfg.DataDir = v
	}
	cfg.PolicyFile = os.Getenv(EnvPolicyFile)
	cfg.LexiconFile = os.Getenv(EnvLexiconFile)

	if v := os.Getenv(EnvRateLimitRPS); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			errs = append(errs, fmt.Errorf("%s: want a positive number, got %q", EnvRateLimitRPS, v))
		} else {
			cfg.RateLimitRPS = f
		}
	}
	if v := os.Getenv(EnvRateLimitBurst); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			errs = append(errs, fmt.Errorf("%s: want a positive integer, got %q", EnvRateLimitBurst, v))
		} else {
			cfg.RateLimitBurst = n
		}
	}
	if v := os.Getenv(EnvCacheTTL); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			errs = append(errs, fmt.Errorf("%s: want a duration such as 30m, got %q", EnvCacheTTL, v))
		} else {
			cfg.CacheTTL = d
		}
	}
	if v := os.Getenv(EnvCacheMaxEntries); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errs = append(errs, fmt.Errorf("%s: want a non-negative integer, got %q", EnvCacheMaxEntries, v))
		} else {
			cfg.CacheMaxEntries = n
		}
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("invalid environment: %w", err)
	}
	return cfg, nil
}

// LoadPolicy reads a YAML policy file. Keys present in the file override
// DefaultPolicy; the merged policy is validated. An empty path returns the
// default policy.
func LoadPolicy(path string) (analyzer.Policy, error) {
	policy := analyzer.DefaultPolicy()
	if path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return analyzer.Policy{}, fmt.Errorf("reading policy %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return analyzer.Policy{}, fmt.Errorf("parsing policy %s: %w", path, err)
	}
	if err := policy.Validate(); err != nil {
		return analyzer.Policy{}, fmt.Errorf("policy %s: %w", path, err)
	}
	return policy, nil
}

// LoadLexicon reads a phrase list file, or returns the embedded default for
// an empty path.
func LoadLexicon(path string) (lexicon.Lexicon, error) {
	if path == "" {
		return lexicon.Default(), nil
	}
	return lexicon.Load(path)
}

// Evaluator builds an evaluator from the configured policy and lexicon.
func (c Config) Evaluator() (*analyzer.Evaluator, error) {
	policy, err := LoadPolicy(c.PolicyFile)
	if err != nil {
		return nil, err
	}
	lex, err := LoadLexicon(c.LexiconFile)
	if err != nil {
		return nil, err
	}
	m, err := lexicon.NewMatcher(lex)
	if err != nil {
		return nil, err
	}
	return analyzer.New(policy, m)
}
