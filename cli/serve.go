package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seo-optimizer/contentgate/analyzer"
	"github.com/seo-optimizer/contentgate/config"
	"github.com/seo-optimizer/contentgate/logging"
	"github.com/seo-optimizer/contentgate/middleware"
	"github.com/seo-optimizer/contentgate/server"
	"github.com/seo-optimizer/contentgate/stats"
)

const (
	shutdownTimeout = 10 * time.Second
	retainMonths    = 12
)

func newServeCmd() *cobra.Command {
	var envDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  "Run the evaluation API. Settings come from the environment, seeded from .env.development or .env in --env-dir.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, envDir)
		},
	}

	cmd.Flags().StringVar(&envDir, "env-dir", ".", "Directory holding .env files")

	return cmd
}

func runServe(ctx context.Context, envDir string) error {
	config.LoadEnv(nil, envDir)
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.DevMode)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	gin.SetMode(cfg.GinMode)

	eval, err := cfg.Evaluator()
	if err != nil {
		return err
	}
	lex, err := config.LoadLexicon(cfg.LexiconFile)
	if err != nil {
		return err
	}

	store, err := stats.NewStorage(cfg.DataDir, logger.Named("stats"))
	if err != nil {
		return err
	}
	store.Cleanup(retainMonths)

	svc := analyzer.NewService(eval, store, logger.Named("analyzer"))
	svc.SetCacheTTL(cfg.CacheTTL)
	svc.SetMaxCacheSize(cfg.CacheMaxEntries)

	statistics, err := logging.NewStatistics(cfg.DataDir, logger.Named("statistics"))
	if err != nil {
		_ = svc.Shutdown()
		return err
	}

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: server.New(server.Deps{
			Service:     svc,
			Statistics:  statistics,
			Lexicon:     lex,
			RateLimiter: middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
			Logger:      logger,
			DevMode:     cfg.DevMode,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", "http://localhost:"+cfg.Port), zap.Bool("dev", cfg.DevMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case serveErr = <-errCh:
		logger.Error("server failed", zap.Error(serveErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}

	if err := svc.Shutdown(); err != nil {
		logger.Error("failed to persist monthly stats", zap.Error(err))
	}
	if err := statistics.Save(); err != nil {
		logger.Error("failed to save statistics", zap.Error(err))
	}

	if serveErr != nil {
		return fmt.Errorf("serving: %w", serveErr)
	}
	return nil
}
