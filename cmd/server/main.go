package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"

	"github.com/vlmbench/vlmbench/internal/api"
	"github.com/vlmbench/vlmbench/internal/catalog"
	"github.com/vlmbench/vlmbench/internal/config"
	"github.com/vlmbench/vlmbench/internal/export"
	"github.com/vlmbench/vlmbench/internal/logging"
	"github.com/vlmbench/vlmbench/internal/search"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "vlmbench server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("VLMBENCH_CONFIG"))
	if err != nil {
		return err
	}
	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, closeSource, err := catalog.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open data source: %w", err)
	}
	defer closeSource()

	cat := catalog.New(source, logger)
	opts := api.Options{
		Matcher:  search.NewMatcher(cfg.SearchThreshold),
		CacheTTL: cfg.CacheTTL,
		Logger:   logger,
	}
	if cfg.ExportBucket != "" {
		awsCfg, err := cfg.AWS(ctx)
		if err != nil {
			return err
		}
		opts.Uploader = export.NewS3Uploader(s3.NewFromConfig(awsCfg), cfg.ExportBucket)
		logger.Info().Str("bucket", cfg.ExportBucket).Msg("export uploads enabled")
	}

	mux := http.NewServeMux()
	api.NewServer(cat, opts).RegisterRoutes(mux)
	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.LogRequests(logger, mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// A failed load leaves the API answering 503; keep serving.
		if err := cat.Load(gctx); err != nil {
			logger.Error().Err(err).Msg("initial dataset load failed")
		}
		return nil
	})
	g.Go(func() error {
		logger.Info().Str("addr", httpSrv.Addr).Str("source", source.Name()).Msg("vlmbench API server starting")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info().Msg("shutting down")
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
