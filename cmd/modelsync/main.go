// Command modelsync imports the OpenVLM leaderboard into a dataset file or
// the model database.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vlmbench/vlmbench/internal/config"
	"github.com/vlmbench/vlmbench/internal/database"
	"github.com/vlmbench/vlmbench/internal/leaderboard"
	"github.com/vlmbench/vlmbench/internal/logging"
)

var (
	outputPath   string
	toDatabase   bool
	dryRun       bool
	skipNoParams bool
	concurrency  int
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:          "modelsync",
	Short:        "Import the OpenVLM leaderboard into the vlmbench dataset",
	SilenceUsage: true,
	RunE:         runSync,
}

func init() {
	rootCmd.Flags().StringVar(&outputPath, "output", "internal/catalog/data/models.json", "Dataset file to write")
	rootCmd.Flags().BoolVar(&toDatabase, "db", false, "Upsert into the configured database instead of writing a file")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Fetch and convert without saving")
	rootCmd.Flags().BoolVar(&skipNoParams, "skip-no-params", false, "Skip models without parameter information instead of assuming 10B")
	rootCmd.Flags().IntVar(&concurrency, "concurrency", 4, "Parallel database upserts")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log skipped models")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSync(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(os.Getenv("VLMBENCH_CONFIG"))
	if err != nil {
		return err
	}
	logger := logging.New(logging.Config{Level: cfg.LogLevel, Verbose: verbose, Format: "console"})
	ctx := cmd.Context()

	logger.Info().Str("url", cfg.LeaderboardURL).Msg("fetching leaderboard")
	lb, err := leaderboard.NewClient(cfg.LeaderboardURL).Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch leaderboard: %w", err)
	}

	records, report := leaderboard.Convert(lb, leaderboard.Options{SkipNoParams: skipNoParams})
	for _, s := range report.Skipped {
		logger.Debug().Str("model", s.Name).Str("reason", s.Reason).Msg("skipped")
	}
	for _, name := range report.Defaulted {
		logger.Warn().Str("model", name).Float64("params", leaderboard.DefaultParams).Msg("using default parameter count")
	}
	logger.Info().
		Str("leaderboard_time", lb.Time).
		Int("total", report.Total).
		Int("converted", report.Converted).
		Int("skipped", len(report.Skipped)).
		Msg("leaderboard converted")
	if len(records) == 0 {
		return fmt.Errorf("no models were converted, check the leaderboard format")
	}
	for _, fc := range leaderboard.CountFamilies(records) {
		logger.Info().Str("family", fc.Family).Int("models", fc.Count).Msg("family")
	}
	if err := database.ValidateRecords(records); err != nil {
		return fmt.Errorf("converted records invalid: %w", err)
	}

	switch {
	case dryRun:
		for _, m := range records[:min(5, len(records))] {
			logger.Info().Str("model", m.Name).Str("family", m.Family).Float64("score", m.Score).Msg("sample")
		}
		return nil
	case toDatabase:
		return upsertAll(ctx, cfg, records, logger)
	default:
		if err := writeDataset(outputPath, records); err != nil {
			return err
		}
		logger.Info().Int("models", len(records)).Str("path", outputPath).Msg("dataset written")
		return nil
	}
}

// writeDataset replaces path atomically.
func writeDataset(path string, records []database.ModelRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace dataset: %w", err)
	}
	return nil
}

// upsertAll writes every record, logging and counting individual failures
// rather than aborting.
func upsertAll(ctx context.Context, cfg *config.Config, records []database.ModelRecord, logger zerolog.Logger) error {
	connString, err := cfg.DatabaseConnString(ctx)
	if err != nil {
		return err
	}
	repo, err := database.NewRepository(ctx, connString)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer repo.Close()
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}

	updated := upsertRecords(ctx, repo, records, concurrency, logger)
	logger.Info().Int64("updated", updated).Int("total", len(records)).Msg("database sync complete")
	if updated == 0 {
		return fmt.Errorf("no models were stored")
	}
	return nil
}

func upsertRecords(ctx context.Context, repo database.Repo, records []database.ModelRecord, limit int, logger zerolog.Logger) int64 {
	var updated atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, limit))
	for i := range records {
		m := &records[i]
		g.Go(func() error {
			if err := repo.UpsertModel(gctx, m); err != nil {
				logger.Warn().Err(err).Str("model", m.Name).Msg("upsert failed")
				return nil
			}
			updated.Add(1)
			return nil
		})
	}
	g.Wait()
	return updated.Load()
}
