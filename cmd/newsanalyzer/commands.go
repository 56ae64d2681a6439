package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"NewsAnalyzer/internal/app"
	"NewsAnalyzer/internal/config"
	"NewsAnalyzer/internal/infrastructure/storage"
	"NewsAnalyzer/internal/logging"
)

type rootOptions struct {
	configPath string
	cfg        config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "newsanalyzer",
		Short: "Collects news articles, analyzes them with an LLM and scores trends",
		Long: `newsanalyzer discovers articles on configured news sites, stores them,
asks an LLM for a summary, sentiment and keywords, and ranks analyzed
articles by recency and keyword frequency.

Example usage:
  newsanalyzer serve                 # cron jobs plus HTTP API
  newsanalyzer ingest                # one ingest run
  newsanalyzer analyze --limit 20    # analyze up to 20 articles
  newsanalyzer trend                 # recompute trend scores
  newsanalyzer migrate               # create tables`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			opts.cfg = cfg
			opts.logger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default $NEWS_ANALYZER_CONFIG)")

	root.AddCommand(
		newServeCmd(opts),
		newIngestCmd(opts),
		newAnalyzeCmd(opts),
		newTrendCmd(opts),
		newMigrateCmd(opts),
	)
	return root
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run scheduled jobs and the HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, err := app.New(ctx, opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer application.Close()

			return application.Serve(ctx)
		},
	}
}

func newIngestCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Discover, fetch and store articles once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOnce(cmd, opts, func(ctx context.Context, a *app.Application) (any, error) {
				return a.Pipeline().Ingest(ctx)
			})
		},
	}
}

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a batch of stored articles once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOnce(cmd, opts, func(ctx context.Context, a *app.Application) (any, error) {
				return a.Pipeline().Analyze(ctx, limit)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum articles to analyze (default pipeline.batchSize)")
	return cmd
}

func newTrendCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "trend",
		Short: "Recompute trend scores of analyzed articles once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOnce(cmd, opts, func(ctx context.Context, a *app.Application) (any, error) {
				return a.Pipeline().ScoreTrends(ctx)
			})
		},
	}
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the article and analysis tables if missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.cfg.Database.DSN == "" {
				return fmt.Errorf("database.dsn is required for migrate")
			}
			if err := storage.Migrate(cmd.Context(), opts.cfg.Database.DSN); err != nil {
				return err
			}
			opts.logger.Info("schema is up to date")
			return nil
		},
	}
}

func runOnce(cmd *cobra.Command, opts *rootOptions, step func(ctx context.Context, a *app.Application) (any, error)) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, opts.cfg, opts.logger)
	if err != nil {
		return err
	}
	defer application.Close()

	report, err := step(ctx, application)
	if err != nil {
		return err
	}
	return printReport(cmd.OutOrStdout(), report)
}

func printReport(w io.Writer, report any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
