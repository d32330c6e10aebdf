package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"p12status/internal/bundle"
	"p12status/internal/checker"
	"p12status/internal/dates"
	"p12status/internal/logging"
	"p12status/internal/runner"
	"p12status/internal/status"
	"p12status/internal/ui"
)

// checkCmd runs one pass over the report
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check every certificate in the report and update it",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

var dryRun bool

func init() {
	rootCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Print the report changes instead of writing them")
	checkCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Print the report changes instead of writing them")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := checker.NewClient(checker.Options{
		BaseURL:       cfg.Service.BaseURL,
		UserAgent:     cfg.Service.UserAgent,
		TokenTimeout:  cfg.GetTokenTimeout(),
		SubmitTimeout: cfg.GetSubmitTimeout(),
		Logger:        logging.For(logger, logging.CategoryChecker),
	})
	if err != nil {
		return err
	}

	locator := bundle.NewLocator(
		cfg.Bundles.Root,
		cfg.Bundles.DefaultPassword,
		cfg.Bundles.PasswordFile,
		logging.For(logger, logging.CategoryBundle),
	)

	styles := ui.DefaultStyles()
	r := runner.New(client, locator, runner.Options{
		ReportPath:         cfg.Report.Path,
		RecommendMarker:    cfg.Report.RecommendMarker,
		RecommendedCompany: cfg.Report.RecommendedCompany,
		DryRun:             dryRun,
		Normalizer:         dates.NewNormalizer(cfg.Extraction.DatePolicy()),
		Classifier:         status.NewClassifier(cfg.Extraction.Keywords()),
		Out:                cmd.OutOrStdout(),
		Styles:             &styles,
		Logger:             logger,
	})

	sum, err := r.Run(ctx)
	if err != nil {
		return err
	}

	logger.Info("Run finished",
		zap.String("run_id", sum.RunID),
		zap.Int("checked", sum.Checked()),
		zap.Int("skipped", sum.Skipped),
		zap.Bool("written", sum.Written))
	return nil
}
