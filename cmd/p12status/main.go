package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"p12status/internal/config"
	"p12status/internal/logging"
)

var (
	// Global flags
	verbose     bool
	configPath  string
	reportPath  string
	bundlesRoot string

	// Loaded in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "p12status",
	Short: "Check signing certificate status and update the status report",
	Long: `p12status submits each certificate bundle listed in the status report
to the verification service, reads back its status and validity window, and
rewrites the report's Status, Valid From and Valid To cells.

Run without arguments to check every listed certificate.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if reportPath != "" {
			loaded.Report.Path = reportPath
		}
		if bundlesRoot != "" {
			loaded.Bundles.Root = bundlesRoot
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		cfg = loaded

		logger, err = logging.New(logging.Options{
			Level:   cfg.Logging.Level,
			Format:  cfg.Logging.Format,
			Verbose: verbose,
		})
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runCheck,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file")
	rootCmd.PersistentFlags().StringVarP(&reportPath, "report", "r", "", "Status report (default: README.md)")
	rootCmd.PersistentFlags().StringVarP(&bundlesRoot, "bundles", "b", "", "Directory holding one folder per certificate (default: current)")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(showCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
