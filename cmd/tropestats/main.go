package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tropestats/internal/config"
	"tropestats/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Loaded in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tropestats",
	Short: "Aggregate fan-fiction trope and identity tag statistics over time",
	Long: `tropestats reads a tag dictionary and a works extract (both CSV), counts
every work at most once per category per creation date, and writes a nested
JSON document for charting plus flat CSV files per category.

Typical use:
  tropestats run --tags tags.csv --works works.csv --out out/
  tropestats summary out/works.json`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Logging, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "tropestats.yaml", "Config file (missing file means defaults)")

	runCmd.Flags().StringVar(&tagsPath, "tags", "", "Tag dictionary CSV (overrides input.tags)")
	runCmd.Flags().StringVar(&worksPath, "works", "", "Works CSV (overrides input.works)")
	runCmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (overrides output.dir)")
	runCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")

	validateCmd.Flags().StringVar(&tagsPath, "tags", "", "Tag dictionary CSV (overrides input.tags)")
	validateCmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when alias issues are found")

	summaryCmd.Flags().BoolVar(&rawMarkdown, "raw", false, "Print markdown without terminal rendering")

	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
