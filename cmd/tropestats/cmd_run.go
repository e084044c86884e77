package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tropestats/internal/pipeline"
	"tropestats/internal/progress"
)

var (
	tagsPath   string
	worksPath  string
	outDir     string
	noProgress bool
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// runCmd performs one full aggregation run
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Aggregate the works extract and write every output file",
	Long: `Loads the tag dictionary, streams the works extract, and writes the
structured document and CSV files into the output directory.

Files are staged and renamed into place only when every one of them was
written, so an interrupted or failed run leaves no partial output.`,
	Args: cobra.NoArgs,
	RunE: runAggregate,
}

func applyFlagOverrides() {
	if tagsPath != "" {
		cfg.Input.Tags = tagsPath
	}
	if worksPath != "" {
		cfg.Input.Works = worksPath
	}
	if outDir != "" {
		cfg.Output.Dir = outDir
	}
	if noProgress {
		cfg.Progress.Enabled = false
	}
}

func runAggregate(cmd *cobra.Command, args []string) error {
	applyFlagOverrides()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep := progress.ForStderr(cfg.Progress.Enabled, progress.Options{
		Width:    cfg.Progress.Width,
		Interval: cfg.GetProgressInterval(),
	})

	report, err := pipeline.Run(ctx, cfg, pipeline.Deps{Logger: logger, Progress: rep})
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn("run interrupted", zap.Error(err))
		}
		return err
	}

	printReport(cmd, report)
	return nil
}

func printReport(cmd *cobra.Command, r *pipeline.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headingStyle.Render("Run "+r.RunID))
	fmt.Fprintf(out, "  tags:   %d canonical, %d aliases, %d dropped\n", r.Tags.Tags, r.Tags.Aliases, r.Tags.Dropped)
	if len(r.Tags.Issues) > 0 {
		fmt.Fprintf(out, "  alias issues: %d (see `tropestats validate`)\n", len(r.Tags.Issues))
	}
	fmt.Fprintf(out, "  works:  %d (%d matched no category)\n", r.Works, r.Unmatched)
	if r.Works > 0 {
		fmt.Fprintf(out, "  dates:  %s .. %s\n", r.Meta.FirstDate, r.Meta.LastDate)
	}
	for _, p := range r.Durations {
		fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("  %-7s %v", p.Name, p.Elapsed.Round(time.Millisecond))))
	}
	fmt.Fprintf(out, "  wrote %d files to %s\n", len(r.Files), cfg.Output.Dir)
}
