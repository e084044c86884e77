package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tropestats/internal/classify"
	"tropestats/internal/output"
)

var rawMarkdown bool

// summaryCmd renders a written document as a markdown report
var summaryCmd = &cobra.Command{
	Use:   "summary <document>",
	Short: "Summarize a structured document written by run",
	Long: `Reads a structured document produced by "tropestats run" and prints, per
category, each keyword's total count, busiest single day and date range.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	doc, err := output.ReadDocument(f)
	if err != nil {
		return err
	}
	md := summaryMarkdown(doc)

	if rawMarkdown {
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		logger.Debug("markdown renderer unavailable", zap.Error(err))
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	}
	rendered, err := renderer.Render(md)
	if err != nil {
		logger.Debug("markdown render failed", zap.Error(err))
		rendered = md
	}
	fmt.Fprint(cmd.OutOrStdout(), rendered)
	return nil
}

func summaryMarkdown(doc *output.Document) string {
	var sb strings.Builder
	m := doc.Meta

	sb.WriteString("# Works summary\n\n")
	fmt.Fprintf(&sb, "- **Works:** %d\n", m.SumCount)
	if m.SumCount > 0 {
		fmt.Fprintf(&sb, "- **Dates:** %s to %s (%d days with works)\n", m.FirstDate, m.LastDate, len(doc.Totals))
		fmt.Fprintf(&sb, "- **Bucket counts per day:** max %d, min %d\n", m.MaxCount, m.MinCount)
	}
	sb.WriteString("\n")

	for _, cat := range doc.Categories {
		title := cat.Key
		if c, ok := classify.Lookup(cat.Key); ok {
			title = c.Name
		}
		fmt.Fprintf(&sb, "## %s\n\n", title)

		if len(cat.Tags) == 0 {
			sb.WriteString("_No matching works._\n\n")
			continue
		}

		var total int64
		for _, d := range cat.Summed {
			total += d.Counter.Count
		}
		fmt.Fprintf(&sb, "%d works over %d days.\n\n", total, len(cat.Summed))

		sb.WriteString("| Keyword | Works | Busiest day | First | Last |\n")
		sb.WriteString("|---|---:|---:|---|---|\n")
		for _, tag := range cat.Tags {
			fmt.Fprintf(&sb, "| %s | %d | %d | %s | %s |\n",
				tag.Keyword, tag.Meta.TotalCount, tag.Meta.MaxCount, tag.Meta.FirstDate, tag.Meta.LastDate)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
