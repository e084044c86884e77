package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tropestats/internal/pipeline"
	"tropestats/internal/progress"
)

var strict bool

// errAliasIssues is returned by validate --strict when issues were found.
var errAliasIssues = errors.New("alias table has issues")

// validateCmd checks the tag dictionary without scanning works
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the tag dictionary and its alias table",
	Long: `Loads the tag dictionary and reports tag type counts and every alias that
does not resolve in one hop: aliases pointing at another alias (alias_chain)
and aliases pointing at an unknown or dropped tag (dangling_alias).

Works tagged only through such aliases are counted without that tag.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	if tagsPath != "" {
		cfg.Input.Tags = tagsPath
	}
	if cfg.Input.Tags == "" {
		return errors.New("no tag dictionary configured (use --tags or input.tags)")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	tr, err := pipeline.InspectTags(ctx, cfg, pipeline.Deps{Logger: logger, Progress: progress.Nop{}})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headingStyle.Render("Tag dictionary "+cfg.Input.Tags))
	fmt.Fprintf(out, "  rows:     %d\n", tr.Consumed)
	fmt.Fprintf(out, "  names:    %d\n", tr.Tags)
	fmt.Fprintf(out, "  aliases:  %d\n", tr.Aliases)
	fmt.Fprintf(out, "  dropped:  %d\n", tr.Dropped)
	for _, tc := range tr.Types {
		fmt.Fprintln(out, mutedStyle.Render("  "+tc.String()))
	}

	if len(tr.Issues) == 0 {
		fmt.Fprintln(out, "  no alias issues")
		return nil
	}
	fmt.Fprintf(out, "  %d alias issues:\n", len(tr.Issues))
	for _, issue := range tr.Issues {
		fmt.Fprintf(out, "    %s\n", issue)
	}
	if strict {
		return fmt.Errorf("%w: %d found", errAliasIssues, len(tr.Issues))
	}
	return nil
}
