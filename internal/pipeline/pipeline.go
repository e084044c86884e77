// Package pipeline runs one full aggregation: it loads the tag dictionary,
// streams the works extract through classification and aggregation, derives
// the secondary series and commits every output file together.
//
// A run is single-threaded and all-or-nothing. Any error, including context
// cancellation between rows, aborts the output batch so no final file is
// written.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tropestats/internal/aggregate"
	"tropestats/internal/classify"
	"tropestats/internal/config"
	"tropestats/internal/derive"
	"tropestats/internal/ingest"
	"tropestats/internal/logging"
	"tropestats/internal/output"
	"tropestats/internal/progress"
	"tropestats/internal/tags"
	"tropestats/internal/types"
)

// Deps are the collaborators of a run.
type Deps struct {
	Logger   *zap.Logger
	Progress progress.Reporter
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Progress == nil {
		d.Progress = progress.Nop{}
	}
	return d
}

// Phase is the wall time of one stage.
type Phase struct {
	Name    string
	Elapsed time.Duration
}

// TagReport describes the loaded tag dictionary.
type TagReport struct {
	Tags     int
	Aliases  int
	Dropped  int64
	Consumed int64
	Types    []tags.TypeCount
	Issues   []tags.ChainIssue
}

// Report summarizes a finished run.
type Report struct {
	RunID     string
	Tags      TagReport
	Works     int64
	Unmatched int64
	Meta      aggregate.GlobalMeta
	Files     []string
	Durations []Phase
}

// Phase names.
const (
	PhaseTags   = "tags"
	PhaseCount  = "count"
	PhaseWorks  = "works"
	PhaseDerive = "derive"
	PhaseOutput = "output"
)

// Run executes the whole pipeline described by cfg.
func Run(ctx context.Context, cfg *config.Config, deps Deps) (*Report, error) {
	deps = deps.withDefaults()
	report := &Report{RunID: uuid.NewString()}
	logger := deps.Logger.With(zap.String("run_id", report.RunID))
	logging.For(logger, logging.CategoryBoot).Info("run started",
		zap.String("tags", cfg.Input.Tags),
		zap.String("works", cfg.Input.Works),
		zap.String("out", cfg.Output.Dir))

	timed := func(name string, category logging.Category) func() {
		t := logging.Timed(logging.For(logger, category), name)
		return func() {
			report.Durations = append(report.Durations, Phase{Name: name, Elapsed: t.Stop()})
		}
	}

	// Tag dictionary.
	stop := timed(PhaseTags, logging.CategoryTags)
	idx, tr, err := loadTags(ctx, cfg.Input.Tags, deps.Progress)
	stop()
	if err != nil {
		return nil, err
	}
	report.Tags = tr
	if err := checkAliases(logging.For(logger, logging.CategoryTags), cfg, tr); err != nil {
		return nil, err
	}

	// Optional row count, only to give the progress bar a target.
	var total int64
	if cfg.Progress.Enabled && cfg.Progress.CountRows {
		stop = timed(PhaseCount, logging.CategoryWorks)
		total, err = ingest.CountRows(cfg.Input.Works)
		stop()
		if err != nil {
			return nil, err
		}
	}

	// Works scan.
	stop = timed(PhaseWorks, logging.CategoryWorks)
	agg := aggregate.New(classify.Categories())
	unmatched, err := scanWorks(ctx, cfg.Input.Works, total, idx, agg, deps.Progress)
	stop()
	if err != nil {
		return nil, err
	}
	res := agg.Freeze()
	report.Works = res.Meta.SumCount
	report.Unmatched = unmatched
	report.Meta = res.Meta
	logging.For(logger, logging.CategoryWorks).Info("works aggregated",
		zap.Int64("works", report.Works),
		zap.Int64("unmatched", unmatched),
		zap.Int("dates", len(res.Dates())))

	stop = timed(PhaseDerive, logging.CategoryDerive)
	derived := derive.Derive(res)
	stop()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stop = timed(PhaseOutput, logging.CategoryOutput)
	files, err := writeOutputs(cfg, res, derived, deps.Progress)
	stop()
	if err != nil {
		return nil, err
	}
	report.Files = files
	for _, f := range files {
		logging.For(logger, logging.CategoryOutput).Debug("file written", zap.String("path", f))
	}

	logger.Info("run finished", zap.Int64("works", report.Works), zap.Int("files", len(files)))
	return report, nil
}

// InspectTags loads the tag dictionary alone and reports on it, including
// alias table issues.
func InspectTags(ctx context.Context, cfg *config.Config, deps Deps) (*TagReport, error) {
	deps = deps.withDefaults()
	_, tr, err := loadTags(ctx, cfg.Input.Tags, deps.Progress)
	if err != nil {
		return nil, err
	}
	for _, issue := range tr.Issues {
		logging.For(deps.Logger, logging.CategoryTags).Debug("alias issue", zap.Stringer("issue", issue))
	}
	return &tr, nil
}

func loadTags(ctx context.Context, path string, rep progress.Reporter) (*tags.Index, TagReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, TagReport{}, fmt.Errorf("%w: opening tags: %v", types.ErrIOFailure, err)
	}
	defer f.Close()

	r, err := ingest.NewTagReader(path, f)
	if err != nil {
		return nil, TagReport{}, err
	}

	rep.Start("tags", 0)
	idx, err := ingest.BuildIndex(r, func(n int64) error {
		rep.Update(n, "")
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("tags load stopped at line %d: %w", r.Line(), err)
		}
		return nil
	})
	rep.Finish()
	if err != nil {
		return nil, TagReport{}, err
	}

	return idx, TagReport{
		Tags:     idx.Len(),
		Aliases:  idx.Aliases(),
		Dropped:  idx.Dropped(),
		Consumed: idx.Consumed(),
		Types:    idx.TagTypes(),
		Issues:   idx.Validate(),
	}, nil
}

func checkAliases(logger *zap.Logger, cfg *config.Config, tr TagReport) error {
	logger.Info("tag dictionary loaded",
		zap.Int("tags", tr.Tags),
		zap.Int("aliases", tr.Aliases),
		zap.Int64("dropped", tr.Dropped),
		zap.Stringers("types", tr.Types))
	if len(tr.Issues) == 0 {
		return nil
	}
	for _, issue := range tr.Issues {
		logger.Warn("alias not resolvable in one hop", zap.Stringer("issue", issue))
	}
	if cfg.Aliases.FailOnIssues {
		return fmt.Errorf("%w: %d alias table issues (first: %s)", types.ErrMalformedInput, len(tr.Issues), tr.Issues[0])
	}
	return nil
}

// scanWorks streams the works file into agg and returns how many works
// matched no category.
func scanWorks(ctx context.Context, path string, total int64, idx *tags.Index, agg *aggregate.Aggregator, rep progress.Reporter) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: opening works: %v", types.ErrIOFailure, err)
	}
	defer f.Close()

	r, err := ingest.NewWorkReader(path, f)
	if err != nil {
		return 0, err
	}

	rep.Start("works", total)
	defer rep.Finish()

	var n, unmatched int64
	for {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("works scan stopped at line %d: %w", r.Line(), err)
		}
		w, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}

		c := classify.Classify(idx, w.TagIDs)
		if c.Trope == nil && c.IdentityGroup == nil {
			unmatched++
		}
		agg.Add(w.CreationDate, c)

		n++
		rep.Update(n, "")
	}
	return unmatched, nil
}

func writeOutputs(cfg *config.Config, res *aggregate.Result, d *derive.Derived, rep progress.Reporter) ([]string, error) {
	b, err := output.NewBatch(cfg.Output.Dir)
	if err != nil {
		return nil, err
	}

	names := output.DefaultNames()
	if cfg.Output.Document != "" {
		names.Document = cfg.Output.Document
	}
	if cfg.Output.TotalsCSV != "" {
		names.Totals = cfg.Output.TotalsCSV
	}

	rep.Start("output", output.StepCount(res))
	var steps int64
	err = output.WriteAll(b, names, res, d, func(label string) {
		steps++
		rep.Update(steps, label)
	})
	rep.Finish()
	if err != nil {
		b.Abort()
		return nil, err
	}
	return b.Commit()
}
