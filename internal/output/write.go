package output

import (
	"io"

	"tropestats/internal/aggregate"
	"tropestats/internal/derive"
)

// Names configures output file names.
type Names struct {
	Document string
	Totals   string
}

// DefaultNames returns the file names the front end expects.
func DefaultNames() Names {
	return Names{Document: DocumentName, Totals: TotalsName}
}

// WriteAll stages the document, every category's flat files and the global
// totals file into b. It does not commit; the caller decides based on the
// returned error.
func WriteAll(b *Batch, names Names, res *aggregate.Result, d *derive.Derived, step Step) error {
	if step == nil {
		step = func(string) {}
	}

	if err := stage(b, names.Document, func(w io.Writer) error {
		return WriteDocument(w, res, d, step)
	}); err != nil {
		return err
	}

	for _, cat := range res.Categories {
		cat := cat
		if err := stage(b, cat.Category.Key+SeparateSuffix, func(w io.Writer) error {
			return WriteSeparate(w, cat)
		}); err != nil {
			return err
		}
		if err := stage(b, cat.Category.Key+CombinedSuffix, func(w io.Writer) error {
			return WriteCombined(w, cat.Category.Key+CombinedSuffix, cat.Totals)
		}); err != nil {
			return err
		}
		step(cat.Category.Key + " csv")
	}

	if err := stage(b, names.Totals, func(w io.Writer) error {
		return WriteCombined(w, names.Totals, res.Totals)
	}); err != nil {
		return err
	}
	step("totals csv")
	return nil
}

func stage(b *Batch, name string, write func(w io.Writer) error) error {
	f, err := b.Create(name)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		return err
	}
	return b.Finish(f)
}

// StepCount returns how many times WriteAll reports a step for res, for
// progress targets.
func StepCount(res *aggregate.Result) int64 {
	n := int64(2) // totals, totals csv
	for _, cat := range res.Categories {
		n += int64(len(cat.Tags)) + 2
	}
	return n
}
