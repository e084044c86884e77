// Package derive computes the secondary series of a frozen aggregation:
// ratios to the global daily total and the cumulative growth curve. Nothing
// here mutates the aggregate.
package derive

import (
	"fmt"

	"tropestats/internal/aggregate"
	"tropestats/internal/types"
)

// Point is one date/value pair of a derived series.
type Point struct {
	Date  types.Date
	Value float64
}

// Relative returns series(date).Count / totals(date).Count for every date of
// the global domain, ascending. Dates missing from series count as zero and a
// zero global count yields 0.
func Relative(series, totals aggregate.DateCounters) []Point {
	dates := totals.Dates()
	out := make([]Point, 0, len(dates))
	for _, d := range dates {
		total := totals.Get(d).Count
		var v float64
		if total > 0 {
			v = float64(series.Get(d).Count) / float64(total)
		}
		out = append(out, Point{Date: d, Value: v})
	}
	return out
}

// Growth returns the running sum of global daily counts divided by sumCount,
// in chronological order. The curve is non-decreasing and ends at 1 when
// sumCount equals the sum of totals.
func Growth(totals aggregate.DateCounters, sumCount int64) []Point {
	dates := totals.Dates()
	out := make([]Point, 0, len(dates))
	var running int64
	for _, d := range dates {
		running += totals.Get(d).Count
		var v float64
		if sumCount > 0 {
			v = float64(running) / float64(sumCount)
		}
		out = append(out, Point{Date: d, Value: v})
	}
	return out
}

// Derived holds every derived series for one result.
type Derived struct {
	Growth     []Point
	categories map[string]*CategorySeries
}

// CategorySeries holds the relative series of one category.
type CategorySeries struct {
	// Combined is the category's combined totals relative to the global total.
	Combined []Point
	// Tags is keyed by every configured keyword of the category, matched or not.
	Tags map[string][]Point
}

// Derive computes growth and every relative series of res.
func Derive(res *aggregate.Result) *Derived {
	d := &Derived{
		Growth:     Growth(res.Totals, res.Meta.SumCount),
		categories: make(map[string]*CategorySeries, len(res.Categories)),
	}
	for _, cat := range res.Categories {
		cs := &CategorySeries{
			Combined: Relative(cat.Totals, res.Totals),
			Tags:     make(map[string][]Point, len(cat.Category.Keywords)),
		}
		for _, kw := range cat.Category.Keywords {
			var counters aggregate.DateCounters
			if bucket, ok := cat.Tags[kw]; ok {
				counters = bucket.Counters
			}
			cs.Tags[kw] = Relative(counters, res.Totals)
		}
		d.categories[cat.Category.Key] = cs
	}
	return d
}

// CategoryRelative returns the combined relative series of a category.
func (d *Derived) CategoryRelative(key string) ([]Point, error) {
	cs, ok := d.categories[key]
	if !ok {
		return nil, fmt.Errorf("%w: no relative series for category %q", types.ErrUnsupportedCombination, key)
	}
	return cs.Combined, nil
}

// TagRelative returns the relative series of one keyword bucket. Asking for a
// keyword that is not configured for the category is a caller error.
func (d *Derived) TagRelative(key, keyword string) ([]Point, error) {
	cs, ok := d.categories[key]
	if !ok {
		return nil, fmt.Errorf("%w: no relative series for category %q", types.ErrUnsupportedCombination, key)
	}
	series, ok := cs.Tags[keyword]
	if !ok {
		return nil, fmt.Errorf("%w: keyword %q is not part of category %q", types.ErrUnsupportedCombination, keyword, key)
	}
	return series, nil
}
