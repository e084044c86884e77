package aggregate

import (
	"tropestats/internal/classify"
	"tropestats/internal/types"
)

// Aggregator is the mutable state of one aggregation pass.
type Aggregator struct {
	categories []classify.Category
	byKey      map[string]*CategoryState
	totals     DateCounters
	meta       GlobalMeta
	frozen     bool
}

// New creates an empty aggregator for the given categories.
func New(categories []classify.Category) *Aggregator {
	a := &Aggregator{
		categories: categories,
		byKey:      make(map[string]*CategoryState, len(categories)),
		totals:     make(DateCounters),
	}
	for _, c := range categories {
		a.byKey[c.Key] = &CategoryState{
			Category: c,
			Totals:   make(DateCounters),
			Tags:     make(map[string]*TagGroupState),
		}
	}
	return a
}

// Add counts one work created on date. Every structure it touches is
// incremented at most once: the global totals, the trope bucket and the
// identity-group bucket.
func (a *Aggregator) Add(date types.Date, c classify.Classification) {
	if a.frozen {
		panic("aggregate: Add called after Freeze")
	}

	a.totals.Add(date, c.Label)
	a.meta.SumCount++
	if a.meta.FirstDate == "" || date < a.meta.FirstDate {
		a.meta.FirstDate = date
	}
	if a.meta.LastDate == "" || date > a.meta.LastDate {
		a.meta.LastDate = date
	}

	if c.Trope != nil {
		a.addBucket(date, *c.Trope, c.Label)
	}
	if c.IdentityGroup != nil {
		a.addBucket(date, *c.IdentityGroup, c.Label)
	}
}

func (a *Aggregator) addBucket(date types.Date, m classify.Match, label classify.Label) {
	cat, ok := a.byKey[m.Category.Key]
	if !ok {
		// Category not configured for this run.
		return
	}
	cat.Totals.Add(date, label)

	bucket, ok := cat.Tags[m.Keyword]
	if !ok {
		bucket = newTagGroupState(m.Keyword)
		cat.Tags[m.Keyword] = bucket
	}
	counter := bucket.Counters.Add(date, label)

	bucket.Summary.TotalCount++
	bucket.Summary.extend(date)
	if counter.Count > bucket.Summary.MaxCount {
		bucket.Summary.MaxCount = counter.Count
		if bucket.Summary.MaxCount > a.meta.MaxCount {
			a.meta.MaxCount = bucket.Summary.MaxCount
		}
	}
}

// Works returns the number of works counted so far.
func (a *Aggregator) Works() int64 {
	return a.meta.SumCount
}

// Freeze finishes the pass: it computes every bucket's minimum per-date count
// and the global minimum, and returns the read-only result. Add must not be
// called afterwards.
func (a *Aggregator) Freeze() *Result {
	a.frozen = true

	haveMin := false
	for _, cat := range a.byKey {
		for _, bucket := range cat.Tags {
			first := true
			for _, c := range bucket.Counters {
				if first || c.Count < bucket.Summary.MinCount {
					bucket.Summary.MinCount = c.Count
					first = false
				}
			}
			if !haveMin || bucket.Summary.MinCount < a.meta.MinCount {
				a.meta.MinCount = bucket.Summary.MinCount
				haveMin = true
			}
		}
	}

	res := &Result{
		Meta:   a.meta,
		Totals: a.totals,
	}
	for _, c := range a.categories {
		res.Categories = append(res.Categories, a.byKey[c.Key])
	}
	return res
}

// Result is the frozen outcome of an aggregation pass.
type Result struct {
	Meta       GlobalMeta
	Totals     DateCounters
	Categories []*CategoryState
}

// Category returns the state for a category key.
func (r *Result) Category(key string) (*CategoryState, bool) {
	for _, c := range r.Categories {
		if c.Category.Key == key {
			return c, true
		}
	}
	return nil, false
}

// Dates returns the global date domain in ascending order.
func (r *Result) Dates() []types.Date {
	return r.Totals.Dates()
}
