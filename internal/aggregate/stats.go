// Package aggregate accumulates per-date work counts for the global total and
// for every category and keyword bucket.
//
// An Aggregator is the single owned mutable context for one run. It has one
// writer (the work pass), is frozen once, and is read-only afterwards.
package aggregate

import (
	"sort"

	"tropestats/internal/classify"
	"tropestats/internal/types"
)

// StatsCounter counts works and splits them by identity label.
type StatsCounter struct {
	Count      int64 `json:"count"`
	Aroace     int64 `json:"aroace"`
	Polysexual int64 `json:"polysexual"`
	Gay        int64 `json:"gay"`
	Straight   int64 `json:"straight"`
}

// Add counts one work: Count always, plus exactly the sub-field for label.
func (s *StatsCounter) Add(label classify.Label) {
	s.Count++
	switch label {
	case classify.LabelAroace:
		s.Aroace++
	case classify.LabelPolysexual:
		s.Polysexual++
	case classify.LabelGay:
		s.Gay++
	case classify.LabelStraight:
		s.Straight++
	}
}

// DateCounters is a per-date table of counters.
type DateCounters map[types.Date]*StatsCounter

// Add counts one work on date, creating a zero counter first if needed.
func (d DateCounters) Add(date types.Date, label classify.Label) *StatsCounter {
	c, ok := d[date]
	if !ok {
		c = &StatsCounter{}
		d[date] = c
	}
	c.Add(label)
	return c
}

// Get returns the counter for date, or a zero counter.
func (d DateCounters) Get(date types.Date) StatsCounter {
	if c, ok := d[date]; ok {
		return *c
	}
	return StatsCounter{}
}

// Dates returns the table's dates in ascending order.
func (d DateCounters) Dates() []types.Date {
	dates := make([]types.Date, 0, len(d))
	for date := range d {
		dates = append(dates, date)
	}
	SortDates(dates)
	return dates
}

// SortDates sorts ISO dates chronologically.
func SortDates(dates []types.Date) {
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })
}

// Summary is the envelope of one keyword bucket.
type Summary struct {
	TotalCount int64      `json:"sumCount"`
	MaxCount   int64      `json:"maxCount"`
	MinCount   int64      `json:"minCount"`
	FirstDate  types.Date `json:"start"`
	LastDate   types.Date `json:"end"`
}

func (s *Summary) extend(date types.Date) {
	if s.FirstDate == "" || date < s.FirstDate {
		s.FirstDate = date
	}
	if s.LastDate == "" || date > s.LastDate {
		s.LastDate = date
	}
}

// TagGroupState holds one keyword bucket of one category.
type TagGroupState struct {
	Keyword  string
	Counters DateCounters
	Summary  Summary
}

func newTagGroupState(keyword string) *TagGroupState {
	return &TagGroupState{Keyword: keyword, Counters: make(DateCounters)}
}

// GlobalMeta is the envelope over every bucket summary and the global totals.
type GlobalMeta struct {
	SumCount  int64      `json:"sumCount"`
	MaxCount  int64      `json:"maxCount"`
	MinCount  int64      `json:"minCount"`
	FirstDate types.Date `json:"start"`
	LastDate  types.Date `json:"end"`
}

// CategoryState holds one category: its combined per-date totals and its
// matched keyword buckets.
type CategoryState struct {
	Category classify.Category
	Totals   DateCounters
	Tags     map[string]*TagGroupState
}

// Keywords returns the matched keywords in the category's declaration order.
func (c *CategoryState) Keywords() []string {
	out := make([]string, 0, len(c.Tags))
	for _, kw := range c.Category.Keywords {
		if _, ok := c.Tags[kw]; ok {
			out = append(out, kw)
		}
	}
	return out
}
