package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"tropestats/internal/aggregate"
	"tropestats/internal/types"
)

// Flat file names and headers.
const (
	SeparateSuffix = "_separate.csv"
	CombinedSuffix = "_combined.csv"
	TotalsName     = "total_count.csv"
)

var (
	separateHeader = []string{"date", "tag", "count", "count_gay", "count_straight", "count_aroace", "count_polysexual"}
	combinedHeader = []string{"date", "count", "count_gay", "count_straight", "count_aroace", "count_polysexual"}
)

// WriteSeparate writes one row per (keyword, date) of a category, keywords in
// declaration order and dates ascending.
func WriteSeparate(w io.Writer, cat *aggregate.CategoryState) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(separateHeader); err != nil {
		return ioErr("writing "+cat.Category.Key+SeparateSuffix, err)
	}
	row := make([]string, len(separateHeader))
	for _, kw := range cat.Keywords() {
		counters := cat.Tags[kw].Counters
		for _, date := range counters.Dates() {
			row[0] = string(date)
			row[1] = kw
			fillCounts(row[2:], counters[date])
			if err := cw.Write(row); err != nil {
				return ioErr("writing "+cat.Category.Key+SeparateSuffix, err)
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return ioErr("writing "+cat.Category.Key+SeparateSuffix, err)
	}
	return nil
}

// WriteCombined writes one row per date of a counter table. It serves both
// the per-category combined file and the global totals file.
func WriteCombined(w io.Writer, name string, counters aggregate.DateCounters) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(combinedHeader); err != nil {
		return ioErr("writing "+name, err)
	}
	row := make([]string, len(combinedHeader))
	for _, date := range counters.Dates() {
		row[0] = string(date)
		fillCounts(row[1:], counters[date])
		if err := cw.Write(row); err != nil {
			return ioErr("writing "+name, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return ioErr("writing "+name, err)
	}
	return nil
}

// fillCounts writes count, gay, straight, aroace, polysexual.
func fillCounts(dst []string, c *aggregate.StatsCounter) {
	dst[0] = strconv.FormatInt(c.Count, 10)
	dst[1] = strconv.FormatInt(c.Gay, 10)
	dst[2] = strconv.FormatInt(c.Straight, 10)
	dst[3] = strconv.FormatInt(c.Aroace, 10)
	dst[4] = strconv.FormatInt(c.Polysexual, 10)
}

func ioErr(what string, err error) error {
	return fmt.Errorf("%w: %s: %v", types.ErrIOFailure, what, err)
}
