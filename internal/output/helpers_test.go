package output

import (
	"testing"

	"tropestats/internal/aggregate"
	"tropestats/internal/classify"
	"tropestats/internal/derive"
	"tropestats/internal/tags"
	"tropestats/internal/types"
)

// sampleResult aggregates a handful of works over three dates.
func sampleResult(t *testing.T) (*aggregate.Result, *derive.Derived) {
	t.Helper()
	b := tags.NewBuilder()
	for id, name := range map[int64]string{
		1: "Mutual Pining",
		2: "Slow Burn",
		3: "M/M",
		4: "Asexual Character",
		5: "Fluff",
		6: "F/M",
	} {
		b.Add(tags.TagRecord{ID: id, Name: name})
	}
	idx := b.Build()

	agg := aggregate.New(classify.Categories())
	add := func(date string, ids ...int64) {
		agg.Add(types.Date(date), classify.Classify(idx, ids))
	}
	add("2020-01-02", 1, 3)
	add("2020-01-01", 1, 4)
	add("2020-01-01", 2, 6)
	add("2020-01-03", 5)
	add("2020-01-03")

	res := agg.Freeze()
	return res, derive.Derive(res)
}
