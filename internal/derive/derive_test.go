package derive

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tropestats/internal/aggregate"
	"tropestats/internal/classify"
	"tropestats/internal/tags"
	"tropestats/internal/types"
)

func counters(m map[types.Date]int64) aggregate.DateCounters {
	out := make(aggregate.DateCounters, len(m))
	for d, n := range m {
		out[d] = &aggregate.StatsCounter{Count: n}
	}
	return out
}

func TestRelative_FillsGlobalDomain(t *testing.T) {
	totals := counters(map[types.Date]int64{"2020-01-01": 4, "2020-01-02": 2, "2020-01-03": 5})
	series := counters(map[types.Date]int64{"2020-01-02": 1})

	got := Relative(series, totals)
	want := []Point{
		{Date: "2020-01-01", Value: 0},
		{Date: "2020-01-02", Value: 0.5},
		{Date: "2020-01-03", Value: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Relative() mismatch (-want +got):\n%s", diff)
	}
}

func TestRelative_ZeroTotalIsZero(t *testing.T) {
	totals := aggregate.DateCounters{"2020-01-01": &aggregate.StatsCounter{}}
	series := counters(map[types.Date]int64{"2020-01-01": 3})

	got := Relative(series, totals)
	require.Len(t, got, 1)
	assert.Equal(t, 0.0, got[0].Value)
}

func TestRelative_NilSeries(t *testing.T) {
	totals := counters(map[types.Date]int64{"2020-01-01": 1})
	got := Relative(nil, totals)
	require.Len(t, got, 1)
	assert.Equal(t, 0.0, got[0].Value)
}

func TestGrowth_MonotonicEndsAtOne(t *testing.T) {
	totals := counters(map[types.Date]int64{
		"2021-03-01": 3,
		"2019-01-01": 1,
		"2020-06-15": 6,
	})
	got := Growth(totals, 10)
	want := []Point{
		{Date: "2019-01-01", Value: 0.1},
		{Date: "2020-06-15", Value: 0.7},
		{Date: "2021-03-01", Value: 1},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("Growth() mismatch (-want +got):\n%s", diff)
	}
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i].Value, got[i-1].Value)
	}
}

func TestGrowth_Empty(t *testing.T) {
	assert.Empty(t, Growth(aggregate.DateCounters{}, 0))
}

func buildResult(t *testing.T) *aggregate.Result {
	t.Helper()
	b := tags.NewBuilder()
	b.Add(tags.TagRecord{ID: 1, Name: "Pining"})
	b.Add(tags.TagRecord{ID: 2, Name: "Fluff"})
	b.Add(tags.TagRecord{ID: 3, Name: "F/M"})
	idx := b.Build()

	agg := aggregate.New(classify.Categories())
	add := func(date types.Date, ids ...int64) { agg.Add(date, classify.Classify(idx, ids)) }
	add("2020-01-01", 1)
	add("2020-01-01", 2)
	add("2020-01-01")
	add("2020-01-02", 1, 3)
	add("2020-01-03", 3)
	return agg.Freeze()
}

func TestDerive_RatiosInRange(t *testing.T) {
	res := buildResult(t)
	d := Derive(res)

	require.Len(t, d.Growth, 3)
	assert.InDelta(t, 1.0, d.Growth[len(d.Growth)-1].Value, 1e-9)

	domain := res.Dates()
	for _, cat := range classify.Categories() {
		combined, err := d.CategoryRelative(cat.Key)
		require.NoError(t, err)
		require.Len(t, combined, len(domain), cat.Key)

		for _, kw := range cat.Keywords {
			series, err := d.TagRelative(cat.Key, kw)
			require.NoError(t, err)
			require.Len(t, series, len(domain), "%s/%s", cat.Key, kw)
			for i, p := range series {
				assert.Equal(t, domain[i], p.Date)
				assert.GreaterOrEqual(t, p.Value, 0.0)
				assert.LessOrEqual(t, p.Value, 1.0)
			}
		}
	}

	pining, err := d.TagRelative(classify.KeyPining, "pining")
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3.0, pining[0].Value, 1e-9)
	assert.InDelta(t, 1.0, pining[1].Value, 1e-9)
	assert.InDelta(t, 0.0, pining[2].Value, 1e-9)
}

func TestDerive_UnsupportedCombination(t *testing.T) {
	d := Derive(buildResult(t))

	_, err := d.TagRelative(classify.KeyPining, "fluff")
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrUnsupportedCombination))

	_, err = d.CategoryRelative("nope")
	assert.ErrorIs(t, err, types.ErrUnsupportedCombination)
}
