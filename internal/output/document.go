package output

import (
	"io"

	"tropestats/internal/aggregate"
	"tropestats/internal/derive"
)

// Document keys read by the front end.
const (
	KeyMeta             = "_meta"
	KeyTotals           = "_totals"
	KeyTotalGrowth      = "_totalGrowth"
	KeySummed           = "_summed"
	KeyRelativeToTotal  = "_relativeToTotal"
	KeyTagDates         = "dates"
	KeyTagDatesRelative = "datesRelative"
)

// DocumentName is the default file name of the structured document.
const DocumentName = "works.json"

// Step is reported after each unit of serialization work.
type Step func(label string)

// WriteDocument streams the nested aggregate document to w. Categories are
// written in result order and keywords in category declaration order.
func WriteDocument(w io.Writer, res *aggregate.Result, d *derive.Derived, step Step) error {
	s := NewJSONStream(w, true)
	if step == nil {
		step = func(string) {}
	}

	s.BeginObject()
	s.Field(KeyMeta, res.Meta)

	dates := res.Dates()
	s.BeginArrayField(KeyTotals)
	for _, date := range dates {
		s.Element([2]any{date, res.Totals.Get(date).Count})
	}
	s.EndArray()

	writePoints(s, KeyTotalGrowth, d.Growth)
	if err := s.Err(); err != nil {
		return ioErr("writing document header", err)
	}
	step("totals")

	for _, cat := range res.Categories {
		combined, err := d.CategoryRelative(cat.Category.Key)
		if err != nil {
			return err
		}

		s.BeginObjectField(cat.Category.Key)
		writeCounters(s, KeySummed, cat.Totals)
		writePoints(s, KeyRelativeToTotal, combined)

		for _, kw := range cat.Keywords() {
			rel, err := d.TagRelative(cat.Category.Key, kw)
			if err != nil {
				return err
			}
			bucket := cat.Tags[kw]

			s.BeginObjectField(kw)
			s.Field(KeyMeta, bucket.Summary)
			writeCounters(s, KeyTagDates, bucket.Counters)
			writePoints(s, KeyTagDatesRelative, rel)
			s.EndObject()
			if err := s.Err(); err != nil {
				return ioErr("writing document", err)
			}
			step(cat.Category.Key + "/" + kw)
		}

		s.EndObject()
		if err := s.Err(); err != nil {
			return ioErr("writing document", err)
		}
		step(cat.Category.Key)
	}

	s.EndObject()
	if err := s.Close(); err != nil {
		return ioErr("finishing document", err)
	}
	return nil
}

func writeCounters(s *JSONStream, key string, counters aggregate.DateCounters) {
	s.BeginArrayField(key)
	for _, date := range counters.Dates() {
		s.Element([2]any{date, counters[date]})
	}
	s.EndArray()
}

func writePoints(s *JSONStream, key string, points []derive.Point) {
	s.BeginArrayField(key)
	for _, p := range points {
		s.Element([2]any{p.Date, p.Value})
	}
	s.EndArray()
}
