package ingest

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"tropestats/internal/types"
)

// Work source columns.
const (
	ColWorkCreated    = "creation date"
	ColWorkLanguage   = "language"
	ColWorkRestricted = "restricted"
	ColWorkComplete   = "complete"
	ColWorkWordCount  = "word_count"
	ColWorkTags       = "tags"
)

// TagSeparator joins tag ids in the tags column.
const TagSeparator = "+"

// WorkRecord is one row of the work extract. Only CreationDate and TagIDs
// feed the aggregation.
type WorkRecord struct {
	CreationDate types.Date
	Language     string
	Restricted   bool
	Complete     bool
	WordCount    int64
	TagIDs       []int64
}

// WorkReader streams work rows.
type WorkReader struct {
	t *table
}

// NewWorkReader reads the header and prepares to stream rows.
func NewWorkReader(source string, r io.Reader) (*WorkReader, error) {
	t, err := newTable(source, r, ColWorkCreated, ColWorkTags)
	if err != nil {
		return nil, err
	}
	return &WorkReader{t: t}, nil
}

// Next returns the next work, or io.EOF.
func (r *WorkReader) Next() (WorkRecord, error) {
	if err := r.t.next(); err != nil {
		return WorkRecord{}, err
	}

	date, err := types.ParseDate(r.t.field(ColWorkCreated))
	if err != nil {
		return WorkRecord{}, r.t.rowErr(ColWorkCreated, err)
	}

	w := WorkRecord{
		CreationDate: date,
		Language:     r.t.field(ColWorkLanguage),
	}

	if w.Restricted, err = parseFlag(r.t.field(ColWorkRestricted)); err != nil {
		return WorkRecord{}, r.t.rowErr(ColWorkRestricted, err)
	}
	if w.Complete, err = parseFlag(r.t.field(ColWorkComplete)); err != nil {
		return WorkRecord{}, r.t.rowErr(ColWorkComplete, err)
	}
	if raw := r.t.field(ColWorkWordCount); raw != "" {
		n, err := parseCount(raw)
		if err != nil {
			return WorkRecord{}, r.t.rowErr(ColWorkWordCount, err)
		}
		w.WordCount = n
	}

	if w.TagIDs, err = ParseTagIDs(r.t.field(ColWorkTags)); err != nil {
		return WorkRecord{}, r.t.rowErr(ColWorkTags, err)
	}
	return w, nil
}

// Line returns the source line of the last record returned.
func (r *WorkReader) Line() int {
	return r.t.line
}

// ParseTagIDs splits a "+"-joined id list. An empty column is an empty list;
// an empty element inside a non-empty list is malformed.
func ParseTagIDs(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, TagSeparator)
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseFlag(raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	return strconv.ParseBool(raw)
}

// parseCount accepts plain integers and the float rendering ("1234.0") some
// extract tools emit for integer columns.
func parseCount(raw string) (int64, error) {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int64(f)) {
		return 0, errors.New("not a whole number")
	}
	return int64(f), nil
}
