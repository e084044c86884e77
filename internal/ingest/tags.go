package ingest

import (
	"io"
	"strconv"

	"tropestats/internal/tags"
)

// Tag source columns.
const (
	ColTagID          = "id"
	ColTagType        = "type"
	ColTagName        = "name"
	ColTagCanonical   = "canonical"
	ColTagCachedCount = "cached_count"
	ColTagMergerID    = "merger_id"
)

// TagReader streams tag dictionary rows.
type TagReader struct {
	t *table
}

// NewTagReader reads the header and prepares to stream rows. source names the
// input in error messages.
func NewTagReader(source string, r io.Reader) (*TagReader, error) {
	t, err := newTable(source, r, ColTagID, ColTagName, ColTagMergerID)
	if err != nil {
		return nil, err
	}
	return &TagReader{t: t}, nil
}

// Next returns the next record, or io.EOF.
func (r *TagReader) Next() (tags.TagRecord, error) {
	if err := r.t.next(); err != nil {
		return tags.TagRecord{}, err
	}

	id, err := strconv.ParseInt(r.t.field(ColTagID), 10, 64)
	if err != nil {
		return tags.TagRecord{}, r.t.rowErr(ColTagID, err)
	}

	rec := tags.TagRecord{
		ID:   id,
		Type: r.t.field(ColTagType),
		Name: r.t.field(ColTagName),
	}

	if raw := r.t.field(ColTagCanonical); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return tags.TagRecord{}, r.t.rowErr(ColTagCanonical, err)
		}
		rec.Canonical = b
	}
	if raw := r.t.field(ColTagCachedCount); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return tags.TagRecord{}, r.t.rowErr(ColTagCachedCount, err)
		}
		rec.CachedCount = n
	}
	if raw := r.t.field(ColTagMergerID); raw != "" {
		target, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return tags.TagRecord{}, r.t.rowErr(ColTagMergerID, err)
		}
		rec.MergerID = &target
	}
	return rec, nil
}

// Line returns the source line of the last record returned.
func (r *TagReader) Line() int {
	return r.t.line
}

// BuildIndex drains r into a canonical index. onRow, when set, is called
// after every consumed row with the running count; a non-nil error from it
// stops the pass and is returned as is.
func BuildIndex(r *TagReader, onRow func(n int64) error) (*tags.Index, error) {
	b := tags.NewBuilder()
	var n int64
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		b.Add(rec)
		n++
		if onRow != nil {
			if err := onRow(n); err != nil {
				return nil, err
			}
		}
	}
	return b.Build(), nil
}
