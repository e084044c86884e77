// Package ingest streams the archive's tag and work extracts row by row.
//
// Both sources are column-headered CSV. Rows are decoded one at a time so
// memory stays bounded regardless of file size. Any row that cannot be
// decoded is a fatal ErrMalformedInput: skipping it would silently corrupt
// the aggregate totals.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"tropestats/internal/types"
)

// RowError locates a malformed row.
type RowError struct {
	Source string
	Line   int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s:%d: column %q: %v", e.Source, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("%s:%d: %v", e.Source, e.Line, e.Err)
}

// Unwrap exposes the underlying error.
func (e *RowError) Unwrap() error {
	return e.Err
}

// Is makes every RowError match ErrMalformedInput.
func (e *RowError) Is(target error) bool {
	return target == types.ErrMalformedInput
}

// table is a header-aware streaming CSV reader.
type table struct {
	source  string
	r       *csv.Reader
	columns map[string]int
	record  []string
	line    int
}

func newTable(source string, r io.Reader, required ...string) (*table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &RowError{Source: source, Line: 1, Err: errors.New("missing header row")}
		}
		return nil, wrapReadErr(source, 1, err)
	}

	t := &table{source: source, r: cr, columns: make(map[string]int, len(header))}
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		t.columns[name] = i
	}
	for _, name := range required {
		if _, ok := t.columns[name]; !ok {
			return nil, &RowError{Source: source, Line: 1, Column: name, Err: errors.New("missing column")}
		}
	}
	return t, nil
}

// next advances to the next non-empty row. It returns io.EOF at the end.
func (t *table) next() error {
	for {
		rec, err := t.r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return io.EOF
			}
			return wrapReadErr(t.source, t.line+1, err)
		}
		t.line, _ = t.r.FieldPos(0)
		if isBlank(rec) {
			continue
		}
		t.record = rec
		return nil
	}
}

// field returns the trimmed value of a named column, "" when the row is short.
func (t *table) field(name string) string {
	i, ok := t.columns[name]
	if !ok || i >= len(t.record) {
		return ""
	}
	return strings.TrimSpace(t.record[i])
}

func (t *table) rowErr(column string, err error) error {
	return &RowError{Source: t.source, Line: t.line, Column: column, Err: err}
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func wrapReadErr(source string, line int, err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return &RowError{Source: source, Line: perr.Line, Err: perr.Err}
	}
	return fmt.Errorf("%w: reading %s near line %d: %v", types.ErrIOFailure, source, line, err)
}
