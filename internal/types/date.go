// Package types holds the shared value types and failure kinds used across
// tropestats packages. It exists so ingest, aggregate and output can agree on
// dates without importing each other.
package types

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-day layout used for every date key.
const DateLayout = "2006-01-02"

// Date is a calendar date at day resolution in ISO form (YYYY-MM-DD).
// ISO dates sort chronologically under plain string comparison, which the
// derive and output passes rely on.
type Date string

// ParseDate validates and normalizes a creation date. Values carrying a time
// component ("2020-01-01T10:00:00Z", "2020-01-01 10:00:00") are truncated to
// their day.
func ParseDate(raw string) (Date, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) > len(DateLayout) {
		switch raw[len(DateLayout)] {
		case 'T', ' ':
			raw = raw[:len(DateLayout)]
		}
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return "", fmt.Errorf("%w: invalid date %q", ErrMalformedInput, raw)
	}
	return Date(t.Format(DateLayout)), nil
}
