package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"tropestats/internal/aggregate"
	"tropestats/internal/types"
)

// DatedCount is one [date, counter] pair.
type DatedCount struct {
	Date    types.Date
	Counter aggregate.StatsCounter
}

// UnmarshalJSON decodes the two-element array form.
func (d *DatedCount) UnmarshalJSON(b []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	if err := json.Unmarshal(pair[0], &d.Date); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &d.Counter)
}

// DatedValue is one [date, number] pair.
type DatedValue struct {
	Date  types.Date
	Value float64
}

// UnmarshalJSON decodes the two-element array form.
func (d *DatedValue) UnmarshalJSON(b []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	if err := json.Unmarshal(pair[0], &d.Date); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &d.Value)
}

// Document is a decoded structured document.
type Document struct {
	Meta        aggregate.GlobalMeta
	Totals      []DatedValue
	TotalGrowth []DatedValue
	Categories  []DocCategory
}

// Category returns the decoded category with the given key.
func (d *Document) Category(key string) (*DocCategory, bool) {
	for i := range d.Categories {
		if d.Categories[i].Key == key {
			return &d.Categories[i], true
		}
	}
	return nil, false
}

// DocCategory is one decoded category object.
type DocCategory struct {
	Key             string
	Summed          []DatedCount
	RelativeToTotal []DatedValue
	Tags            []DocTag
}

// Tag returns the decoded keyword bucket with the given keyword.
func (c *DocCategory) Tag(keyword string) (*DocTag, bool) {
	for i := range c.Tags {
		if c.Tags[i].Keyword == keyword {
			return &c.Tags[i], true
		}
	}
	return nil, false
}

// DocTag is one decoded keyword bucket.
type DocTag struct {
	Keyword       string            `json:"-"`
	Meta          aggregate.Summary `json:"_meta"`
	Dates         []DatedCount      `json:"dates"`
	DatesRelative []DatedValue      `json:"datesRelative"`
}

// ReadDocument decodes a document written by WriteDocument, keeping the
// order of categories and keywords as written.
func ReadDocument(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)
	doc := &Document{}

	err := walkObject(dec, func(key string) error {
		switch key {
		case KeyMeta:
			return dec.Decode(&doc.Meta)
		case KeyTotals:
			return dec.Decode(&doc.Totals)
		case KeyTotalGrowth:
			return dec.Decode(&doc.TotalGrowth)
		default:
			cat, err := readCategory(dec, key)
			if err != nil {
				return err
			}
			doc.Categories = append(doc.Categories, cat)
			return nil
		}
	})
	if err != nil {
		return nil, fmt.Errorf("%w: decoding document: %v", types.ErrMalformedInput, err)
	}
	return doc, nil
}

func readCategory(dec *json.Decoder, key string) (DocCategory, error) {
	cat := DocCategory{Key: key}
	err := walkObject(dec, func(field string) error {
		switch field {
		case KeySummed:
			return dec.Decode(&cat.Summed)
		case KeyRelativeToTotal:
			return dec.Decode(&cat.RelativeToTotal)
		default:
			tag := DocTag{Keyword: field}
			if err := dec.Decode(&tag); err != nil {
				return err
			}
			cat.Tags = append(cat.Tags, tag)
			return nil
		}
	})
	return cat, err
}

// walkObject consumes one JSON object, calling fn for each key with the
// decoder positioned at the key's value. fn must consume the value.
func walkObject(dec *json.Decoder, fn func(key string) error) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("expected object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return errors.New("expected object key")
		}
		if err := fn(key); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	_, err = dec.Token()
	return err
}
