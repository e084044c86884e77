// Package tags builds the canonical tag index from the archive's tag dictionary.
//
// The dictionary holds canonical tags and aliases. An alias carries a merger id
// pointing at the tag it was merged into. The index resolves aliases exactly one
// hop: a merger target that is itself an alias is not followed. Validate reports
// those chains so they can be detected instead of being silently mis-counted.
package tags

import (
	"sort"
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RedactedName marks curation placeholders in the dictionary. A redacted tag
// that is not an alias carries no real name and is dropped.
const RedactedName = "Redacted"

// TagRecord is one row of the tag dictionary.
type TagRecord struct {
	ID          int64
	Type        string
	Name        string
	Canonical   bool
	CachedCount int64
	// MergerID is the alias target; nil for canonical records.
	MergerID *int64
}

// IsAlias reports whether the record was merged into another tag.
func (r TagRecord) IsAlias() bool {
	return r.MergerID != nil
}

// Builder accumulates tag records into an Index.
type Builder struct {
	aliases  map[int64]int64
	names    map[int64]string
	types    map[string]int64
	dropped  int64
	lowerer  cases.Caser
	consumed int64
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		aliases: make(map[int64]int64),
		names:   make(map[int64]string),
		types:   make(map[string]int64),
		lowerer: cases.Lower(language.Und),
	}
}

// Add registers one record. It reports false when the record was dropped.
func (b *Builder) Add(r TagRecord) bool {
	b.consumed++
	if r.Type != "" {
		b.types[r.Type]++
	}

	if r.IsAlias() {
		b.aliases[r.ID] = *r.MergerID
		return true
	}
	if r.Name == RedactedName {
		b.dropped++
		return false
	}
	b.names[r.ID] = b.lowerer.String(r.Name)
	return true
}

// Build freezes the builder into a read-only Index. The builder must not be
// used afterwards.
func (b *Builder) Build() *Index {
	idx := &Index{
		aliases:  b.aliases,
		names:    b.names,
		types:    b.types,
		dropped:  b.dropped,
		consumed: b.consumed,
	}
	b.aliases, b.names, b.types = nil, nil, nil
	return idx
}

// Index maps alias ids to their canonical target and canonical ids to their
// lowercased display name. It is safe for concurrent reads.
type Index struct {
	aliases  map[int64]int64
	names    map[int64]string
	types    map[string]int64
	dropped  int64
	consumed int64
}

// CanonicalFor returns the id whose name should be used for id: the alias
// target when id is an alias, otherwise id itself.
func (x *Index) CanonicalFor(id int64) int64 {
	if target, ok := x.aliases[id]; ok {
		return target
	}
	return id
}

// Name returns the lowercased display name registered for a canonical id.
func (x *Index) Name(id int64) (string, bool) {
	name, ok := x.names[id]
	return name, ok
}

// Resolve maps a tag id to its canonical lowercased name, following at most
// one alias hop. Unregistered ids and ids pointing at dropped records resolve
// to nothing.
func (x *Index) Resolve(id int64) (string, bool) {
	return x.Name(x.CanonicalFor(id))
}

// Len returns the number of canonical names.
func (x *Index) Len() int {
	return len(x.names)
}

// Aliases returns the number of alias mappings.
func (x *Index) Aliases() int {
	return len(x.aliases)
}

// Dropped returns the number of redacted records that were discarded.
func (x *Index) Dropped() int64 {
	return x.dropped
}

// Consumed returns the number of records fed to the builder.
func (x *Index) Consumed() int64 {
	return x.consumed
}

// TagTypes returns the distinct tag types seen, sorted, with their counts.
func (x *Index) TagTypes() []TypeCount {
	out := make([]TypeCount, 0, len(x.types))
	for name, n := range x.types {
		out = append(out, TypeCount{Type: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// TypeCount is the number of dictionary rows of one tag type.
type TypeCount struct {
	Type  string
	Count int64
}

// String renders the count as "type=n".
func (t TypeCount) String() string {
	return t.Type + "=" + strconv.FormatInt(t.Count, 10)
}
