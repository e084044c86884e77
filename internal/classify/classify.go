package classify

import (
	"tropestats/internal/tags"
)

// Label is the single identity classification of a work.
type Label string

const (
	LabelAroace     Label = "aroace"
	LabelPolysexual Label = "polysexual"
	LabelGay        Label = "gay"
	LabelStraight   Label = "straight"
	LabelNone       Label = "none"
)

// Resolver resolves a tag id to its canonical lowercased name.
type Resolver interface {
	Resolve(id int64) (string, bool)
}

var _ Resolver = (*tags.Index)(nil)

// Match is one bucket selection: a category and the keyword that hit.
type Match struct {
	Category Category
	Keyword  string
}

// Classification is everything the aggregator needs to know about a work.
type Classification struct {
	Names []string
	// Trope is the selected pining or comparison bucket, nil when none.
	Trope *Match
	// Label is the work-level identity label.
	Label Label
	// IdentityGroup is the identity bucket selected by the gay-first chain,
	// nil when none. It may disagree with Label.
	IdentityGroup *Match
}

// ResolveNames maps tag ids to distinct canonical names, keeping first-seen
// order. Ids that resolve to nothing are dropped.
func ResolveNames(r Resolver, ids []int64) []string {
	names := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		name, ok := r.Resolve(id)
		if !ok || name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// TropeMatch scans names in order and, for each name, tries the pining
// keywords before the comparison keywords. The first hit selects both the
// category and the keyword bucket.
func TropeMatch(names []string) (Match, bool) {
	for _, name := range names {
		if kw, ok := Pining.MatchName(name); ok {
			return Match{Category: Pining, Keyword: kw}, true
		}
		if kw, ok := Comparison.MatchName(name); ok {
			return Match{Category: Comparison, Keyword: kw}, true
		}
	}
	return Match{}, false
}

// labelOrder is the work-level priority: aroace > polysexual > gay > straight.
var labelOrder = []struct {
	cat   Category
	label Label
}{
	{Aceness, LabelAroace},
	{Polysexyness, LabelPolysexual},
	{Gayness, LabelGay},
	{Straightness, LabelStraight},
}

// IdentityLabelFor picks the work's identity label. The first keyword set in
// priority order that any name matches wins; the rest are ignored.
func IdentityLabelFor(names []string) Label {
	for _, o := range labelOrder {
		if _, ok := o.cat.MatchAny(names); ok {
			return o.label
		}
	}
	return LabelNone
}

// groupOrder routes the identity-group increment: gayness > polysexyness >
// aceness > straightness. It differs from labelOrder, so a work labelled
// aroace can still land in the gayness group.
var groupOrder = []Category{Gayness, Polysexyness, Aceness, Straightness}

// IdentityGroupFor selects the identity bucket that receives the work's
// identity-group increment.
func IdentityGroupFor(names []string) (Match, bool) {
	for _, cat := range groupOrder {
		if kw, ok := cat.MatchAny(names); ok {
			return Match{Category: cat, Keyword: kw}, true
		}
	}
	return Match{}, false
}

// Classify resolves a work's tag ids and runs every decision over the
// resulting names.
func Classify(r Resolver, tagIDs []int64) Classification {
	names := ResolveNames(r, tagIDs)
	c := Classification{
		Names: names,
		Label: IdentityLabelFor(names),
	}
	if m, ok := TropeMatch(names); ok {
		c.Trope = &m
	}
	if m, ok := IdentityGroupFor(names); ok {
		c.IdentityGroup = &m
	}
	return c
}
