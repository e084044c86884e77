// Package classify decides, for one work, which trope bucket and which
// identity buckets its resolved tag names fall into.
//
// Matching is case-insensitive substring containment of a keyword in a
// resolved (already lowercased) tag name. The category set is fixed domain
// configuration.
package classify

import "strings"

// Category is one named keyword group.
type Category struct {
	// Key is the document and file-name key the front end reads.
	Key string
	// Name is the human-readable group name.
	Name string
	// Keywords in declaration order; the first contained keyword wins.
	Keywords []string
}

// Category keys.
const (
	KeyPining       = "piningData"
	KeyComparison   = "comparativeData"
	KeyGayness      = "gaynessData"
	KeyStraightness = "straightnessData"
	KeyPolysexyness = "polysexynessData"
	KeyAceness      = "acenessData"
)

// The fixed keyword groups.
var (
	Pining = Category{
		Key:      KeyPining,
		Name:     "pining-tropes",
		Keywords: []string{"pining", "yearning", "slow burn"},
	}
	Comparison = Category{
		Key:      KeyComparison,
		Name:     "comparison-tropes",
		Keywords: []string{"fluff", "angst", "alternate universe"},
	}
	Gayness = Category{
		Key:      KeyGayness,
		Name:     "gayness",
		Keywords: []string{"m/m", "f/f", "gay", "lesbian"},
	}
	Straightness = Category{
		Key:      KeyStraightness,
		Name:     "straightness",
		Keywords: []string{"f/m", "m/f", "straight"},
	}
	Polysexyness = Category{
		Key:      KeyPolysexyness,
		Name:     "polysexyness",
		Keywords: []string{"bisexual", "pansexual character", "polysexual"},
	}
	Aceness = Category{
		Key:      KeyAceness,
		Name:     "aceness",
		Keywords: []string{"asexual", "aromantic"},
	}
)

// Categories returns the six groups in declaration order. Output is emitted
// in this order.
func Categories() []Category {
	return []Category{Pining, Comparison, Gayness, Straightness, Polysexyness, Aceness}
}

// Lookup returns the category with the given key.
func Lookup(key string) (Category, bool) {
	for _, c := range Categories() {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

// MatchName returns the first keyword contained in name.
func (c Category) MatchName(name string) (string, bool) {
	for _, kw := range c.Keywords {
		if strings.Contains(name, kw) {
			return kw, true
		}
	}
	return "", false
}

// MatchAny returns the first keyword hit scanning names in order.
func (c Category) MatchAny(names []string) (string, bool) {
	for _, name := range names {
		if kw, ok := c.MatchName(name); ok {
			return kw, true
		}
	}
	return "", false
}
