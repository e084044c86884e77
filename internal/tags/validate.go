package tags

import (
	"fmt"
	"sort"
)

// IssueKind classifies a problem found in the alias graph.
type IssueKind string

const (
	// IssueAliasChain flags an alias whose target is itself an alias. Only the
	// first hop is resolved, so works tagged with it resolve to nothing.
	IssueAliasChain IssueKind = "alias_chain"

	// IssueDanglingAlias flags an alias whose target has no registered name
	// (unknown id or a dropped redacted record).
	IssueDanglingAlias IssueKind = "dangling_alias"
)

// ChainIssue describes one alias that does not resolve cleanly.
type ChainIssue struct {
	Kind    IssueKind
	AliasID int64
	Target  int64
	// Next is the target's own merger target for IssueAliasChain.
	Next int64
}

func (c ChainIssue) String() string {
	switch c.Kind {
	case IssueAliasChain:
		return fmt.Sprintf("%s: %d -> %d -> %d", c.Kind, c.AliasID, c.Target, c.Next)
	default:
		return fmt.Sprintf("%s: %d -> %d", c.Kind, c.AliasID, c.Target)
	}
}

// Validate reports aliases that do not resolve to a canonical name in one
// hop. It never modifies the index.
func (x *Index) Validate() []ChainIssue {
	var issues []ChainIssue
	for alias, target := range x.aliases {
		if next, ok := x.aliases[target]; ok {
			issues = append(issues, ChainIssue{
				Kind:    IssueAliasChain,
				AliasID: alias,
				Target:  target,
				Next:    next,
			})
			continue
		}
		if _, ok := x.names[target]; !ok {
			issues = append(issues, ChainIssue{
				Kind:    IssueDanglingAlias,
				AliasID: alias,
				Target:  target,
			})
		}
	}
	sort.Slice(issues, func(i, j int) bool { return issues[i].AliasID < issues[j].AliasID })
	return issues
}
