// Package assign maintains the ownership-consistency invariant over task
// trees: every task resolves to an effective owner, explicit or inherited
// from the nearest ancestor that states one, and a change to an ancestor's
// explicit owner cascades so no descendant's effective owner drifts
// silently.
package assign

import (
	"strings"

	"github.com/danrfletcher/agilemd/internal/index"
	"github.com/danrfletcher/agilemd/internal/taskline"
)

// AliasMap maps 0-based line index to the explicit alias parsed from that
// line. Absent or empty means no explicit alias.
type AliasMap map[int]string

// Clone returns an independent copy.
func (m AliasMap) Clone() AliasMap {
	out := make(AliasMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Snapshot parses every line of content and records each explicit alias.
func Snapshot(content string) AliasMap {
	m := AliasMap{}
	for i, raw := range strings.Split(content, "\n") {
		if a := taskline.Parse(raw).ExplicitAlias(); a != "" {
			m[i] = a
		}
	}
	return m
}

// Effective resolves the effective alias of node i: its own explicit alias
// when present, else the first explicit alias found walking parent links
// toward the root. Returns "" for an unassigned chain.
func Effective(t *index.Tree, i int, aliases AliasMap) string {
	a, _ := EffectiveWithSource(t, i, aliases)
	return a
}

// EffectiveWithSource is Effective plus the 1-based line that supplied the
// value: the node's own line when self-explicit, the ancestor's line when
// inherited, 0 when unassigned.
func EffectiveWithSource(t *index.Tree, i int, aliases AliasMap) (string, int) {
	for n := i; n != -1; n = t.Nodes[n].Parent {
		line := t.Nodes[n].Line
		if a := aliases[line-1]; a != "" {
			return a, line
		}
	}
	return "", 0
}

// inheritedExcludingSelf resolves what node i would inherit if it had no
// explicit alias of its own.
func inheritedExcludingSelf(t *index.Tree, i int, aliases AliasMap) string {
	if p := t.Nodes[i].Parent; p != -1 {
		return Effective(t, p, aliases)
	}
	return ""
}
