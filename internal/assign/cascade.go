package assign

import "github.com/danrfletcher/agilemd/internal/index"

// EditSet is the output of a cascade: lines to receive an explicit mark and
// lines whose explicit mark must be removed. Both use 0-based line indices.
type EditSet struct {
	Set    map[int]string
	Remove map[int]bool
}

func newEditSet() EditSet {
	return EditSet{Set: map[int]string{}, Remove: map[int]bool{}}
}

// Empty reports whether the cascade produced no edits.
func (e EditSet) Empty() bool {
	return len(e.Set) == 0 && len(e.Remove) == 0
}

// Cascade computes the edits needed after the explicit alias of the node at
// changed (arena index) moved from oldAlias to newAlias. before is the
// alias snapshot taken before any edit touched the document.
//
// Pass 1 pins every descendant whose effective owner would otherwise drift,
// materializing its prior effective alias as an explicit mark. A descendant
// whose value is unchanged is still pinned when the value was inherited
// from the changed node itself: the value survives only by coincidence, the
// dependency is real, and a later change to the same node must not move it
// without a fresh user action. Pinning keys on the node being changed right
// now, not on ancestors further up.
//
// Pass 2 removes every explicit mark that the post-cascade tree would
// reproduce through inheritance anyway, excluding marks Pass 1 just
// materialized.
func Cascade(t *index.Tree, changed int, oldAlias, newAlias string, before AliasMap) EditSet {
	edits := newEditSet()
	if oldAlias == newAlias {
		return edits
	}

	changedLine := t.Nodes[changed].Line
	after := before.Clone()
	after[changedLine-1] = newAlias

	descendants := t.Descendants(changed)

	for _, d := range descendants {
		dl := t.Nodes[d].Line - 1
		explicit := before[dl]

		prevEffective := explicit
		if prevEffective == "" {
			prevEffective = Effective(t, d, before)
		}
		newCandidate := explicit
		if newCandidate == "" {
			newCandidate = Effective(t, d, after)
		}

		if prevEffective != newCandidate {
			if prevEffective != "" {
				edits.Set[dl] = prevEffective
				// Later descendants must inherit the pinned value,
				// not the new one.
				after[dl] = prevEffective
			}
			continue
		}
		if explicit == "" && prevEffective != "" {
			// Resolved against the in-progress map: a pin materialized on
			// an intermediate node earlier in this pass shields d, and d
			// must then stay implicit.
			if _, src := EffectiveWithSource(t, d, after); src == changedLine {
				edits.Set[dl] = prevEffective
				after[dl] = prevEffective
			}
		}
	}

	for _, d := range descendants {
		dl := t.Nodes[d].Line - 1
		val := after[dl]
		if val == "" {
			continue
		}
		if _, justSet := edits.Set[dl]; justSet {
			continue
		}
		// Blank the entry so the walk resolves against every other one.
		delete(after, dl)
		inherited := Effective(t, d, after)
		after[dl] = val
		if inherited == val {
			edits.Remove[dl] = true
		}
	}

	return edits
}

// RedundantSelf reports whether giving the node at i the explicit alias
// would be redundant: the value equals what the node inherits excluding
// itself. A direct assignment to such a value is cleared back to implicit.
func RedundantSelf(t *index.Tree, i int, aliases AliasMap, alias string) bool {
	return alias != "" && inheritedExcludingSelf(t, i, aliases) == alias
}
