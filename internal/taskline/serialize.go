package taskline

import (
	"sort"
	"strings"
)

// Codec controls the serialization variant.
type Codec struct {
	// StrictDelegates drops the delegate from any line that has no
	// assignee. Durable snapshots use this; an interactive buffer keeps
	// the delegate because a mid-edit line is often temporarily unowned.
	StrictDelegates bool
}

// Default keeps a delegate on an unassigned line.
var Default = Codec{}

// Strict clears a delegate whenever the line has no assignee.
var Strict = Codec{StrictDelegates: true}

// Serialize reassembles a line in canonical field order after applying the
// slot overrides. Non-task lines are emitted verbatim.
func (c Codec) Serialize(l *Line, ov Overrides) string {
	if !l.isTask {
		return l.raw
	}

	assignee := ov.Assignee.apply(markRaw(l.Assignee))
	delegate := ov.Delegate.apply(markRaw(l.Delegate))

	// Delegation is meaningless when the whole team already owns the task.
	if assignee != "" && parseMark(assignee).Alias() == EveryoneAlias {
		delegate = ""
	}
	if c.StrictDelegates && assignee == "" {
		delegate = ""
	}

	parts := []string{}
	if l.TypeMark != nil {
		parts = append(parts, l.TypeMark.Raw)
	}
	if l.Body != "" {
		parts = append(parts, l.Body)
	}

	meta := append([]Mark(nil), l.Metadata...)
	sort.SliceStable(meta, func(i, j int) bool { return meta[i].Class < meta[j].Class })
	for _, m := range meta {
		parts = append(parts, m.Raw)
	}

	if assignee != "" {
		parts = append(parts, assignee)
	}
	if delegate != "" {
		parts = append(parts, Separator, delegate)
	}

	links := append([]Mark(nil), l.Links...)
	sort.SliceStable(links, func(i, j int) bool { return linkSortKey(links[i]) < linkSortKey(links[j]) })
	for _, m := range links {
		parts = append(parts, m.Raw)
	}

	for _, t := range sortDates(l.Dates) {
		parts = append(parts, t.Raw)
	}

	if l.BlockID != "" {
		parts = append(parts, "^"+l.BlockID)
	}

	out := l.Prefix + "[" + l.Status + "] " + strings.Join(parts, " ")
	// The editor needs a character for the cursor to rest on after a
	// trailing inline element.
	if strings.HasSuffix(out, "</mark>") {
		return out + " "
	}
	return strings.TrimRight(out, " \t")
}

func markRaw(m *Mark) string {
	if m == nil {
		return ""
	}
	return m.Raw
}
