package assign

import (
	"errors"
	"strings"

	"github.com/danrfletcher/agilemd/internal/index"
	"github.com/danrfletcher/agilemd/internal/marks"
	"github.com/danrfletcher/agilemd/internal/taskline"
	"github.com/danrfletcher/agilemd/internal/team"
)

// ErrMissingNode reports that the referenced line has no task node.
// Callers at the editing boundary treat it as "no edit performed".
var ErrMissingNode = errors.New("no task node at the requested line")

// Service ties the cascade engine to the index, codec, and mark renderer.
type Service struct {
	Trees *index.Service
	Team  *team.Config
	Codec taskline.Codec
}

// NewService builds a Service with the codec variant the config selects.
func NewService(trees *index.Service, cfg *team.Config) *Service {
	codec := taskline.Default
	if cfg != nil && cfg.StrictDelegates {
		codec = taskline.Strict
	}
	return &Service{Trees: trees, Team: cfg, Codec: codec}
}

func (s *Service) render(alias string) string {
	return marks.Assignee(alias, taskline.VariantActive, s.Team)
}

// AssignLine sets the explicit owner of the task on the 1-based line to
// alias ("" clears it), cascades the change through the subtree, and
// applies the resulting edits to ed. The index entry for path is refreshed
// from the buffer before and after, so the tree is never stale relative to
// the content being edited.
func (s *Service) AssignLine(path string, ed LineEditor, line int, alias string) (EditSet, error) {
	content := ed.Value()
	tree := s.Trees.RefreshFrom(path, content)
	node, ok := tree.ByLine(line)
	if !ok {
		return newEditSet(), ErrMissingNode
	}

	before := Snapshot(content)
	oldExplicit := before[line-1]

	// Assigning a node to the value it would already inherit is a no-op
	// from the document's perspective: clear back to implicit.
	newExplicit := alias
	if RedundantSelf(tree, node, before, alias) {
		newExplicit = ""
	}

	edits := Cascade(tree, node, oldExplicit, newExplicit, before)
	switch {
	case newExplicit == oldExplicit:
		// Nothing changed on the line itself.
	case newExplicit == "":
		edits.Remove[line-1] = true
	default:
		edits.Set[line-1] = newExplicit
	}

	ApplyEdits(ed, edits, s.render, s.Codec)
	s.Trees.RefreshFrom(path, ed.Value())
	return edits, nil
}

// CascadeExternal runs the cascade for a change some other actor already
// wrote to the node on the 1-based line, without touching that line itself.
// before must be the alias snapshot from before that change.
func (s *Service) CascadeExternal(path string, ed LineEditor, line int, oldAlias, newAlias string, before AliasMap) (EditSet, error) {
	tree := s.Trees.RefreshFrom(path, ed.Value())
	node, ok := tree.ByLine(line)
	if !ok {
		return newEditSet(), ErrMissingNode
	}
	edits := Cascade(tree, node, oldAlias, newAlias, before)
	ApplyEdits(ed, edits, s.render, s.Codec)
	s.Trees.RefreshFrom(path, ed.Value())
	return edits, nil
}

// Sweep removes every explicit mark in the document that inheritance would
// reproduce anyway. The watcher runs this after external writes to keep
// files dedup-clean.
func (s *Service) Sweep(path string, ed LineEditor) (EditSet, error) {
	content := ed.Value()
	tree := s.Trees.RefreshFrom(path, content)
	aliases := Snapshot(content)

	edits := newEditSet()
	for i := range tree.Nodes {
		dl := tree.Nodes[i].Line - 1
		a := aliases[dl]
		if a == "" {
			continue
		}
		if inheritedExcludingSelf(tree, i, aliases) == a {
			edits.Remove[dl] = true
		}
	}
	ApplyEdits(ed, edits, s.render, s.Codec)
	s.Trees.RefreshFrom(path, ed.Value())
	return edits, nil
}

// Format rewrites every task line in canonical field order. Returns the
// number of lines changed.
func (s *Service) Format(ed LineEditor) int {
	changed := 0
	for i := range strings.Split(ed.Value(), "\n") {
		text, ok := ed.Line(i)
		if !ok {
			continue
		}
		out := s.Codec.Serialize(taskline.Parse(text), taskline.Overrides{})
		if out != text {
			ed.SetLine(i, out)
			changed++
		}
	}
	return changed
}
