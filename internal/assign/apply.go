package assign

import "github.com/danrfletcher/agilemd/internal/taskline"

// LineEditor is the surface the applicator needs from a buffer back-end.
// Both buffer.Memory and buffer.Snapshot satisfy it.
type LineEditor interface {
	Line(i int) (string, bool)
	SetLine(i int, text string)
	Value() string
}

// RenderFunc turns an alias into assignee markup.
type RenderFunc func(alias string) string

// ApplyEdits replays an edit set against a line editor. Each touched line
// goes back through the codec with only the assignee slot overridden, so
// every other field on the line survives as is. Lines that vanished or
// stopped being tasks since the edit set was computed are skipped.
// Returns the number of lines changed.
func ApplyEdits(ed LineEditor, edits EditSet, render RenderFunc, codec taskline.Codec) int {
	changed := 0
	apply := func(line int, ov taskline.Override) {
		text, ok := ed.Line(line)
		if !ok {
			return
		}
		parsed := taskline.Parse(text)
		if !parsed.IsTask() {
			return
		}
		out := codec.Serialize(parsed, taskline.Overrides{Assignee: ov})
		if out != text {
			ed.SetLine(line, out)
			changed++
		}
	}

	for line, alias := range edits.Set {
		apply(line, taskline.Value(render(alias)))
	}
	for line := range edits.Remove {
		apply(line, taskline.Clear())
	}
	return changed
}
