package taskline

// Override is a tri-state instruction for one mutable slot on a line.
// The zero value leaves the parsed slot untouched; Clear removes it;
// Value replaces its raw markup. Collapsing these to a nullable string
// loses the "not provided" vs "provided empty" distinction, which the
// cascade relies on.
type Override struct {
	kind   overrideKind
	markup string
}

type overrideKind int

const (
	overrideUnspecified overrideKind = iota
	overrideClear
	overrideValue
)

// Unspecified leaves the parsed slot value as is.
func Unspecified() Override { return Override{} }

// Clear removes the slot.
func Clear() Override { return Override{kind: overrideClear} }

// Value replaces the slot with the given raw markup.
func Value(markup string) Override { return Override{kind: overrideValue, markup: markup} }

// FromOptional builds an Override from an optional field: absent means
// leave alone, present-but-empty means clear, present means set.
func FromOptional(present bool, markup string) Override {
	switch {
	case !present:
		return Unspecified()
	case markup == "":
		return Clear()
	default:
		return Value(markup)
	}
}

func (o Override) apply(parsed string) string {
	switch o.kind {
	case overrideClear:
		return ""
	case overrideValue:
		return o.markup
	default:
		return parsed
	}
}

// Overrides names the mutable slots of a task line.
type Overrides struct {
	Assignee Override
	Delegate Override
}
