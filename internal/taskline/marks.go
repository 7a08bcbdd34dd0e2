package taskline

import (
	"regexp"
	"strings"
)

// EveryoneAlias is the reserved alias for team-wide ownership. A task owned
// by everyone never carries a delegate.
const EveryoneAlias = "team"

// Variant is the visual state of an assignee or delegate mark.
type Variant string

const (
	VariantActive   Variant = "active"
	VariantInactive Variant = "inactive"
)

// Glyphs that open the bold label of a classified mark.
const (
	AssigneeGlyph         = "🤝"
	DelegateTeamGlyph     = "👥"
	DelegateInternalGlyph = "👤"
	DelegateExternalGlyph = "🌐"
)

// Mark is one inline <mark> element lifted off a task line.
type Mark struct {
	// Raw is the full element text; serialization re-emits it unchanged.
	Raw string
	// Class is the value of the class attribute.
	Class string
	// Attrs holds the data-* attributes keyed without the data- prefix.
	Attrs map[string]string
	// Label is the inner <strong> content.
	Label string
}

var (
	classAttrRe  = regexp.MustCompile(`class="([^"]*)"`)
	dataAttrRe   = regexp.MustCompile(`data-([A-Za-z-]+)="([^"]*)"`)
	strongBodyRe = regexp.MustCompile(`<strong>(.*?)</strong>`)
	hrefRe       = regexp.MustCompile(`<a\s`)
)

func parseMark(raw string) *Mark {
	m := &Mark{Raw: raw}
	if c := classAttrRe.FindStringSubmatch(raw); c != nil {
		m.Class = c[1]
	}
	for _, kv := range dataAttrRe.FindAllStringSubmatch(raw, -1) {
		if m.Attrs == nil {
			m.Attrs = map[string]string{}
		}
		m.Attrs[kv[1]] = kv[2]
	}
	if s := strongBodyRe.FindStringSubmatch(raw); s != nil {
		m.Label = s[1]
	}
	return m
}

// Everyone reports whether the mark carries the team-wide ownership flag.
// The flag wins over the label glyph, so an Everyone mark drawn with a
// delegate glyph still classifies as an assignee.
func (m *Mark) Everyone() bool {
	return m.Attrs["everyone"] == "true"
}

// Alias returns the member alias encoded in the mark's class, or
// EveryoneAlias for a team-wide mark.
func (m *Mark) Alias() string {
	if m.Everyone() {
		return EveryoneAlias
	}
	for _, tok := range strings.Fields(m.Class) {
		for _, v := range []Variant{VariantActive, VariantInactive} {
			if rest, ok := strings.CutPrefix(tok, string(v)+"-"); ok && rest != "" {
				return rest
			}
		}
	}
	return ""
}

// Variant returns the visual variant encoded in the mark's class,
// defaulting to active.
func (m *Mark) Variant() Variant {
	for _, tok := range strings.Fields(m.Class) {
		if strings.HasPrefix(tok, string(VariantInactive)+"-") {
			return VariantInactive
		}
	}
	return VariantActive
}

func (m *Mark) hasClassToken(want string) bool {
	for _, tok := range strings.Fields(m.Class) {
		if tok == want {
			return true
		}
	}
	return false
}

type markKind int

const (
	kindMetadata markKind = iota
	kindType
	kindAssignee
	kindDelegate
	kindLink
)

func classify(m *Mark) markKind {
	if m.Everyone() {
		return kindAssignee
	}
	if m.hasClassToken("type") {
		return kindType
	}
	if strings.HasPrefix(m.Label, AssigneeGlyph) {
		return kindAssignee
	}
	for _, g := range []string{DelegateTeamGlyph, DelegateInternalGlyph, DelegateExternalGlyph} {
		if strings.HasPrefix(m.Label, g) {
			return kindDelegate
		}
	}
	if hrefRe.MatchString(m.Raw) {
		return kindLink
	}
	return kindMetadata
}

// linkSortKey orders link marks: the objective class renders first, the
// remainder alphabetically by class.
func linkSortKey(m Mark) string {
	if m.hasClassToken("objective") {
		return "0"
	}
	return "1" + m.Class
}
