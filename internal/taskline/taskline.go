// Package taskline parses and serializes single markdown task lines.
//
// A task line carries a checkbox status, free body text, a set of inline
// <mark> elements (assignee, delegate, links, metadata), trailing date
// tokens, and an optional ^blockid. Parse splits a line into those fields;
// Serialize reassembles them in canonical order.
package taskline

import (
	"regexp"
	"strings"
)

// Line is the parsed form of one task line. Zero value is not useful;
// construct through Parse.
type Line struct {
	// Prefix is the indent plus list bullet, e.g. "    - ". Preserved verbatim.
	Prefix string
	// Status is the single character between the checkbox brackets.
	Status string
	// Body is the free text of the task with all marks and tokens removed.
	Body string

	// TypeMark is the artifact-category mark that renders before the body.
	TypeMark *Mark
	// Metadata holds unclassified marks, re-emitted sorted by class.
	Metadata []Mark
	// Assignee is the owner mark, nil when the line has no explicit owner.
	Assignee *Mark
	// Delegate is the delegation mark, nil when absent.
	Delegate *Mark
	// Links holds marks that embed a hyperlink.
	Links []Mark
	// Dates holds date tokens in parse order; Serialize re-orders them.
	Dates []DateToken
	// BlockID is the trailing ^identifier without the caret, or "".
	BlockID string

	raw    string
	isTask bool
}

// IsTask reports whether the line matched the task-line shape.
// A non-task line round-trips byte for byte.
func (l *Line) IsTask() bool { return l.isTask }

// Raw returns the original line text as given to Parse.
func (l *Line) Raw() string { return l.raw }

// ExplicitAlias returns the alias stated directly on this line, or "" when
// the line carries no assignee mark.
func (l *Line) ExplicitAlias() string {
	if l.Assignee == nil {
		return ""
	}
	return l.Assignee.Alias()
}

var (
	taskPrefixRe = regexp.MustCompile(`^(\s*[-*+]\s)\[(.)\]\s?(.*)$`)
	blockIDRe    = regexp.MustCompile(`\s*\^([A-Za-z0-9]+)\s*$`)
	markRe       = regexp.MustCompile(`<mark\b[^>]*>.*?</mark>`)
	spaceRunRe   = regexp.MustCompile(`[ \t]{2,}`)
)

// Separator is the glyph emitted between the assignee and delegate marks.
const Separator = "👉"

// Parse splits one line into its canonical fields. A line that does not
// match the task shape is returned with IsTask() == false and is otherwise
// untouched; Serialize will emit it verbatim.
func Parse(line string) *Line {
	m := taskPrefixRe.FindStringSubmatch(line)
	if m == nil {
		return &Line{raw: line}
	}

	l := &Line{
		Prefix: m[1],
		Status: m[2],
		raw:    line,
		isTask: true,
	}
	rest := m[3]

	if bm := blockIDRe.FindStringSubmatch(rest); bm != nil {
		l.BlockID = bm[1]
		rest = rest[:len(rest)-len(bm[0])]
	}

	// Lift marks before date extraction so a date glyph inside a mark
	// label is never mistaken for a date token.
	rest = markRe.ReplaceAllStringFunc(rest, func(raw string) string {
		mk := parseMark(raw)
		switch classify(mk) {
		case kindType:
			if l.TypeMark == nil {
				l.TypeMark = mk
			} else {
				l.Metadata = append(l.Metadata, *mk)
			}
		case kindAssignee:
			// First assignee wins; later duplicates drop silently.
			if l.Assignee == nil {
				l.Assignee = mk
			}
		case kindDelegate:
			if l.Delegate == nil {
				l.Delegate = mk
			}
		case kindLink:
			l.Links = append(l.Links, *mk)
		default:
			l.Metadata = append(l.Metadata, *mk)
		}
		return " "
	})

	rest, l.Dates = extractDates(rest)

	rest = strings.ReplaceAll(rest, Separator, " ")
	rest = spaceRunRe.ReplaceAllString(rest, " ")
	l.Body = strings.TrimSpace(rest)
	return l
}
