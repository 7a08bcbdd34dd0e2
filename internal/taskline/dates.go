package taskline

import (
	"regexp"
	"strings"
)

// DateKind orders date tokens for serialization. Lower sorts first.
type DateKind int

const (
	DateStart DateKind = iota
	DateScheduled
	DateDue
	DateTarget
	DateSnooze
	DateSnoozeSubtree
	DateCompleted
	DateCancelled
)

// DateToken is one date-like token lifted off a task line. A token with no
// calendar date attached is open-ended and sorts by kind alone.
type DateToken struct {
	Kind DateKind
	// Raw is the full token text, glyph included.
	Raw string
}

// Date returns the ISO date embedded in the token, or "" for an
// open-ended token.
func (t DateToken) Date() string {
	if m := isoDateRe.FindString(t.Raw); m != "" {
		return m
	}
	return ""
}

var isoDateRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

const optDate = `(?:\s\d{4}-\d{2}-\d{2})?`

// dateShapes pairs each token pattern with its kind. Order matters: the
// multi-entry, hidden-span and subtree snooze shapes must match before the
// bare snooze glyph would swallow their prefix.
var dateShapes = []struct {
	kind DateKind
	re   *regexp.Regexp
}{
	{DateSnooze, regexp.MustCompile(`💤\s\[[^\]]*\]`)},
	{DateSnooze, regexp.MustCompile(`💤\s<span style="display: none">[^<]*</span>` + optDate)},
	{DateSnoozeSubtree, regexp.MustCompile(`💤⬇️` + optDate)},
	{DateSnooze, regexp.MustCompile(`💤` + optDate)},
	{DateStart, regexp.MustCompile(`🛫` + optDate)},
	{DateScheduled, regexp.MustCompile(`⏳` + optDate)},
	{DateDue, regexp.MustCompile(`📅` + optDate)},
	{DateTarget, regexp.MustCompile(`🎯` + optDate)},
	{DateCompleted, regexp.MustCompile(`✅` + optDate)},
	{DateCancelled, regexp.MustCompile(`❌` + optDate)},
}

// extractDates removes every date-like token from text and returns the
// remainder plus the tokens in the order they appeared.
func extractDates(text string) (string, []DateToken) {
	type hit struct {
		start int
		tok   DateToken
	}
	var hits []hit
	for _, shape := range dateShapes {
		for {
			loc := shape.re.FindStringIndex(text)
			if loc == nil {
				break
			}
			hits = append(hits, hit{loc[0], DateToken{Kind: shape.kind, Raw: text[loc[0]:loc[1]]}})
			text = text[:loc[0]] + strings.Repeat(" ", loc[1]-loc[0]) + text[loc[1]:]
		}
	}
	// Restore document order; shape precedence scrambled it.
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j-1].start > hits[j].start; j-- {
			hits[j-1], hits[j] = hits[j], hits[j-1]
		}
	}
	toks := make([]DateToken, 0, len(hits))
	for _, h := range hits {
		toks = append(toks, h.tok)
	}
	return text, toks
}

// sortDates orders tokens by kind priority, keeping document order within
// a kind.
func sortDates(toks []DateToken) []DateToken {
	out := make([]DateToken, 0, len(toks))
	for kind := DateStart; kind <= DateCancelled; kind++ {
		for _, t := range toks {
			if t.Kind == kind {
				out = append(out, t)
			}
		}
	}
	return out
}
