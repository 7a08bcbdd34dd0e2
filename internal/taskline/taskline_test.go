package taskline

import (
	"strings"
	"testing"
)

const (
	aliceMark    = `<mark class="active-alice"><strong>🤝 Alice</strong></mark>`
	bobDelegate  = `<mark class="active-bob"><strong>👤 Bob</strong></mark>`
	everyoneMark = `<mark class="active-team" data-everyone="true"><strong>👥 Everyone</strong></mark>`
	epicMark     = `<mark class="type epic"><strong>🗂 Epic</strong></mark>`
	noteMark     = `<mark class="note"><strong>📝 Spike</strong></mark>`
	okrLink      = `<mark class="objective"><strong>🔗 <a href="https://vault/okr">Q3 OKR</a></strong></mark>`
	refLink      = `<mark class="related"><strong>🔗 <a href="https://vault/ref">Ref</a></strong></mark>`
)

func TestParseClassifiesMarks(t *testing.T) {
	line := "- [ ] " + epicMark + " Ship the importer " + noteMark + " " +
		aliceMark + " 👉 " + bobDelegate + " " + okrLink + " 🛫 2025-01-06 📅 2025-02-01 ^ab12Cd"

	l := Parse(line)
	if !l.IsTask() {
		t.Fatal("expected task line")
	}
	if l.Status != " " {
		t.Errorf("Status = %q, want %q", l.Status, " ")
	}
	if l.Body != "Ship the importer" {
		t.Errorf("Body = %q", l.Body)
	}
	if l.TypeMark == nil || l.TypeMark.Raw != epicMark {
		t.Errorf("TypeMark = %+v", l.TypeMark)
	}
	if l.ExplicitAlias() != "alice" {
		t.Errorf("ExplicitAlias = %q, want alice", l.ExplicitAlias())
	}
	if l.Delegate == nil || l.Delegate.Alias() != "bob" {
		t.Errorf("Delegate = %+v", l.Delegate)
	}
	if len(l.Links) != 1 || l.Links[0].Raw != okrLink {
		t.Errorf("Links = %+v", l.Links)
	}
	if len(l.Metadata) != 1 || l.Metadata[0].Raw != noteMark {
		t.Errorf("Metadata = %+v", l.Metadata)
	}
	if len(l.Dates) != 2 || l.Dates[0].Kind != DateStart || l.Dates[1].Kind != DateDue {
		t.Errorf("Dates = %+v", l.Dates)
	}
	if l.BlockID != "ab12Cd" {
		t.Errorf("BlockID = %q", l.BlockID)
	}
}

func TestParseNonTaskLine(t *testing.T) {
	for _, raw := range []string{"# Heading", "plain paragraph", "", "- not a checkbox"} {
		l := Parse(raw)
		if l.IsTask() {
			t.Errorf("Parse(%q).IsTask() = true", raw)
		}
		if got := Default.Serialize(l, Overrides{}); got != raw {
			t.Errorf("non-task round-trip: %q -> %q", raw, got)
		}
	}
}

func TestParseEveryoneIsAssignee(t *testing.T) {
	l := Parse("- [ ] All hands " + everyoneMark + " ")
	if l.Assignee == nil {
		t.Fatal("Everyone mark should classify as assignee despite delegate glyph")
	}
	if l.ExplicitAlias() != EveryoneAlias {
		t.Errorf("alias = %q, want %q", l.ExplicitAlias(), EveryoneAlias)
	}
	if l.Delegate != nil {
		t.Errorf("unexpected delegate: %+v", l.Delegate)
	}
}

func TestParseDuplicateAssigneesDropSilently(t *testing.T) {
	second := `<mark class="active-carol"><strong>🤝 Carol</strong></mark>`
	l := Parse("- [x] Two owners " + aliceMark + " " + second + " ")
	if l.ExplicitAlias() != "alice" {
		t.Errorf("first assignee should win, got %q", l.ExplicitAlias())
	}
}

func TestParseSnoozeShapes(t *testing.T) {
	tests := []struct {
		name string
		tok  string
		kind DateKind
		date string
	}{
		{"bare", "💤", DateSnooze, ""},
		{"dated", "💤 2025-03-01", DateSnooze, "2025-03-01"},
		{"hidden identity", `💤 <span style="display: none">alice</span> 2025-03-01`, DateSnooze, "2025-03-01"},
		{"subtree", "💤⬇️ 2025-03-01", DateSnoozeSubtree, "2025-03-01"},
		{"multi entry", "💤 [alice: 2025-03-01, bob: 2025-04-01]", DateSnooze, "2025-03-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Parse("- [ ] Rest " + tt.tok)
			if len(l.Dates) != 1 {
				t.Fatalf("Dates = %+v", l.Dates)
			}
			if l.Dates[0].Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", l.Dates[0].Kind, tt.kind)
			}
			if l.Dates[0].Date() != tt.date {
				t.Errorf("Date = %q, want %q", l.Dates[0].Date(), tt.date)
			}
			if l.Body != "Rest" {
				t.Errorf("Body = %q", l.Body)
			}
		})
	}
}

func TestParseIgnoresDateGlyphInsideMark(t *testing.T) {
	qaMark := `<mark class="qa"><strong>✅ QA sign-off</strong></mark>`
	line := "- [ ] Release candidate " + qaMark + " "

	l := Parse(line)
	if len(l.Dates) != 0 {
		t.Errorf("glyph inside mark label must not become a date token: %+v", l.Dates)
	}
	if len(l.Metadata) != 1 || l.Metadata[0].Raw != qaMark {
		t.Errorf("Metadata = %+v", l.Metadata)
	}
	if got := Default.Serialize(l, Overrides{}); got != line {
		t.Errorf("round-trip:\n got %q\nwant %q", got, line)
	}

	// A real date token outside the mark is still lifted.
	l = Parse("- [ ] Release candidate " + qaMark + " ✅ 2025-06-01")
	if len(l.Dates) != 1 || l.Dates[0].Kind != DateCompleted || l.Dates[0].Date() != "2025-06-01" {
		t.Errorf("Dates = %+v", l.Dates)
	}
	if len(l.Metadata) != 1 || l.Metadata[0].Raw != qaMark {
		t.Errorf("Metadata = %+v", l.Metadata)
	}
}

func TestDatePriorityOrder(t *testing.T) {
	// Scrambled on input, canonical on output.
	l := Parse("- [ ] Order ✅ 2025-05-01 📅 2025-02-01 💤 🛫 2025-01-01 🎯 2025-03-01 ⏳ 2025-01-15")
	out := Default.Serialize(l, Overrides{})
	want := "- [ ] Order 🛫 2025-01-01 ⏳ 2025-01-15 📅 2025-02-01 🎯 2025-03-01 💤 ✅ 2025-05-01"
	if out != want {
		t.Errorf("serialize order:\n got %q\nwant %q", out, want)
	}
}

func TestRoundTripCanonicalLine(t *testing.T) {
	lines := []string{
		"- [ ] " + epicMark + " Ship the importer " + noteMark + " " + aliceMark + " 👉 " + bobDelegate + " " + okrLink + " 🛫 2025-01-06 📅 2025-02-01 ^ab12Cd",
		"  - [x] Done thing " + aliceMark + " ",
		"- [/] Unowned with dates ⏳ 2025-01-15 ✅ 2025-05-01",
	}
	for _, line := range lines {
		if got := Default.Serialize(Parse(line), Overrides{}); got != line {
			t.Errorf("round-trip:\n got %q\nwant %q", got, line)
		}
	}
}

func TestSerializeCanonicalizesArbitraryOrder(t *testing.T) {
	scrambled := "- [ ] " + okrLink + " 📅 2025-02-01 Ship it " + aliceMark + " " + epicMark + " ^zz9"
	want := "- [ ] " + epicMark + " Ship it " + aliceMark + " " + okrLink + " 📅 2025-02-01 ^zz9"
	if got := Default.Serialize(Parse(scrambled), Overrides{}); got != want {
		t.Errorf("canonicalize:\n got %q\nwant %q", got, want)
	}
}

func TestLinkOrderObjectiveFirst(t *testing.T) {
	l := Parse("- [ ] Linked " + refLink + " " + okrLink + " ")
	out := Default.Serialize(l, Overrides{})
	if !strings.Contains(out, okrLink+" "+refLink) {
		t.Errorf("objective link must sort first: %q", out)
	}
}

func TestTrailingSpaceRule(t *testing.T) {
	endsWithMark := Default.Serialize(Parse("- [ ] Task "+aliceMark), Overrides{})
	if !strings.HasSuffix(endsWithMark, "</mark> ") || strings.HasSuffix(endsWithMark, "  ") {
		t.Errorf("want exactly one trailing space after mark, got %q", endsWithMark)
	}
	endsWithText := Default.Serialize(Parse("- [ ] Plain task   "), Overrides{})
	if endsWithText != "- [ ] Plain task" {
		t.Errorf("want trimmed text ending, got %q", endsWithText)
	}
}

func TestOverrides(t *testing.T) {
	base := Parse("- [ ] Task " + aliceMark + " 👉 " + bobDelegate + " ")

	t.Run("unspecified keeps slots", func(t *testing.T) {
		out := Default.Serialize(base, Overrides{})
		if !strings.Contains(out, aliceMark) || !strings.Contains(out, bobDelegate) {
			t.Errorf("got %q", out)
		}
	})
	t.Run("clear removes assignee only", func(t *testing.T) {
		out := Default.Serialize(base, Overrides{Assignee: Clear()})
		if strings.Contains(out, aliceMark) {
			t.Errorf("assignee not cleared: %q", out)
		}
		if !strings.Contains(out, bobDelegate) {
			t.Errorf("delegate must survive in default codec: %q", out)
		}
	})
	t.Run("value replaces assignee", func(t *testing.T) {
		carol := `<mark class="active-carol"><strong>🤝 Carol</strong></mark>`
		out := Default.Serialize(base, Overrides{Assignee: Value(carol)})
		if !strings.Contains(out, carol) || strings.Contains(out, aliceMark) {
			t.Errorf("got %q", out)
		}
	})
	t.Run("strict clears orphan delegate", func(t *testing.T) {
		out := Strict.Serialize(base, Overrides{Assignee: Clear()})
		if strings.Contains(out, bobDelegate) || strings.Contains(out, Separator) {
			t.Errorf("delegate must go with the assignee in strict codec: %q", out)
		}
	})
}

func TestEveryoneForcesDelegateClear(t *testing.T) {
	base := Parse("- [ ] Task " + aliceMark + " 👉 " + bobDelegate + " ")
	out := Default.Serialize(base, Overrides{Assignee: Value(everyoneMark)})
	if strings.Contains(out, bobDelegate) || strings.Contains(out, Separator) {
		t.Errorf("Everyone assignee must suppress delegation: %q", out)
	}
	if !strings.Contains(out, everyoneMark) {
		t.Errorf("missing everyone mark: %q", out)
	}
}

func TestFromOptional(t *testing.T) {
	if FromOptional(false, "") != Unspecified() {
		t.Error("absent key must mean unspecified")
	}
	if FromOptional(true, "") != Clear() {
		t.Error("present empty key must mean clear, not unspecified")
	}
	if FromOptional(true, "<mark>x</mark>") != Value("<mark>x</mark>") {
		t.Error("present key must mean value")
	}
}

func TestNewBlockID(t *testing.T) {
	a, b := NewBlockID(), NewBlockID()
	if len(a) != 6 || a == b {
		t.Errorf("block ids: %q %q", a, b)
	}
}
