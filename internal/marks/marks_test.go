package marks

import (
	"testing"

	"github.com/danrfletcher/agilemd/internal/taskline"
	"github.com/danrfletcher/agilemd/internal/team"
)

func TestAssigneeRoundTripsThroughCodec(t *testing.T) {
	cfg := &team.Config{Members: []team.Member{{Alias: "alice", DisplayName: "Alice Nguyen"}}}

	raw := Assignee("alice", taskline.VariantActive, cfg)
	l := taskline.Parse("- [ ] Task " + raw + " ")
	if l.ExplicitAlias() != "alice" {
		t.Errorf("codec reads back %q from %q", l.ExplicitAlias(), raw)
	}
	if l.Assignee.Variant() != taskline.VariantActive {
		t.Errorf("variant = %q", l.Assignee.Variant())
	}

	inactive := Assignee("alice", taskline.VariantInactive, cfg)
	if taskline.Parse("- [ ] T "+inactive+" ").Assignee.Variant() != taskline.VariantInactive {
		t.Error("inactive variant lost")
	}
}

func TestAssigneeEveryone(t *testing.T) {
	raw := Assignee(taskline.EveryoneAlias, taskline.VariantActive, nil)
	l := taskline.Parse("- [ ] Task " + raw + " ")
	if l.Assignee == nil || !l.Assignee.Everyone() {
		t.Fatalf("everyone flag lost in %q", raw)
	}
	if l.ExplicitAlias() != taskline.EveryoneAlias {
		t.Errorf("alias = %q", l.ExplicitAlias())
	}
}

func TestDelegateGlyphsByKind(t *testing.T) {
	tests := []struct {
		kind  team.MemberKind
		glyph string
	}{
		{team.KindInternal, taskline.DelegateInternalGlyph},
		{team.KindExternal, taskline.DelegateExternalGlyph},
		{team.KindTeam, taskline.DelegateTeamGlyph},
	}
	for _, tt := range tests {
		raw := Delegate("bob", "Bob", taskline.VariantActive, tt.kind)
		l := taskline.Parse("- [ ] Task " + raw + " ")
		if l.Delegate == nil {
			t.Errorf("%s delegate did not classify: %q", tt.kind, raw)
			continue
		}
		if l.Delegate.Alias() != "bob" {
			t.Errorf("%s alias = %q", tt.kind, l.Delegate.Alias())
		}
	}
}
