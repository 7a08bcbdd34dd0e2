// Package marks renders assignee and delegate markup from an alias and the
// team roster. The codec in taskline is the inverse of this package.
package marks

import (
	"fmt"

	"github.com/danrfletcher/agilemd/internal/taskline"
	"github.com/danrfletcher/agilemd/internal/team"
)

// Assignee renders the owner mark for alias. The reserved team-wide alias
// renders as the Everyone mark, which the codec keys on by attribute.
func Assignee(alias string, v taskline.Variant, cfg *team.Config) string {
	if alias == taskline.EveryoneAlias {
		return fmt.Sprintf(`<mark class="%s-%s" data-everyone="true"><strong>%s Everyone</strong></mark>`,
			v, taskline.EveryoneAlias, taskline.DelegateTeamGlyph)
	}
	name := alias
	if cfg != nil {
		name = cfg.DisplayName(alias)
	}
	return fmt.Sprintf(`<mark class="%s-%s"><strong>%s %s</strong></mark>`,
		v, alias, taskline.AssigneeGlyph, name)
}

// Delegate renders the delegation mark for alias with the glyph matching
// the target kind.
func Delegate(alias, displayName string, v taskline.Variant, kind team.MemberKind) string {
	glyph := taskline.DelegateInternalGlyph
	switch kind {
	case team.KindTeam:
		glyph = taskline.DelegateTeamGlyph
	case team.KindExternal:
		glyph = taskline.DelegateExternalGlyph
	}
	if displayName == "" {
		displayName = alias
	}
	return fmt.Sprintf(`<mark class="%s-%s"><strong>%s %s</strong></mark>`, v, alias, glyph, displayName)
}
