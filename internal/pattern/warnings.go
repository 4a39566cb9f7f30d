package pattern

import (
	"fmt"

	"github.com/harrison/typescan/internal/search"
)

// OrderWarnings describes rules whose outcome is likely not what the
// author of the pattern file intended:
//
//   - a rule declared after another with a lower priority number. It is
//     still tried first, because declaration order decides.
//   - a rule that can never win because a later rule's pattern occurs in
//     its own pattern, so every file it matches is claimed by the later rule.
func (c *Catalog) OrderWarnings() []string {
	var warnings []string

	for i := 1; i < len(c.declared); i++ {
		prev, cur := c.declared[i-1], c.declared[i]
		if cur.Priority < prev.Priority {
			warnings = append(warnings, fmt.Sprintf(
				"%s (priority %d) is tried before %s (priority %d): later declarations win",
				describe(cur), cur.Priority, describe(prev), prev.Priority))
		}
	}

	for i, r := range c.declared {
		for j := i + 1; j < len(c.declared); j++ {
			later := c.declared[j]
			if search.Occurs(r.Pattern, later.Pattern) {
				warnings = append(warnings, fmt.Sprintf(
					"%s %q is shadowed by %s %q and can never match",
					describe(r), r.Label, describe(later), later.Label))
				break
			}
		}
	}

	return warnings
}

func describe(r Rule) string {
	if r.Line > 0 {
		return fmt.Sprintf("line %d", r.Line)
	}
	return fmt.Sprintf("rule %q", r.Pattern)
}
