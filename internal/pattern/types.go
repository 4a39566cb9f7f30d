// Package pattern holds the classification rules a file is checked against
// and the order in which they are evaluated.
//
// Rules are declared one per line in a pattern file. Evaluation walks the
// rules in reverse declaration order, so when a file matches several rules
// it receives the label of the rule declared last. Declared priority
// numbers are kept as metadata and never reorder evaluation.
package pattern

import (
	"github.com/harrison/typescan/internal/search"
)

// UnknownLabel is the label given to content no rule matches.
const UnknownLabel = "Unknown file type"

// Rule associates a content signature with the file-type label it implies.
type Rule struct {
	// Priority is the rank declared in the pattern file
	Priority int `json:"priority" yaml:"priority"`

	// Pattern is the literal byte string searched for in file content
	Pattern []byte `json:"pattern" yaml:"pattern"`

	// Label is the file-type label reported on a match
	Label string `json:"label" yaml:"label"`

	// Line is the 1-based line the rule was declared on (0 if built in code)
	Line int `json:"line,omitempty" yaml:"line,omitempty"`
}

// Catalog is an immutable, ordered set of rules. It is built once before
// scanning and shared read-only by every concurrent scan task.
type Catalog struct {
	// declared keeps source order for fingerprinting and diagnostics
	declared []Rule
	// rules and matchers are in evaluation order (reverse declaration)
	rules    []Rule
	matchers []*search.Matcher
	fallback string
}

// NewCatalog builds a catalog from rules given in declaration order.
// The rules are copied; later changes to the slice do not affect the catalog.
func NewCatalog(rules []Rule) *Catalog {
	c := &Catalog{
		declared: make([]Rule, len(rules)),
		rules:    make([]Rule, 0, len(rules)),
		matchers: make([]*search.Matcher, 0, len(rules)),
		fallback: UnknownLabel,
	}

	for i, r := range rules {
		r.Pattern = append([]byte(nil), r.Pattern...)
		c.declared[i] = r
	}

	for i := len(c.declared) - 1; i >= 0; i-- {
		r := c.declared[i]
		c.rules = append(c.rules, r)
		c.matchers = append(c.matchers, search.Compile(r.Pattern))
	}

	return c
}

// WithFallback returns a catalog sharing the same rules that reports label
// when nothing matches. An empty label keeps the current fallback.
func (c *Catalog) WithFallback(label string) *Catalog {
	if label == "" || label == c.fallback {
		return c
	}
	clone := *c
	clone.fallback = label
	return &clone
}

// Fallback returns the label reported when no rule matches.
func (c *Catalog) Fallback() string {
	return c.fallback
}

// Len returns the number of rules.
func (c *Catalog) Len() int {
	return len(c.rules)
}

// Rules returns a copy of the rules in evaluation order.
func (c *Catalog) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Declared returns a copy of the rules in declaration order.
func (c *Catalog) Declared() []Rule {
	out := make([]Rule, len(c.declared))
	copy(out, c.declared)
	return out
}

// Match returns the first rule, in evaluation order, whose pattern occurs
// in content. The boolean is false when no rule matches.
func (c *Catalog) Match(content []byte) (Rule, bool) {
	for i, m := range c.matchers {
		if m.Occurs(content) {
			return c.rules[i], true
		}
	}
	return Rule{}, false
}

// Evaluate returns the label of the matching rule declared last in the
// source, or the fallback label when no rule in the catalog matches.
func (c *Catalog) Evaluate(content []byte) string {
	if r, ok := c.Match(content); ok {
		return r.Label
	}
	return c.fallback
}
