// Package merge computes and applies the per-path provisioning plan: for
// every rendered corpus file, decide whether to create, overwrite, or skip
// it in the target directory, then execute that decision with per-file
// error isolation.
package merge

import (
	"path"
	"strings"
)

// Policy is what a protection rule does to a matching path.
type Policy string

const (
	// SkipIfExists never overwrites the path once it exists on disk,
	// regardless of provisioning mode. Absent paths are still created.
	SkipIfExists Policy = "skip-if-exists"
	// AlwaysOverwrite unconditionally refreshes the path.
	AlwaysOverwrite Policy = "always-overwrite"
)

// Rule protects paths matching a pattern. Patterns are path.Match globs;
// a trailing "/**" protects an entire subtree.
type Rule struct {
	Pattern string
	Policy  Policy
}

// DefaultRules is the fixed protection table. It is a persisted-state
// contract with the operator: paths under a SkipIfExists rule survive every
// upgrade untouched. Adding a protected path is a data change here, not a
// new code branch in the planner.
func DefaultRules() []Rule {
	return []Rule{
		// The constitution is created once from its template and then
		// belongs to the project.
		{Pattern: ".speclite/memory/constitution.md", Policy: SkipIfExists},
		// Per-feature specs, plans, and tasks are operator work product.
		{Pattern: "changes/**", Policy: SkipIfExists},
	}
}

// Matches reports whether a target path matches the rule pattern.
func (r Rule) Matches(target string) bool {
	if subtree, ok := strings.CutSuffix(r.Pattern, "/**"); ok {
		return target == subtree || strings.HasPrefix(target, subtree+"/")
	}
	ok, err := path.Match(r.Pattern, target)
	return err == nil && ok
}

// findRule returns the first rule matching target, if any.
func findRule(rules []Rule, target string) (Rule, bool) {
	for _, r := range rules {
		if r.Matches(target) {
			return r, true
		}
	}
	return Rule{}, false
}
