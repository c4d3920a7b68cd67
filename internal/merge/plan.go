package merge

import (
	"fmt"
	"sort"

	"github.com/speclite/speclite/internal/render"
)

// Mode is the provisioning mode. Init and upgrade share identical default
// semantics; the protection table is the only asymmetry in the system, and
// it applies to both.
type Mode string

const (
	// ModeInit is first-time provisioning (possibly into a non-empty dir).
	ModeInit Mode = "init"
	// ModeUpgrade refreshes a previously provisioned project.
	ModeUpgrade Mode = "upgrade"
)

// Action is the planned disposition for one target path.
type Action string

const (
	// Create writes a path that does not exist yet.
	Create Action = "create"
	// Overwrite replaces an existing non-protected path.
	Overwrite Action = "overwrite"
	// SkipProtected leaves an existing protected path untouched.
	SkipProtected Action = "skip-protected"
)

// Planned pairs a rendered file with its action.
type Planned struct {
	File   render.File
	Action Action
}

// CollisionError reports two corpus entries rendering to the same target
// path. This is fatal at planning time: nothing is written.
type CollisionError struct {
	Path string
}

// Error implements the error interface.
func (e *CollisionError) Error() string {
	return fmt.Sprintf("target path collision: %s is produced by more than one corpus entry", e.Path)
}

// Plan computes one action per rendered file without touching disk.
// exists reports whether a target path is already present under the target
// root. The plan is deterministic (sorted by target path), total, and
// confined to the rendered file set: paths outside it are never listed.
func Plan(files []render.File, mode Mode, rules []Rule, exists func(string) bool) ([]Planned, error) {
	_ = mode // init and upgrade share default semantics; see Mode docs.

	seen := make(map[string]bool, len(files))
	plan := make([]Planned, 0, len(files))

	for _, f := range files {
		if seen[f.TargetPath] {
			return nil, &CollisionError{Path: f.TargetPath}
		}
		seen[f.TargetPath] = true

		plan = append(plan, Planned{File: f, Action: decide(f.TargetPath, rules, exists)})
	}

	sort.Slice(plan, func(i, j int) bool {
		return plan[i].File.TargetPath < plan[j].File.TargetPath
	})
	return plan, nil
}

// decide applies the protection table, then the default create/overwrite
// semantics. The planner never deletes.
func decide(target string, rules []Rule, exists func(string) bool) Action {
	present := exists(target)

	if rule, ok := findRule(rules, target); ok {
		switch {
		case rule.Policy == SkipIfExists && present:
			return SkipProtected
		case rule.Policy == SkipIfExists:
			return Create
		case present:
			return Overwrite
		default:
			return Create
		}
	}

	if present {
		return Overwrite
	}
	return Create
}

// ExistsOnDisk returns an exists predicate rooted at dir, for feeding Plan
// from real directory state.
func ExistsOnDisk(dir string) func(string) bool {
	return func(target string) bool {
		_, err := statTarget(dir, target)
		return err == nil
	}
}
