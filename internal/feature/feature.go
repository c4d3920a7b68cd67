// Package feature resolves the active feature context for a provisioned
// project: which changes/NNN-slug directory the current work belongs to,
// and where its spec, plan, and tasks artifacts live. The resolver is a
// pure function of (workingDirectory, override, branch state); generated
// helper scripts call it first and consume its JSON output as their sole
// input.
package feature

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	// ChangesDir is the directory under the project root that holds one
	// subdirectory per feature.
	ChangesDir = "changes"
	// EnvOverride supplies the active feature ID when branch-based
	// detection is unavailable or undesired.
	EnvOverride = "SPECLITE_FEATURE"
)

// Artifact file names inside a feature directory.
const (
	SpecFile  = "spec.md"
	PlanFile  = "plan.md"
	TasksFile = "tasks.md"
)

// featureBranch matches a numeric feature ordinal followed by a slug,
// e.g. 003-add-login.
var featureBranch = regexp.MustCompile(`^[0-9]{3}-[a-z0-9-]+$`)

// ErrNoActiveFeature is returned when neither the current branch nor the
// override identifies a feature.
var ErrNoActiveFeature = errors.New(
	"no active feature: checkout a feature branch (e.g. 003-add-login) or set " + EnvOverride)

// MissingArtifactError names the artifact files absent from a resolved
// feature directory. Distinct from ErrNoActiveFeature so callers can give
// a more specific remediation message.
type MissingArtifactError struct {
	FeatureID string
	Missing   []string
}

// Error implements the error interface.
func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("feature %s is missing required artifacts: %s",
		e.FeatureID, strings.Join(e.Missing, ", "))
}

// Context locates a feature's directory and artifacts. All paths are
// absolute. JSON keys are the contract consumed by generated scripts.
type Context struct {
	ID        string `json:"FEATURE_ID"`
	Dir       string `json:"FEATURE_DIR"`
	SpecFile  string `json:"SPEC_FILE"`
	PlanFile  string `json:"PLAN_FILE"`
	TasksFile string `json:"TASKS_FILE"`
}

// BranchReader reports the current VCS branch for a directory. An empty
// name with a nil error means detached or otherwise branchless state.
type BranchReader interface {
	CurrentBranch(dir string) (string, error)
}

// BranchReaderFunc adapts a function to the BranchReader interface.
type BranchReaderFunc func(dir string) (string, error)

// CurrentBranch implements BranchReader.
func (f BranchReaderFunc) CurrentBranch(dir string) (string, error) {
	return f(dir)
}

// Resolve determines the active feature for the project rooted at root.
// The branch name wins when it matches the feature pattern; otherwise a
// non-empty override is taken as the feature ID directly, validated only
// for directory existence. A branch that is not a feature branch is not
// itself an error, it simply is not authoritative.
func Resolve(root, override string, branches BranchReader) (*Context, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	if branches != nil {
		branch, err := branches.CurrentBranch(absRoot)
		if err == nil && featureBranch.MatchString(branch) {
			return newContext(absRoot, branch), nil
		}
	}

	if override != "" {
		ctx := newContext(absRoot, override)
		if info, err := os.Stat(ctx.Dir); err != nil || !info.IsDir() {
			return nil, fmt.Errorf("%s names feature %q but %s does not exist: %w",
				EnvOverride, override, ctx.Dir, ErrNoActiveFeature)
		}
		return ctx, nil
	}

	return nil, ErrNoActiveFeature
}

// RequireArtifacts verifies the named artifact files ("spec", "plan",
// "tasks") exist in the feature directory. Missing files are reported
// together in a single *MissingArtifactError naming each absent path.
func (c *Context) RequireArtifacts(names ...string) error {
	var missing []string
	for _, name := range names {
		var path string
		switch name {
		case "spec":
			path = c.SpecFile
		case "plan":
			path = c.PlanFile
		case "tasks":
			path = c.TasksFile
		default:
			return fmt.Errorf("unknown artifact %q (expected spec, plan, or tasks)", name)
		}
		if _, err := os.Stat(path); err != nil {
			missing = append(missing, path)
		}
	}
	if len(missing) > 0 {
		return &MissingArtifactError{FeatureID: c.ID, Missing: missing}
	}
	return nil
}

// newContext builds the context for a feature ID under root.
func newContext(root, id string) *Context {
	dir := filepath.Join(root, ChangesDir, id)
	return &Context{
		ID:        id,
		Dir:       dir,
		SpecFile:  filepath.Join(dir, SpecFile),
		PlanFile:  filepath.Join(dir, PlanFile),
		TasksFile: filepath.Join(dir, TasksFile),
	}
}

// NextID scans the changes root for the highest numeric prefix and returns
// the next ordinal, starting at 1 when no feature directories exist.
// IDs minted from it are strictly increasing; the resolver itself never
// invents IDs.
func NextID(root string) (int, error) {
	entries, err := os.ReadDir(filepath.Join(root, ChangesDir))
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}
		return 0, fmt.Errorf("scanning %s: %w", ChangesDir, err)
	}

	highest := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if len(name) < 4 || name[3] != '-' {
			continue
		}
		n, err := strconv.Atoi(name[:3])
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return highest + 1, nil
}

// NormalizeSlug lowercases a feature description and reduces it to a
// hyphenated slug suitable for a branch and directory name.
func NormalizeSlug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	parts := strings.FieldsFunc(b.String(), func(r rune) bool { return r == '-' })
	return strings.Join(parts, "-")
}

// Create mints the next NNN-slug feature directory under root and returns
// its context. The directory is created; artifact files are the caller's
// responsibility (the CLI seeds the spec template).
func Create(root, slug string) (*Context, error) {
	slug = NormalizeSlug(slug)
	if slug == "" {
		return nil, errors.New("feature slug is empty after normalization")
	}

	n, err := NextID(root)
	if err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	ctx := newContext(absRoot, fmt.Sprintf("%03d-%s", n, slug))
	if err := os.MkdirAll(ctx.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating feature directory: %w", err)
	}
	return ctx, nil
}

// List returns the feature IDs present under root's changes directory,
// sorted ascending.
func List(root string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(root, ChangesDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning %s: %w", ChangesDir, err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() && featureBranch.MatchString(entry.Name()) {
			ids = append(ids, entry.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}
