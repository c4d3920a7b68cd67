// Package corpus loads the packaged template corpus: the shared tree
// (helper scripts, memory files, document templates) and the per-agent
// command templates, plus the agent profile manifest.
//
// The corpus is read once per invocation from embedded data and validated
// up front; a malformed corpus indicates a broken distribution and is fatal.
package corpus

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed all:templates
var templateFS embed.FS

// Kind classifies a corpus entry by its role in the provisioned tree.
type Kind string

const (
	// KindScript is a shared helper script (bash or powershell).
	KindScript Kind = "script"
	// KindCommand is a per-agent command template.
	KindCommand Kind = "command-template"
	// KindMemory is a persisted memory file (e.g. the constitution).
	KindMemory Kind = "memory"
	// KindStatic is a shared document template copied verbatim.
	KindStatic Kind = "static"
)

// Flavor selects the shell variant of helper scripts.
type Flavor string

const (
	// FlavorSh selects POSIX shell scripts.
	FlavorSh Flavor = "sh"
	// FlavorPS selects PowerShell scripts.
	FlavorPS Flavor = "ps"
)

// Flavors lists the supported script flavors.
var Flavors = []Flavor{FlavorSh, FlavorPS}

// Entry is one shared corpus file, keyed by its path relative to the
// provisioned project root.
type Entry struct {
	LogicalPath string
	Content     string
	Kind        Kind
}

// LoadError indicates missing or malformed packaged template data.
// It is fatal and never retried: the distribution itself is broken.
type LoadError struct {
	Path   string
	Reason string
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("corpus: %s: %s", e.Path, e.Reason)
}

// Corpus is the loaded, validated template corpus.
type Corpus struct {
	shared   []Entry
	commands []Command
	profiles []Profile
}

// Load reads and validates the embedded corpus.
func Load() (*Corpus, error) {
	return loadFS(templateFS)
}

// loadFS loads a corpus from any fs.FS rooted at the templates directory.
// Split out from Load so tests can feed a broken corpus.
func loadFS(fsys fs.FS) (*Corpus, error) {
	c := &Corpus{}

	if err := c.loadShared(fsys); err != nil {
		return nil, err
	}
	if err := c.loadCommands(fsys); err != nil {
		return nil, err
	}
	if err := c.loadProfiles(fsys); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// sharedRoots maps embedded subtrees to their logical destination and kind.
var sharedRoots = []struct {
	src  string
	dst  string
	kind Kind
}{
	{"templates/scripts", ".speclite/scripts", KindScript},
	{"templates/memory", ".speclite/memory", KindMemory},
	{"templates/shared", ".speclite/templates", KindStatic},
}

// loadShared reads the script, memory, and static template trees.
// Entries are sorted by logical path for reproducible planning output.
func (c *Corpus) loadShared(fsys fs.FS) error {
	for _, root := range sharedRoots {
		err := fs.WalkDir(fsys, root.src, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return &LoadError{Path: root.src, Reason: "missing bundled directory"}
			}
			if d.IsDir() {
				return nil
			}
			data, readErr := fs.ReadFile(fsys, p)
			if readErr != nil {
				return &LoadError{Path: p, Reason: "unreadable: " + readErr.Error()}
			}
			rel := strings.TrimPrefix(p, root.src+"/")
			c.shared = append(c.shared, Entry{
				LogicalPath: path.Join(root.dst, rel),
				Content:     string(data),
				Kind:        root.kind,
			})
			return nil
		})
		if err != nil {
			return err
		}
	}

	sort.Slice(c.shared, func(i, j int) bool {
		return c.shared[i].LogicalPath < c.shared[j].LogicalPath
	})
	return nil
}

// Shared returns the shared corpus entries, sorted by logical path.
func (c *Corpus) Shared() []Entry {
	return c.shared
}

// Commands returns the command templates, sorted by name.
func (c *Corpus) Commands() []Command {
	return c.commands
}

// Command returns a command template by name.
func (c *Corpus) Command(name string) (Command, bool) {
	for _, cmd := range c.commands {
		if cmd.Name == name {
			return cmd, true
		}
	}
	return Command{}, false
}

// Profiles returns the agent profile table in manifest order.
func (c *Corpus) Profiles() []Profile {
	return c.profiles
}

// Profile returns the profile for an agent id.
func (c *Corpus) Profile(id string) (Profile, bool) {
	for _, p := range c.profiles {
		if p.ID == id {
			return p, true
		}
	}
	return Profile{}, false
}

// AgentIDs returns all known agent ids in manifest order.
func (c *Corpus) AgentIDs() []string {
	ids := make([]string, 0, len(c.profiles))
	for _, p := range c.profiles {
		ids = append(ids, p.ID)
	}
	return ids
}

// validate cross-checks commands against the shared script tree and sanity
// checks the profile table. Any failure here is a broken distribution.
func (c *Corpus) validate() error {
	scripts := make(map[string]bool, len(c.shared))
	for _, e := range c.shared {
		if e.Kind == KindScript {
			scripts[e.LogicalPath] = true
		}
	}

	for _, cmd := range c.commands {
		for _, flavor := range Flavors {
			invocation, ok := cmd.Scripts[flavor]
			if !ok || strings.TrimSpace(invocation) == "" {
				return &LoadError{
					Path:   cmd.sourcePath(),
					Reason: fmt.Sprintf("missing %s script command", flavor),
				}
			}
			if err := checkScriptRef(cmd, invocation, scripts); err != nil {
				return err
			}
		}
		for _, invocation := range cmd.AgentScripts {
			if err := checkScriptRef(cmd, invocation, scripts); err != nil {
				return err
			}
		}
	}

	seen := make(map[string]bool, len(c.profiles))
	for _, p := range c.profiles {
		if err := p.validate(); err != nil {
			return err
		}
		if seen[p.ID] {
			return &LoadError{Path: manifestPath, Reason: "duplicate agent id " + p.ID}
		}
		seen[p.ID] = true
	}
	if len(c.profiles) == 0 {
		return &LoadError{Path: manifestPath, Reason: "no agent profiles defined"}
	}

	return nil
}

// checkScriptRef verifies that a script invocation line references a script
// that exists in the shared tree. The referenced path is the first token,
// resolved through the same path rewrite rendering applies.
func checkScriptRef(cmd Command, invocation string, scripts map[string]bool) error {
	fields := strings.Fields(invocation)
	if len(fields) == 0 {
		return &LoadError{Path: cmd.sourcePath(), Reason: "empty script command"}
	}
	ref := RewriteProjectPaths(fields[0])
	if !scripts[ref] {
		return &LoadError{
			Path:   cmd.sourcePath(),
			Reason: fmt.Sprintf("references script %s which is not in the shared tree", ref),
		}
	}
	return nil
}

// RewriteProjectPaths rewrites bare corpus-relative prefixes (memory/,
// scripts/, templates/) to their provisioned .speclite/ locations. Command
// template prose uses the bare form; rendered output uses the real layout.
func RewriteProjectPaths(text string) string {
	for _, prefix := range []string{"memory/", "scripts/", "templates/"} {
		text = strings.ReplaceAll(text, prefix, ".speclite/"+prefix)
		// Undo double rewrites for occurrences that were already qualified.
		text = strings.ReplaceAll(text, ".speclite/.speclite/"+prefix, ".speclite/"+prefix)
	}
	return text
}
