package corpus

import (
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Command is one logical slash command, parsed from its template.
// The same command renders once per selected agent profile.
type Command struct {
	// Name is the logical command name (template file stem).
	Name string
	// Description is the frontmatter description, surfaced in each
	// agent's command listing.
	Description string
	// Scripts maps shell flavor to the helper script invocation that
	// replaces the {SCRIPT} placeholder.
	Scripts map[Flavor]string
	// AgentScripts maps shell flavor to the secondary invocation behind
	// the {AGENT_SCRIPT} placeholder, when the template uses one.
	AgentScripts map[Flavor]string
	// Raw is the full template text including frontmatter.
	Raw string
}

// sourcePath returns the corpus-relative template path for error messages.
func (cmd Command) sourcePath() string {
	return "templates/commands/" + cmd.Name + ".md"
}

// commandFrontmatter is the YAML preamble of a command template.
type commandFrontmatter struct {
	Description  string            `yaml:"description"`
	Scripts      map[string]string `yaml:"scripts"`
	AgentScripts map[string]string `yaml:"agent_scripts"`
}

// loadCommands reads and parses all command templates, sorted by name.
func (c *Corpus) loadCommands(fsys fs.FS) error {
	const dir = "templates/commands"

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return &LoadError{Path: dir, Reason: "missing bundled directory"}
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		data, err := fs.ReadFile(fsys, dir+"/"+entry.Name())
		if err != nil {
			return &LoadError{Path: dir + "/" + entry.Name(), Reason: "unreadable: " + err.Error()}
		}

		cmd, err := parseCommand(strings.TrimSuffix(entry.Name(), ".md"), string(data))
		if err != nil {
			return err
		}
		c.commands = append(c.commands, cmd)
	}

	if len(c.commands) == 0 {
		return &LoadError{Path: dir, Reason: "no command templates found"}
	}

	sort.Slice(c.commands, func(i, j int) bool {
		return c.commands[i].Name < c.commands[j].Name
	})
	return nil
}

// parseCommand parses one command template. CRLF is normalized away so
// rendering is deterministic regardless of how the corpus was packaged.
func parseCommand(name, raw string) (Command, error) {
	raw = strings.ReplaceAll(raw, "\r", "")

	frontmatter, _ := SplitFrontmatter(raw)
	if frontmatter == "" {
		return Command{}, &LoadError{
			Path:   "templates/commands/" + name + ".md",
			Reason: "missing frontmatter",
		}
	}

	var fm commandFrontmatter
	if err := yaml.Unmarshal([]byte(frontmatter), &fm); err != nil {
		return Command{}, &LoadError{
			Path:   "templates/commands/" + name + ".md",
			Reason: "invalid frontmatter: " + err.Error(),
		}
	}
	if fm.Description == "" {
		return Command{}, &LoadError{
			Path:   "templates/commands/" + name + ".md",
			Reason: "missing description",
		}
	}

	return Command{
		Name:         name,
		Description:  fm.Description,
		Scripts:      toFlavorMap(fm.Scripts),
		AgentScripts: toFlavorMap(fm.AgentScripts),
		Raw:          raw,
	}, nil
}

// toFlavorMap converts a raw string-keyed map to flavor keys.
func toFlavorMap(m map[string]string) map[Flavor]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[Flavor]string, len(m))
	for k, v := range m {
		out[Flavor(k)] = v
	}
	return out
}

// SplitFrontmatter separates YAML frontmatter from content.
// Frontmatter is delimited by --- at the start and end.
func SplitFrontmatter(raw string) (frontmatter, content string) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "---") {
		return "", raw
	}

	rest := trimmed[3:] // skip opening ---
	before, after, ok := strings.Cut(rest, "\n---")
	if !ok {
		return "", raw
	}

	return strings.TrimSpace(before), strings.TrimLeft(after, "\n")
}
