package corpus

import (
	"io/fs"

	"gopkg.in/yaml.v3"
)

// manifestPath is the embedded agent profile manifest.
const manifestPath = "templates/agents.yaml"

// FrontmatterStyle is the closed set of frontmatter conventions agents use
// for their command files.
type FrontmatterStyle string

const (
	// FrontmatterMarkdown keeps a stripped YAML frontmatter on a .md file.
	FrontmatterMarkdown FrontmatterStyle = "markdown"
	// FrontmatterTOML emits a TOML file with description and prompt keys.
	FrontmatterTOML FrontmatterStyle = "toml"
	// FrontmatterAgent is the Copilot agent-file convention (.agent.md
	// plus a pointer .prompt.md companion).
	FrontmatterAgent FrontmatterStyle = "agent"
)

// Profile describes how one AI agent expects command files to be laid out
// and annotated. Profiles are data, loaded from the packaged manifest.
type Profile struct {
	ID               string           `yaml:"id"`
	Name             string           `yaml:"name"`
	Folder           string           `yaml:"folder"`
	CommandDir       string           `yaml:"command_dir"`
	Extension        string           `yaml:"extension"`
	Frontmatter      FrontmatterStyle `yaml:"frontmatter"`
	Args             string           `yaml:"args"`
	RequiresCLI      bool             `yaml:"requires_cli"`
	Tool             string           `yaml:"tool"`
	InstallURL       string           `yaml:"install_url"`
	CompanionPrompts bool             `yaml:"companion_prompts"`
	PromptDir        string           `yaml:"prompt_dir"`
}

// validate sanity checks a single profile.
func (p Profile) validate() error {
	switch {
	case p.ID == "":
		return &LoadError{Path: manifestPath, Reason: "profile with empty id"}
	case p.CommandDir == "":
		return &LoadError{Path: manifestPath, Reason: p.ID + ": missing command_dir"}
	case p.Args == "":
		return &LoadError{Path: manifestPath, Reason: p.ID + ": missing args placeholder"}
	case p.CompanionPrompts && p.PromptDir == "":
		return &LoadError{Path: manifestPath, Reason: p.ID + ": companion_prompts without prompt_dir"}
	}

	switch p.Frontmatter {
	case FrontmatterMarkdown, FrontmatterTOML, FrontmatterAgent:
		return nil
	default:
		return &LoadError{
			Path:   manifestPath,
			Reason: p.ID + ": unknown frontmatter style " + string(p.Frontmatter),
		}
	}
}

// agentManifest is the top-level structure of agents.yaml.
type agentManifest struct {
	Agents []Profile `yaml:"agents"`
}

// loadProfiles parses the agent manifest.
func (c *Corpus) loadProfiles(fsys fs.FS) error {
	data, err := fs.ReadFile(fsys, manifestPath)
	if err != nil {
		return &LoadError{Path: manifestPath, Reason: "missing bundled manifest"}
	}

	var manifest agentManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return &LoadError{Path: manifestPath, Reason: "invalid manifest: " + err.Error()}
	}

	c.profiles = manifest.Agents
	return nil
}
