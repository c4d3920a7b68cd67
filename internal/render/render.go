// Package render expands command templates into concrete per-agent command
// files. Rendering is pure: the same (command, profile, flavor) input always
// yields byte-identical output, and no I/O happens here.
package render

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/speclite/speclite/internal/corpus"
)

// commandPrefix namespaces generated command files so they never collide
// with a user's own commands.
const commandPrefix = "sl."

// File is one rendered output file, addressed relative to the project root.
type File struct {
	TargetPath string
	Content    string
	Mode       os.FileMode
}

// UnsupportedError indicates a profile requested a rendering the corpus
// entry does not support. It aborts the whole provisioning run at planning
// time, before any write.
type UnsupportedError struct {
	Command string
	Agent   string
	Reason  string
}

// Error implements the error interface.
func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("cannot render %s for %s: %s", e.Command, e.Agent, e.Reason)
}

// Command renders one command template for one agent profile and shell
// flavor.
func Command(cmd corpus.Command, profile corpus.Profile, flavor corpus.Flavor) (File, error) {
	script, ok := cmd.Scripts[flavor]
	if !ok || strings.TrimSpace(script) == "" {
		return File{}, &UnsupportedError{
			Command: cmd.Name,
			Agent:   profile.ID,
			Reason:  fmt.Sprintf("no %s script variant", flavor),
		}
	}

	body := cmd.Raw
	body = strings.ReplaceAll(body, "{SCRIPT}", script)
	if agentScript, ok := cmd.AgentScripts[flavor]; ok {
		body = strings.ReplaceAll(body, "{AGENT_SCRIPT}", agentScript)
	}
	body = stripFrontmatterSections(body)
	body = strings.ReplaceAll(body, "{ARGS}", profile.Args)
	body = strings.ReplaceAll(body, "__AGENT__", profile.ID)
	body = corpus.RewriteProjectPaths(body)

	var content string
	switch profile.Frontmatter {
	case corpus.FrontmatterTOML:
		content = renderTOML(cmd.Description, body)
	case corpus.FrontmatterMarkdown, corpus.FrontmatterAgent:
		content = strings.TrimRight(body, "\n") + "\n"
	default:
		return File{}, &UnsupportedError{
			Command: cmd.Name,
			Agent:   profile.ID,
			Reason:  "unknown frontmatter style " + string(profile.Frontmatter),
		}
	}

	return File{
		TargetPath: path.Join(profile.CommandDir, commandPrefix+cmd.Name+"."+profile.Extension),
		Content:    content,
		Mode:       0o644,
	}, nil
}

// renderTOML wraps the command body in the TOML prompt-file convention.
// Backslashes are escaped so the triple-quoted string survives TOML parsing.
func renderTOML(description, body string) string {
	escaped := strings.ReplaceAll(body, `\`, `\\`)
	escaped = strings.TrimRight(escaped, "\n")
	return fmt.Sprintf("description = %q\n\nprompt = \"\"\"\n%s\n\"\"\"\n", description, escaped)
}

// Companion returns the pointer prompt file some agents pair with each
// command file. Returns false when the profile does not use companions.
func Companion(cmd corpus.Command, profile corpus.Profile) (File, bool) {
	if !profile.CompanionPrompts {
		return File{}, false
	}
	base := commandPrefix + cmd.Name
	return File{
		TargetPath: path.Join(profile.PromptDir, base+".prompt.md"),
		Content:    fmt.Sprintf("---\nagent: %s\n---\n", base),
		Mode:       0o644,
	}, true
}

// Shared maps a shared corpus entry onto its output file. POSIX shell
// scripts are marked executable; everything else is a plain file.
func Shared(entry corpus.Entry) File {
	mode := os.FileMode(0o644)
	if entry.Kind == corpus.KindScript && strings.HasSuffix(entry.LogicalPath, ".sh") {
		mode = 0o755
	}
	return File{
		TargetPath: entry.LogicalPath,
		Content:    entry.Content,
		Mode:       mode,
	}
}

// stripFrontmatterSections drops the scripts: and agent_scripts: blocks
// from the frontmatter, keeping the rest (description) intact. Agents see
// the substituted invocation lines, not the per-flavor table.
func stripFrontmatterSections(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	dashCount := 0
	inFrontmatter := false
	skipSection := false

	for _, line := range lines {
		if line == "---" {
			out = append(out, line)
			dashCount++
			inFrontmatter = dashCount == 1
			if dashCount >= 2 {
				inFrontmatter = false
			}
			continue
		}
		if inFrontmatter {
			if line == "scripts:" || line == "agent_scripts:" {
				skipSection = true
				continue
			}
			if skipSection && lineStartsSection(line) {
				skipSection = false
			}
			if skipSection && lineIsIndented(line) {
				continue
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// lineStartsSection reports whether a frontmatter line begins a new
// top-level key.
func lineStartsSection(line string) bool {
	if line == "" {
		return false
	}
	c := line[0]
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// lineIsIndented reports whether a line belongs to the current section.
func lineIsIndented(line string) bool {
	return strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
}
