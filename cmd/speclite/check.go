package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/speclite/speclite/internal/git"
	"github.com/speclite/speclite/internal/output"
)

// toolStatus is the availability report for one tool.
type toolStatus struct {
	Tool       string `json:"tool"`
	Name       string `json:"name"`
	Available  bool   `json:"available"`
	Optional   bool   `json:"optional"`
	InstallURL string `json:"install_url,omitempty"`
}

// newCheckCmd creates the check command.
func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that git and the agent CLIs are installed",
		Long: `Check which of the tools speclite integrates with are installed:
git (optional, used for repository initialization and feature branches)
and the CLI of every agent that ships one.

Examples:
  speclite check
  speclite check --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd)
		},
	}
}

// runCheck executes the check command.
func runCheck(cmd *cobra.Command) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd)).
		WithStderr(cmd.ErrOrStderr())

	c, err := loadCorpusForCLI()
	if err != nil {
		printer.Error(err)
		return err
	}

	statuses := []toolStatus{{
		Tool:      "git",
		Name:      "Git",
		Available: git.Available(),
		Optional:  true,
	}}
	for _, profile := range c.Profiles() {
		if !profile.RequiresCLI {
			continue
		}
		statuses = append(statuses, toolStatus{
			Tool:       profile.Tool,
			Name:       profile.Name,
			Available:  toolAvailable(profile.Tool),
			InstallURL: profile.InstallURL,
		})
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"status": "ok",
			"tools":  statuses,
		})
	}

	styles := printer.Styles()
	printer.Section("Installed tools")
	for _, s := range statuses {
		marker := styles.Success.Render("✓")
		detail := "available"
		if !s.Available {
			marker = styles.Error.Render("✗")
			detail = "not found"
			if s.Optional {
				marker = styles.Warning.Render("○")
				detail = "not found (optional)"
			}
			if s.InstallURL != "" {
				detail += " — " + s.InstallURL
			}
		}
		printer.Println(fmt.Sprintf("%s %-14s %s", marker, s.Tool, styles.Dim.Render(detail)))
	}

	printer.Println()
	printer.Println(styles.Dim.Render("speclite is ready to use. IDE-based agents (copilot, cursor-agent) need no CLI."))
	return nil
}
