// Package main provides the entry point for the speclite CLI.
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/speclite/speclite/internal/merge"
	"github.com/speclite/speclite/internal/output"
)

// initFlags holds the command-line flags for the init command.
type initFlags struct {
	here             bool
	force            bool
	ai               string
	script           string
	noGit            bool
	ignoreAgentTools bool
	dryRun           bool
}

// newInitCmd creates the init command.
func newInitCmd() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init [project-name]",
		Short: "Provision a new SpecLite project",
		Long: `Provision a new SpecLite project from the bundled templates.

This command will:
  - Check that the selected agent CLIs are installed (git is optional)
  - Generate slash commands for each selected AI assistant
  - Write helper scripts and templates under .speclite/
  - Initialize a fresh git repository (unless --no-git or already a repo)

Examples:
  speclite init my-project --ai claude
  speclite init my-project --ai claude,codex --script sh
  speclite init . --ai claude         # Provision the current directory
  speclite init --here --ai gemini    # Alternative syntax for current directory
  speclite init --here --force        # Skip the non-empty directory confirmation
  speclite init my-project --dry-run  # Show the plan without writing`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, args, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.here, "here", false, "Provision the current directory instead of a new one")
	cmd.Flags().BoolVar(&flags.force, "force", false, "Skip the confirmation when the current directory is not empty")
	cmd.Flags().StringVar(&flags.ai, "ai", "", "Comma-separated AI assistants (claude,gemini,copilot,cursor-agent,codex)")
	cmd.Flags().StringVar(&flags.script, "script", "", "Script flavor for helper scripts: sh or ps")
	cmd.Flags().BoolVar(&flags.noGit, "no-git", false, "Skip git repository initialization")
	cmd.Flags().BoolVar(&flags.ignoreAgentTools, "ignore-agent-tools", false, "Skip the agent CLI availability check")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Show the provisioning plan without writing")

	return cmd
}

// runInit executes the init command.
func runInit(cmd *cobra.Command, args []string, flags *initFlags) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd)).
		WithStderr(cmd.ErrOrStderr())

	target, created, err := resolveInitTarget(cmd, printer, args, flags)
	if err != nil || target == "" {
		// target == "" with nil error means the user declined the merge.
		return err
	}

	opts, err := buildProvisionOptions(cmd, printer, flags, target, merge.ModeInit)
	if err != nil {
		cleanupCreatedDir(created)
		printer.Error(err)
		return err
	}

	result, err := provision(opts)
	if err != nil {
		cleanupCreatedDir(created)
		printer.Error(err)
		return err
	}

	return outputInitResult(printer, opts, result, flags)
}

// resolveInitTarget validates the name/--here combination and returns the
// target directory. The second return is the directory this call created,
// for cleanup if provisioning later fails ("" when nothing was created).
// A ("", nil) return means the user declined the non-empty-dir merge.
func resolveInitTarget(cmd *cobra.Command, printer *output.Printer, args []string, flags *initFlags) (string, string, error) {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	if name == "." {
		flags.here = true
		name = ""
	}

	if flags.here && name != "" {
		err := output.NewUserError("cannot specify both a project name and --here")
		printer.Error(err)
		return "", "", err
	}
	if !flags.here && name == "" {
		err := output.NewUserError("specify a project name, '.', or --here for the current directory")
		printer.Error(err)
		return "", "", err
	}

	if flags.here {
		cwd, err := os.Getwd()
		if err != nil {
			sysErr := output.NewSystemErrorWithCause("determining working directory", err)
			printer.Error(sysErr)
			return "", "", sysErr
		}
		ok, err := confirmMerge(cmd, printer, cwd, flags)
		if err != nil {
			return "", "", err
		}
		if !ok {
			printer.Println("Operation cancelled")
			return "", "", nil
		}
		return cwd, "", nil
	}

	target, err := filepath.Abs(name)
	if err != nil {
		sysErr := output.NewSystemErrorWithCause("resolving project path", err)
		printer.Error(sysErr)
		return "", "", sysErr
	}
	if _, statErr := os.Stat(target); statErr == nil {
		userErr := output.NewUserError(fmt.Sprintf(
			"directory %q already exists: choose a different project name or remove it", name))
		printer.Error(userErr)
		return "", "", userErr
	}
	// A dry run only reports the plan; the project directory is not created.
	if flags.dryRun {
		return target, "", nil
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		sysErr := output.NewSystemErrorWithCause("creating project directory", err)
		printer.Error(sysErr)
		return "", "", sysErr
	}
	return target, target, nil
}

// confirmMerge gates provisioning into a non-empty current directory.
// Nothing is written before an affirmative answer; --force and --dry-run
// skip the prompt.
func confirmMerge(cmd *cobra.Command, printer *output.Printer, dir string, flags *initFlags) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		sysErr := output.NewSystemErrorWithCause("reading current directory", err)
		printer.Error(sysErr)
		return false, sysErr
	}
	if len(entries) == 0 || flags.dryRun {
		return true, nil
	}

	printer.Warn("current directory is not empty (%d items)", len(entries))
	printer.Warn("template files will be merged with existing content and may overwrite existing files")

	if flags.force {
		return true, nil
	}
	if isJSONMode(cmd) {
		err := output.NewUserError("refusing to merge into a non-empty directory without --force in JSON mode")
		printer.Error(err)
		return false, err
	}

	printer.Print("Do you want to continue? [y/N] ")
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// cleanupCreatedDir removes a directory init created before provisioning
// failed, so a failed run does not leave an empty husk behind.
func cleanupCreatedDir(dir string) {
	if dir != "" {
		_ = os.RemoveAll(dir)
	}
}
