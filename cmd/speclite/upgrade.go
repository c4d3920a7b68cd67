package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/speclite/speclite/internal/merge"
	"github.com/speclite/speclite/internal/output"
)

// newUpgradeCmd creates the upgrade command.
func newUpgradeCmd() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Refresh a provisioned project to the current templates",
		Long: `Refresh a previously provisioned project to the current templates.

Command files, helper scripts, and shared templates are regenerated and
overwritten. Your work is never touched: the constitution (once present)
and everything under changes/ survive every upgrade byte-for-byte.

When --ai is omitted, the agents are detected from the folders already
present in the project.

Examples:
  speclite upgrade                   # Re-provision for the detected agents
  speclite upgrade --ai claude,codex # Re-provision for an explicit set
  speclite upgrade --dry-run         # Show what would change`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUpgrade(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.ai, "ai", "", "Comma-separated AI assistants (defaults to detected)")
	cmd.Flags().StringVar(&flags.script, "script", "", "Script flavor for helper scripts: sh or ps")
	cmd.Flags().BoolVar(&flags.ignoreAgentTools, "ignore-agent-tools", false, "Skip the agent CLI availability check")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Show the upgrade plan without writing")

	return cmd
}

// runUpgrade executes the upgrade command in the current directory.
func runUpgrade(cmd *cobra.Command, flags *initFlags) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd)).
		WithStderr(cmd.ErrOrStderr())

	root, err := os.Getwd()
	if err != nil {
		sysErr := output.NewSystemErrorWithCause("determining working directory", err)
		printer.Error(sysErr)
		return sysErr
	}

	if info, statErr := os.Stat(filepath.Join(root, ".speclite")); statErr != nil || !info.IsDir() {
		userErr := output.NewUserError(
			"no .speclite/ directory here: this is not a provisioned project (run 'speclite init' first)")
		printer.Error(userErr)
		return userErr
	}

	// Upgrades never prompt and never touch git.
	flags.here = true
	flags.noGit = true

	opts, err := buildUpgradeOptions(cmd, printer, flags, root)
	if err != nil {
		printer.Error(err)
		return err
	}

	result, err := provision(opts)
	if err != nil {
		printer.Error(err)
		return err
	}

	return outputUpgradeResult(printer, opts, result, flags)
}

// buildUpgradeOptions resolves options for an upgrade, detecting the agent
// set from existing folders when --ai is absent.
func buildUpgradeOptions(cmd *cobra.Command, printer *output.Printer, flags *initFlags, root string) (*provisionOptions, error) {
	if flags.ai == "" {
		c, err := loadCorpusForCLI()
		if err != nil {
			return nil, err
		}
		detected := detectAgents(root, c)
		if len(detected) == 0 {
			return nil, output.NewUserError(
				"no agent folders detected: pass --ai to choose which agents to provision")
		}
		flags.ai = strings.Join(detected, ",")
		printer.Warn("detected agents: %s", flags.ai)
	}

	return buildProvisionOptions(cmd, printer, flags, root, merge.ModeUpgrade)
}

// outputUpgradeResult renders the outcome of an upgrade run.
func outputUpgradeResult(printer *output.Printer, opts *provisionOptions, result *provisionResult, flags *initFlags) error {
	if printer.IsJSON() {
		return outputProvisionJSON(printer, opts, result, flags.dryRun)
	}

	printSteps(printer, result.steps)

	if flags.dryRun {
		printPlan(printer, result.plan)
		return nil
	}

	printFailures(printer, result.report)

	printer.Println()
	printer.Println(printer.Styles().Success.Render("Project upgraded."))
	if result.report.Skipped > 0 {
		printer.Println(printer.Styles().Dim.Render(fmt.Sprintf(
			"%d protected files left untouched.", result.report.Skipped)))
	}

	if result.partial() {
		return output.NewPartialError(fmt.Sprintf(
			"%d of %d files could not be written", result.report.Failed, len(result.plan)))
	}
	return nil
}
