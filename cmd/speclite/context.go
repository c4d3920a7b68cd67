package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/speclite/speclite/internal/feature"
	"github.com/speclite/speclite/internal/git"
	"github.com/speclite/speclite/internal/output"
)

// contextFlags holds the command-line flags for the context command.
type contextFlags struct {
	require string
}

// newContextCmd creates the context command.
func newContextCmd() *cobra.Command {
	flags := &contextFlags{}

	cmd := &cobra.Command{
		Use:   "context",
		Short: "Resolve the active feature directory and artifact paths",
		Long: `Resolve the active feature: which changes/NNN-slug directory the
current work belongs to, and the absolute paths of its artifacts.

The feature is taken from the current git branch when it matches the
NNN-slug pattern, otherwise from the ` + feature.EnvOverride + ` environment
variable. Generated helper scripts call this as their first action and
consume the --json output as their sole input.

Examples:
  speclite context --json
  speclite context --require spec --json
  speclite context --require spec,plan,tasks`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runContext(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.require, "require", "", "Comma-separated artifacts that must exist (spec,plan,tasks)")

	return cmd
}

// runContext executes the context command from the current directory.
func runContext(cmd *cobra.Command, flags *contextFlags) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd)).
		WithStderr(cmd.ErrOrStderr())

	root, err := os.Getwd()
	if err != nil {
		sysErr := output.NewSystemErrorWithCause("determining working directory", err)
		printer.Error(sysErr)
		return sysErr
	}
	// Scripts may run from a subdirectory; anchor at the repo root when
	// there is one.
	if repoRoot, rootErr := git.RepoRoot(root); rootErr == nil {
		root = repoRoot
	}

	branches := feature.BranchReaderFunc(git.CurrentBranch)
	ctx, err := feature.Resolve(root, os.Getenv(feature.EnvOverride), branches)
	if err != nil {
		userErr := output.NewUserError(err.Error())
		printer.Error(userErr)
		return userErr
	}

	if flags.require != "" {
		var names []string
		for _, name := range strings.Split(flags.require, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
		if err := ctx.RequireArtifacts(names...); err != nil {
			// Missing artifacts and bad artifact names are both
			// operator-facing conditions, not system failures.
			userErr := output.NewUserError(err.Error())
			printer.Error(userErr)
			return userErr
		}
	}

	if printer.IsJSON() {
		return printer.WriteJSON(ctx)
	}

	printer.KeyValue("Feature", ctx.ID)
	printer.KeyValue("Directory", ctx.Dir)
	printer.KeyValue("Spec", describeArtifact(ctx.SpecFile))
	printer.KeyValue("Plan", describeArtifact(ctx.PlanFile))
	printer.KeyValue("Tasks", describeArtifact(ctx.TasksFile))
	return nil
}

// describeArtifact annotates an artifact path with its presence.
func describeArtifact(path string) string {
	if _, err := os.Stat(path); err != nil {
		return fmt.Sprintf("%s (missing)", path)
	}
	return path
}
