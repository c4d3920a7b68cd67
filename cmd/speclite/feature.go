package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/speclite/speclite/internal/feature"
	"github.com/speclite/speclite/internal/git"
	"github.com/speclite/speclite/internal/output"
)

// featureFlags holds the command-line flags for the feature command.
type featureFlags struct {
	noBranch bool
}

// newFeatureCmd creates the feature command.
func newFeatureCmd() *cobra.Command {
	flags := &featureFlags{}

	cmd := &cobra.Command{
		Use:   "feature <description>",
		Short: "Start a new feature: mint its directory and branch",
		Long: `Start a new feature. Mints the next NNN-slug directory under
changes/, seeds it with the spec template, and creates a matching git
branch when run inside a repository.

The minted ID is strictly increasing: the highest existing ordinal plus
one. Generated helper scripts call this from /sl.specify.

Examples:
  speclite feature "add login"        # creates changes/001-add-login
  speclite feature retry-logic --json
  speclite feature "add login" --no-branch`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeature(cmd, args, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.noBranch, "no-branch", false, "Skip creating a git branch")

	return cmd
}

// runFeature executes the feature command from the current directory.
func runFeature(cmd *cobra.Command, args []string, flags *featureFlags) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd)).
		WithStderr(cmd.ErrOrStderr())

	root, err := os.Getwd()
	if err != nil {
		sysErr := output.NewSystemErrorWithCause("determining working directory", err)
		printer.Error(sysErr)
		return sysErr
	}
	if repoRoot, rootErr := git.RepoRoot(root); rootErr == nil {
		root = repoRoot
	}

	description := ""
	for i, arg := range args {
		if i > 0 {
			description += " "
		}
		description += arg
	}

	ctx, err := feature.Create(root, description)
	if err != nil {
		userErr := output.NewUserError(err.Error())
		printer.Error(userErr)
		return userErr
	}

	if err := seedSpec(ctx); err != nil {
		printer.Error(err)
		return err
	}

	branchStatus := "skipped"
	if !flags.noBranch && git.IsRepo(root) {
		if err := git.CreateBranch(root, ctx.ID); err != nil {
			printer.Warn("could not create branch %s: %v", ctx.ID, err)
			branchStatus = "failed"
		} else {
			branchStatus = "created"
		}
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"FEATURE_ID":  ctx.ID,
			"FEATURE_DIR": ctx.Dir,
			"SPEC_FILE":   ctx.SpecFile,
			"PLAN_FILE":   ctx.PlanFile,
			"TASKS_FILE":  ctx.TasksFile,
			"branch":      branchStatus,
		})
	}

	printer.KeyValue("Feature", ctx.ID)
	printer.KeyValue("Directory", ctx.Dir)
	printer.KeyValue("Spec", ctx.SpecFile)
	if branchStatus == "created" {
		printer.KeyValue("Branch", ctx.ID)
	}
	return nil
}

// seedSpec writes the spec template into a freshly minted feature
// directory. An existing spec is never touched.
func seedSpec(ctx *feature.Context) error {
	if _, err := os.Stat(ctx.SpecFile); err == nil {
		return nil
	}

	c, err := loadCorpusForCLI()
	if err != nil {
		return err
	}

	for _, entry := range c.Shared() {
		if entry.LogicalPath == ".speclite/templates/spec-template.md" {
			if err := os.WriteFile(ctx.SpecFile, []byte(entry.Content), 0o644); err != nil {
				return output.NewSystemErrorWithCause("seeding spec template", err)
			}
			return nil
		}
	}
	return output.NewSystemError(fmt.Sprintf("bundled spec template missing for %s", ctx.ID))
}
