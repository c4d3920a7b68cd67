package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/speclite/speclite/internal/corpus"
	"github.com/speclite/speclite/internal/git"
	"github.com/speclite/speclite/internal/merge"
	"github.com/speclite/speclite/internal/output"
	"github.com/speclite/speclite/internal/picker"
	"github.com/speclite/speclite/internal/render"
)

// stepResult tracks the result of a single provisioning step.
type stepResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "skipped", "failed", "dry_run"
	Message string `json:"message,omitempty"`
}

// provisionOptions is everything the provisioning pipeline needs, resolved
// up front so no step has to consult flags or prompt mid-run.
type provisionOptions struct {
	printer *output.Printer
	corpus  *corpus.Corpus
	root    string
	mode    merge.Mode
	agents  []string
	flavor  corpus.Flavor
	dryRun  bool
	noGit   bool
}

// provisionResult is the outcome of one provisioning run.
type provisionResult struct {
	steps  []stepResult
	plan   []merge.Planned
	report merge.Report
}

// loadCorpusForCLI loads the embedded corpus, mapping a failure to the
// system exit code: a broken bundle means a broken build, never retried.
func loadCorpusForCLI() (*corpus.Corpus, error) {
	c, err := corpus.Load()
	if err != nil {
		return nil, output.NewSystemErrorWithCause("loading bundled templates", err)
	}
	return c, nil
}

// buildProvisionOptions resolves agents, script flavor, and tool
// availability for a run rooted at root. It loads the corpus and fails
// fast on anything that would make a partial write possible.
func buildProvisionOptions(cmd *cobra.Command, printer *output.Printer, flags *initFlags, root string, mode merge.Mode) (*provisionOptions, error) {
	c, err := loadCorpusForCLI()
	if err != nil {
		return nil, err
	}

	agents, err := resolveAgents(cmd, c, flags.ai)
	if err != nil {
		return nil, err
	}

	if !flags.ignoreAgentTools {
		if err := checkAgentTools(c, agents); err != nil {
			return nil, err
		}
	}

	flavor, err := parseScriptFlavor(flags.script)
	if err != nil {
		return nil, err
	}

	return &provisionOptions{
		printer: printer,
		corpus:  c,
		root:    root,
		mode:    mode,
		agents:  agents,
		flavor:  flavor,
		dryRun:  flags.dryRun,
		noGit:   flags.noGit,
	}, nil
}

// resolveAgents parses --ai, or falls back to the interactive picker when
// running on a terminal. Non-interactive runs must pass --ai.
func resolveAgents(cmd *cobra.Command, c *corpus.Corpus, aiFlag string) ([]string, error) {
	if aiFlag != "" {
		var agents []string
		seen := make(map[string]bool)
		for _, id := range strings.Split(aiFlag, ",") {
			id = strings.TrimSpace(id)
			if id == "" || seen[id] {
				continue
			}
			if _, ok := c.Profile(id); !ok {
				return nil, output.NewUserError(fmt.Sprintf(
					"invalid AI assistant %q: choose from %s", id, strings.Join(c.AgentIDs(), ", ")))
			}
			seen[id] = true
			agents = append(agents, id)
		}
		if len(agents) == 0 {
			return nil, output.NewUserError("--ai must include at least one assistant (comma-separated)")
		}
		return agents, nil
	}

	if !output.IsReaderTTY(cmd.InOrStdin()) || isJSONMode(cmd) {
		return nil, output.NewUserError("--ai is required when not running interactively (comma-separated list)")
	}

	agents, err := picker.Run(c.Profiles())
	if err != nil {
		return nil, output.NewUserError(err.Error())
	}
	return agents, nil
}

// parseScriptFlavor maps --script to a corpus flavor. The default follows
// the host platform.
func parseScriptFlavor(script string) (corpus.Flavor, error) {
	switch script {
	case "sh":
		return corpus.FlavorSh, nil
	case "ps":
		return corpus.FlavorPS, nil
	case "":
		if runtime.GOOS == "windows" {
			return corpus.FlavorPS, nil
		}
		return corpus.FlavorSh, nil
	default:
		return "", output.NewUserError(fmt.Sprintf("invalid script flavor %q: choose sh or ps", script))
	}
}

// checkAgentTools verifies the CLI of every selected agent that requires
// one is installed, and names each missing tool with its install URL.
func checkAgentTools(c *corpus.Corpus, agents []string) error {
	var missing []string
	for _, id := range agents {
		profile, _ := c.Profile(id)
		if !profile.RequiresCLI {
			continue
		}
		if !toolAvailable(profile.Tool) {
			missing = append(missing, fmt.Sprintf("%s (%s): %s", id, profile.Name, profile.InstallURL))
		}
	}
	if len(missing) > 0 {
		return output.NewUserError(
			"the following required AI agent tools were not found:\n  " +
				strings.Join(missing, "\n  ") +
				"\nTip: use --ignore-agent-tools to skip this check")
	}
	return nil
}

// toolAvailable reports whether a CLI tool can be found. The claude CLI
// gets a special case: `claude migrate-installer` removes the executable
// from PATH and leaves an alias at ~/.claude/local/claude instead.
func toolAvailable(tool string) bool {
	if tool == "claude" {
		if home, err := os.UserHomeDir(); err == nil {
			local := filepath.Join(home, ".claude", "local", "claude")
			if info, err := os.Stat(local); err == nil && !info.IsDir() {
				return true
			}
		}
	}
	_, err := exec.LookPath(tool)
	return err == nil
}

// provision runs the pipeline: render everything, plan against current
// directory state, then (unless dry-run) execute the plan and initialize
// git. Render and plan errors abort before any write.
func provision(opts *provisionOptions) (*provisionResult, error) {
	result := &provisionResult{}

	files, err := render.All(opts.corpus, opts.agents, opts.flavor)
	if err != nil {
		return nil, output.NewSystemErrorWithCause("rendering templates", err)
	}
	result.step("render", "ok", fmt.Sprintf("%d files for %s", len(files), strings.Join(opts.agents, ", ")))

	plan, err := merge.Plan(files, opts.mode, merge.DefaultRules(), merge.ExistsOnDisk(opts.root))
	if err != nil {
		return nil, output.NewSystemErrorWithCause("planning", err)
	}
	result.plan = plan
	result.step("plan", "ok", planSummary(plan))

	if opts.dryRun {
		result.step("apply", "dry_run", "no files written")
		result.step("git", "dry_run", "")
		return result, nil
	}

	result.report = merge.Execute(opts.root, plan)
	if result.report.Partial() {
		result.step("apply", "failed", fmt.Sprintf("%d of %d writes failed",
			result.report.Failed, len(plan)))
	} else {
		result.step("apply", "ok", reportSummary(result.report))
	}

	result.steps = append(result.steps, gitStep(opts))
	return result, nil
}

// gitStep initializes a fresh repository with an initial commit, unless
// the run opted out, the target is already a repo, or git is unavailable.
func gitStep(opts *provisionOptions) stepResult {
	switch {
	case opts.noGit:
		return stepResult{Name: "git", Status: "skipped", Message: "--no-git flag"}
	case opts.mode == merge.ModeUpgrade:
		return stepResult{Name: "git", Status: "skipped", Message: "upgrade never re-initializes"}
	case !git.Available():
		return stepResult{Name: "git", Status: "skipped", Message: "git not available"}
	case git.IsRepo(opts.root):
		return stepResult{Name: "git", Status: "skipped", Message: "existing repo detected"}
	}

	if err := git.Init(opts.root); err != nil {
		return stepResult{Name: "git", Status: "failed", Message: err.Error()}
	}
	return stepResult{Name: "git", Status: "ok", Message: "initialized"}
}

// step appends a step result.
func (r *provisionResult) step(name, status, message string) {
	r.steps = append(r.steps, stepResult{Name: name, Status: status, Message: message})
}

// partial reports whether any write failed.
func (r *provisionResult) partial() bool {
	return r.report.Partial()
}

// planSummary condenses a plan into "N create, N overwrite, N skip".
func planSummary(plan []merge.Planned) string {
	counts := make(map[merge.Action]int, 3)
	for _, p := range plan {
		counts[p.Action]++
	}
	parts := make([]string, 0, 3)
	for _, action := range []merge.Action{merge.Create, merge.Overwrite, merge.SkipProtected} {
		if counts[action] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[action], action))
		}
	}
	if len(parts) == 0 {
		return "nothing to do"
	}
	return strings.Join(parts, ", ")
}

// reportSummary condenses an execution report.
func reportSummary(report merge.Report) string {
	return fmt.Sprintf("%d created, %d overwritten, %d skipped",
		report.Created, report.Overwritten, report.Skipped)
}

// detectAgents infers which agents a project was provisioned for by the
// presence of their folders. Used by upgrade when --ai is absent.
func detectAgents(root string, c *corpus.Corpus) []string {
	var agents []string
	for _, profile := range c.Profiles() {
		dir := filepath.Join(root, filepath.FromSlash(strings.TrimSuffix(profile.CommandDir, "/")))
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			agents = append(agents, profile.ID)
		}
	}
	sort.Strings(agents)
	return agents
}
