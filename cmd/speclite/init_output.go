package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/speclite/speclite/internal/merge"
	"github.com/speclite/speclite/internal/output"
)

// outputInitResult renders the outcome of an init run and maps a partial
// write to the partial exit code so callers can tell a clean run apart.
func outputInitResult(printer *output.Printer, opts *provisionOptions, result *provisionResult, flags *initFlags) error {
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
	printer.Println(printer.Styles().Success.Render("Project ready."))

	printSecurityNotice(printer, opts)
	printNextSteps(printer, opts, flags.here)

	if result.partial() {
		return output.NewPartialError(fmt.Sprintf(
			"%d of %d files could not be written", result.report.Failed, len(result.plan)))
	}
	return nil
}

// outputProvisionJSON emits the structured form shared by init and upgrade.
func outputProvisionJSON(printer *output.Printer, opts *provisionOptions, result *provisionResult, dryRun bool) error {
	status := "ok"
	switch {
	case dryRun:
		status = "dry_run"
	case result.partial():
		status = "partial"
	}

	payload := map[string]any{
		"status":  status,
		"project": filepath.Base(opts.root),
		"path":    opts.root,
		"agents":  opts.agents,
		"script":  string(opts.flavor),
		"steps":   result.steps,
	}
	if dryRun {
		payload["plan"] = planPaths(result.plan)
	} else {
		payload["report"] = result.report
	}

	if err := printer.Success(payload); err != nil {
		return err
	}
	if result.partial() {
		return output.NewPartialError(fmt.Sprintf(
			"%d of %d files could not be written", result.report.Failed, len(result.plan)))
	}
	return nil
}

// planPaths flattens a plan for JSON output.
func planPaths(plan []merge.Planned) []map[string]string {
	out := make([]map[string]string, 0, len(plan))
	for _, p := range plan {
		out = append(out, map[string]string{
			"path":   p.File.TargetPath,
			"action": string(p.Action),
		})
	}
	return out
}

// printSteps renders one status line per provisioning step.
func printSteps(printer *output.Printer, steps []stepResult) {
	styles := printer.Styles()
	printer.Println()
	for _, step := range steps {
		var marker string
		switch step.Status {
		case "ok":
			marker = styles.Success.Render("✓")
		case "skipped", "dry_run":
			marker = styles.Dim.Render("○")
		case "failed":
			marker = styles.Error.Render("✗")
		}
		line := fmt.Sprintf("%s %s", marker, step.Name)
		if step.Message != "" {
			line += " " + styles.Dim.Render("("+step.Message+")")
		}
		printer.Println(line)
	}
}

// printPlan lists every planned path with its action, for --dry-run.
func printPlan(printer *output.Printer, plan []merge.Planned) {
	styles := printer.Styles()
	printer.Section("Provisioning plan")
	for _, p := range plan {
		var action string
		switch p.Action {
		case merge.Create:
			action = styles.Success.Render("create        ")
		case merge.Overwrite:
			action = styles.Warning.Render("overwrite     ")
		case merge.SkipProtected:
			action = styles.Dim.Render("skip-protected")
		}
		printer.Println(fmt.Sprintf("  %s %s", action, p.File.TargetPath))
	}
}

// printFailures lists per-path write failures so a partial run is auditable.
func printFailures(printer *output.Printer, report merge.Report) {
	if !report.Partial() {
		return
	}
	printer.Section("Failed writes")
	for _, r := range report.PerPath {
		if r.Error != "" {
			printer.Println(fmt.Sprintf("  %s: %s", r.Path, r.Error))
		}
	}
}

// printSecurityNotice warns that agent folders may hold credentials and
// should be considered for .gitignore.
func printSecurityNotice(printer *output.Printer, opts *provisionOptions) {
	var lines []string
	lines = append(lines,
		"Some agents may store credentials, auth tokens, or other private",
		"artifacts in their folder within your project.",
		"")
	for _, id := range opts.agents {
		if profile, ok := opts.corpus.Profile(id); ok {
			lines = append(lines, fmt.Sprintf("  • %s: %s", profile.Name, profile.Folder))
		}
	}
	lines = append(lines, "",
		"Consider adding these folders (or parts of them) to .gitignore to",
		"prevent accidental credential leakage.")

	printer.Println()
	printer.Box("Agent Folder Security", strings.Join(lines, "\n"))
}

// printNextSteps shows the post-provisioning checklist, including the
// CODEX_HOME setup when the codex agent was selected.
func printNextSteps(printer *output.Printer, opts *provisionOptions, here bool) {
	var lines []string
	n := 1

	if here {
		lines = append(lines, fmt.Sprintf("%d. You're already in the project directory!", n))
	} else {
		lines = append(lines, fmt.Sprintf("%d. Go to the project folder: cd %s", n, filepath.Base(opts.root)))
	}
	n++

	for _, id := range opts.agents {
		if id == "codex" {
			lines = append(lines, fmt.Sprintf(
				"%d. Set CODEX_HOME before running Codex: export CODEX_HOME=%s",
				n, filepath.Join(opts.root, ".codex")))
			n++
			break
		}
	}

	lines = append(lines,
		fmt.Sprintf("%d. Start using slash commands with your AI agent:", n),
		"   /sl.constitution - Establish project principles",
		"   /sl.specify      - Create baseline specification",
		"   /sl.plan         - Create implementation plan",
		"   /sl.tasks        - Generate actionable tasks",
		"   /sl.implement    - Execute implementation",
		"",
		"Optional: /sl.clarify before planning, /sl.analyze and",
		"/sl.checklist to validate artifacts before implementing.")

	printer.Println()
	printer.Box("Next Steps", strings.Join(lines, "\n"))
}
