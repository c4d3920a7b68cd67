package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/speclite/speclite/internal/corpus"
	"github.com/speclite/speclite/internal/feature"
)

func loadCorpus(t *testing.T) *corpus.Corpus {
	t.Helper()
	c, err := corpus.Load()
	if err != nil {
		t.Fatalf("loading corpus: %v", err)
	}
	return c
}

// --- Commands handler tests ---

func TestCommandsListsCorpus(t *testing.T) {
	handler := handleCommands(loadCorpus(t))

	_, out, err := handler(context.Background(), nil, CommandsInput{})
	if err != nil {
		t.Fatalf("commands: %v", err)
	}

	names := make(map[string]string, len(out.Commands))
	for _, cmd := range out.Commands {
		names[cmd.Name] = cmd.Description
	}
	for _, want := range []string{"specify", "plan", "tasks", "implement"} {
		if names[want] == "" {
			t.Errorf("command %q missing or undescribed", want)
		}
	}

	agents := make(map[string]bool, len(out.Agents))
	for _, id := range out.Agents {
		agents[id] = true
	}
	if !agents["claude"] || !agents["gemini"] {
		t.Errorf("agents = %v", out.Agents)
	}
}

// --- Plan handler tests ---

func TestPlanDryRun(t *testing.T) {
	root := t.TempDir()
	handler := handlePlan(root, loadCorpus(t))

	_, out, err := handler(context.Background(), nil, PlanInput{Agents: []string{"claude"}})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(out.Files) == 0 {
		t.Fatal("empty plan")
	}
	for _, f := range out.Files {
		if f.Action != "create" {
			t.Errorf("%s action = %s, want create in an empty directory", f.Path, f.Action)
		}
	}

	// Dry run: nothing may be written.
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("plan tool wrote files: %v", entries)
	}
}

func TestPlanRejectsBadInput(t *testing.T) {
	handler := handlePlan(t.TempDir(), loadCorpus(t))

	if _, _, err := handler(context.Background(), nil, PlanInput{}); err == nil {
		t.Error("empty agent list should fail")
	}
	if _, _, err := handler(context.Background(), nil, PlanInput{Agents: []string{"nope"}}); err == nil {
		t.Error("unknown agent should fail")
	}
	if _, _, err := handler(context.Background(), nil, PlanInput{Agents: []string{"claude"}, Script: "fish"}); err == nil {
		t.Error("unknown script flavor should fail")
	}
}

func TestPlanMarksProtectedPaths(t *testing.T) {
	root := t.TempDir()
	constitution := filepath.Join(root, ".speclite", "memory", "constitution.md")
	if err := os.MkdirAll(filepath.Dir(constitution), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(constitution, []byte("# Mine\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	handler := handlePlan(root, loadCorpus(t))
	_, out, err := handler(context.Background(), nil, PlanInput{Agents: []string{"claude"}})
	if err != nil {
		t.Fatal(err)
	}

	var found bool
	for _, f := range out.Files {
		if f.Path == ".speclite/memory/constitution.md" {
			found = true
			if f.Action != "skip-protected" {
				t.Errorf("constitution action = %s", f.Action)
			}
		}
	}
	if !found {
		t.Error("plan does not mention the constitution")
	}
}

// --- Context handler tests ---

func TestContextUsesOverride(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, feature.ChangesDir, "004-export")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "spec.md"), []byte("# Spec\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(feature.EnvOverride, "004-export")

	handler := handleContext(root)
	_, out, err := handler(context.Background(), nil, ContextInput{Require: []string{"spec"}})
	if err != nil {
		t.Fatalf("context: %v", err)
	}
	if out.FeatureID != "004-export" {
		t.Errorf("feature = %q", out.FeatureID)
	}
	if !filepath.IsAbs(out.SpecFile) {
		t.Errorf("spec path not absolute: %q", out.SpecFile)
	}

	// Requiring an absent artifact is a tool error, not a silent pass.
	if _, _, err := handler(context.Background(), nil, ContextInput{Require: []string{"plan"}}); err == nil {
		t.Error("missing plan should fail the require check")
	}
}
