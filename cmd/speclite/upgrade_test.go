package main

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
)

// provisionTestProject runs init --here for claude in the current directory.
func provisionTestProject(t *testing.T) {
	t.Helper()
	out, err := runCLI(t, "", "init", "--here", "--force",
		"--ai", "claude", "--ignore-agent-tools", "--no-git")
	if err != nil {
		t.Fatalf("provisioning fixture: %v\n%s", err, out)
	}
}

func TestUpgrade_RequiresProvisionedProject(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := runCLI(t, "", "upgrade", "--ai", "claude", "--ignore-agent-tools")
	if err == nil {
		t.Fatal("upgrade outside a provisioned project should fail")
	}
	if !strings.Contains(out, "not a provisioned project") {
		t.Errorf("output = %q", out)
	}
}

func TestUpgrade_RefreshesCommands(t *testing.T) {
	t.Chdir(t.TempDir())
	provisionTestProject(t)

	target := ".claude/commands/sl.specify.md"
	pristine, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(target, []byte("locally mangled\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "", "upgrade", "--ai", "claude", "--ignore-agent-tools", "--json")
	if err != nil {
		t.Fatalf("upgrade: %v\n%s", err, out)
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if result["status"] != "ok" {
		t.Errorf("status = %v", result["status"])
	}

	refreshed, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(refreshed, pristine) {
		t.Error("upgrade did not restore the command file")
	}
}

func TestUpgrade_PreservesConstitutionAndChanges(t *testing.T) {
	t.Chdir(t.TempDir())
	provisionTestProject(t)

	constitution := []byte("# Tuned over months\n")
	if err := os.WriteFile(".speclite/memory/constitution.md", constitution, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll("changes/001-login", 0o755); err != nil {
		t.Fatal(err)
	}
	spec := []byte("# Login spec\n")
	if err := os.WriteFile("changes/001-login/spec.md", spec, 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "", "upgrade", "--ai", "claude", "--ignore-agent-tools", "--json")
	if err != nil {
		t.Fatalf("upgrade: %v\n%s", err, out)
	}

	got, err := os.ReadFile(".speclite/memory/constitution.md")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, constitution) {
		t.Errorf("constitution modified by upgrade: %q", got)
	}

	got, err = os.ReadFile("changes/001-login/spec.md")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, spec) {
		t.Errorf("feature spec modified by upgrade: %q", got)
	}
}

func TestUpgrade_DetectsAgents(t *testing.T) {
	t.Chdir(t.TempDir())
	provisionTestProject(t)

	out, err := runCLI(t, "", "upgrade", "--ignore-agent-tools")
	if err != nil {
		t.Fatalf("upgrade: %v\n%s", err, out)
	}
	if !strings.Contains(out, "detected agents: claude") {
		t.Errorf("output = %q", out)
	}
}

func TestUpgrade_DryRunWritesNothing(t *testing.T) {
	t.Chdir(t.TempDir())
	provisionTestProject(t)

	target := ".claude/commands/sl.specify.md"
	if err := os.WriteFile(target, []byte("locally mangled\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "", "upgrade", "--ai", "claude", "--ignore-agent-tools", "--dry-run")
	if err != nil {
		t.Fatalf("dry-run: %v\n%s", err, out)
	}
	if !strings.Contains(out, "overwrite") {
		t.Errorf("dry-run should list the pending overwrite:\n%s", out)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "locally mangled\n" {
		t.Error("dry-run modified a file")
	}
}
