package main

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
)

func TestFeature_MintsDirectoryAndSeedsSpec(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := runCLI(t, "", "feature", "add", "login", "--no-branch", "--json")
	if err != nil {
		t.Fatalf("feature: %v\n%s", err, out)
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if result["FEATURE_ID"] != "001-add-login" {
		t.Errorf("FEATURE_ID = %v", result["FEATURE_ID"])
	}
	if result["branch"] != "skipped" {
		t.Errorf("branch = %v", result["branch"])
	}

	data, err := os.ReadFile("changes/001-add-login/spec.md")
	if err != nil {
		t.Fatalf("spec not seeded: %v", err)
	}
	if len(data) == 0 {
		t.Error("seeded spec is empty")
	}
}

func TestFeature_IDsIncrease(t *testing.T) {
	t.Chdir(t.TempDir())

	if out, err := runCLI(t, "", "feature", "first", "--no-branch"); err != nil {
		t.Fatalf("first: %v\n%s", err, out)
	}
	out, err := runCLI(t, "", "feature", "second", "--no-branch")
	if err != nil {
		t.Fatalf("second: %v\n%s", err, out)
	}
	if !strings.Contains(out, "002-second") {
		t.Errorf("output = %q", out)
	}
}

func TestFeature_RejectsEmptySlug(t *testing.T) {
	t.Chdir(t.TempDir())

	if _, err := runCLI(t, "", "feature", "???", "--no-branch"); err == nil {
		t.Fatal("expected an error for a slug that normalizes to nothing")
	}
}
