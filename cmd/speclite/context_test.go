package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/speclite/speclite/internal/feature"
)

func TestContext_OverrideJSONContract(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.MkdirAll("changes/007-retry-logic", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile("changes/007-retry-logic/spec.md", []byte("# Spec\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(feature.EnvOverride, "007-retry-logic")

	out, err := runCLI(t, "", "context", "--require", "spec", "--json")
	if err != nil {
		t.Fatalf("context: %v\n%s", err, out)
	}

	var result map[string]string
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}

	if result["FEATURE_ID"] != "007-retry-logic" {
		t.Errorf("FEATURE_ID = %q", result["FEATURE_ID"])
	}
	for _, key := range []string{"FEATURE_DIR", "SPEC_FILE", "PLAN_FILE", "TASKS_FILE"} {
		if !filepath.IsAbs(result[key]) {
			t.Errorf("%s = %q, want an absolute path", key, result[key])
		}
	}
	if filepath.Base(result["SPEC_FILE"]) != "spec.md" {
		t.Errorf("SPEC_FILE = %q", result["SPEC_FILE"])
	}
}

func TestContext_NoActiveFeature(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(feature.EnvOverride, "")

	out, err := runCLI(t, "", "context")
	if err == nil {
		t.Fatal("expected an error with no branch and no override")
	}
	if !strings.Contains(out, feature.EnvOverride) {
		t.Errorf("error should mention the override variable: %q", out)
	}
}

func TestContext_MissingArtifactNamesFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.MkdirAll("changes/002-export", 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv(feature.EnvOverride, "002-export")

	out, err := runCLI(t, "", "context", "--require", "spec")
	if err == nil {
		t.Fatal("expected an error for the missing spec")
	}
	if !strings.Contains(out, "spec.md") {
		t.Errorf("error should name the missing file: %q", out)
	}
	if !strings.Contains(out, "002-export") {
		t.Errorf("error should name the feature: %q", out)
	}
}
