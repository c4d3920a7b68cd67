package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestRootCommand_Version(t *testing.T) {
	version = "1.2.3"

	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--version"})

	err := cmd.Execute()
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "1.2.3") {
		t.Errorf("--version output should contain version: %q", output)
	}
	if !strings.Contains(output, "speclite") {
		t.Errorf("--version output should contain 'speclite': %q", output)
	}
}

func TestRootCommand_Help(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	output := buf.String()

	expectations := []string{
		"speclite",
		"Usage:",
		"--json",
		"init",
		"upgrade",
		"context",
	}

	for _, expected := range expectations {
		if !strings.Contains(output, expected) {
			t.Errorf("--help output should contain %q: %q", expected, output)
		}
	}
}

func TestRootCommand_JSONFlag_NoSubcommand(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--json"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("Expected error when running with --json but no subcommand")
	}

	output := buf.String()

	var result map[string]any
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("Output should be valid JSON: %v\nOutput: %s", err, output)
	}

	if _, ok := result["error"]; !ok {
		t.Errorf("JSON output should contain 'error' field: %s", output)
	}
	if _, ok := result["code"]; !ok {
		t.Errorf("JSON output should contain 'code' field: %s", output)
	}
}

func TestRootCommand_JSONFlag_Persistence(t *testing.T) {
	cmd := newRootCmd()

	flag := cmd.PersistentFlags().Lookup("json")
	if flag == nil {
		t.Fatal("--json flag should be a persistent flag")
	}
}

func TestRootCommand_ColorFlag(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)

	flag := cmd.PersistentFlags().Lookup("color")
	if flag == nil {
		t.Fatal("--color flag should be a persistent flag")
	}
	if flag.DefValue != "auto" {
		t.Errorf("--color default = %q, want auto", flag.DefValue)
	}

	// A buffer is not a terminal, so only "always" forces color on.
	if useColor(cmd) {
		t.Error("auto mode should follow TTY detection (buffer output)")
	}
	if err := flag.Value.Set("always"); err != nil {
		t.Fatal(err)
	}
	if !useColor(cmd) {
		t.Error("always mode should force color on")
	}
	if err := flag.Value.Set("never"); err != nil {
		t.Fatal(err)
	}
	if useColor(cmd) {
		t.Error("never mode should force color off")
	}
}

func TestBuildVersion(t *testing.T) {
	version = "1.0.0"
	commit = "none"
	date = "unknown"
	if got := buildVersion(); got != "1.0.0" {
		t.Errorf("buildVersion() = %q", got)
	}

	commit = "abcdef1234"
	date = "2026-01-01"
	got := buildVersion()
	if !strings.Contains(got, "abcdef1") || strings.Contains(got, "abcdef12") {
		t.Errorf("buildVersion() should shorten commit to 7 chars: %q", got)
	}

	commit = "none"
	date = "unknown"
}
