// Package git provides Git operations via exec for the speclite CLI.
package git

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/speclite/speclite/internal/output"
)

// Run executes a git command in dir with the given arguments.
// It captures stdout and returns it as a trimmed string.
// Returns an *output.ExitError on failure with appropriate exit code.
func Run(dir string, args ...string) (string, error) {
	return RunContext(context.Background(), dir, args...)
}

// RunContext executes a git command in dir with the given context and arguments.
// It captures stdout and returns it as a trimmed string.
// Returns an *output.ExitError on failure with appropriate exit code.
func RunContext(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		// Check if git is not found
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return "", output.NewSystemError("git not found: ensure git is installed and in PATH")
		}

		// Git command failed - include stderr in message
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg == "" {
			errMsg = err.Error()
		}
		return "", output.NewSystemErrorWithCause("git command failed: "+errMsg, err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// IsRepo checks if dir is inside a git work tree.
func IsRepo(dir string) bool {
	_, err := Run(dir, "rev-parse", "--is-inside-work-tree")
	return err == nil
}

// RepoRoot returns the root directory of the repository containing dir.
// Returns an error if dir is not in a git repository.
func RepoRoot(dir string) (string, error) {
	root, err := Run(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", output.NewSystemErrorWithCause("not in a git repository", err)
	}
	return root, nil
}

// CurrentBranch returns the name of the current branch in dir.
// Returns an error if not in a git repository; returns ("", nil) when
// HEAD is detached, since no branch name is authoritative then.
func CurrentBranch(dir string) (string, error) {
	branch, err := Run(dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", output.NewSystemErrorWithCause("failed to get current branch", err)
	}
	if branch == "HEAD" {
		// Detached HEAD
		return "", nil
	}
	return branch, nil
}

// Init initializes a fresh repository in dir and stages everything with an
// initial commit. Used once at the end of project provisioning.
func Init(dir string) error {
	if _, err := Run(dir, "init"); err != nil {
		return err
	}
	if _, err := Run(dir, "add", "."); err != nil {
		return err
	}
	if _, err := Run(dir, "commit", "-m", "Initial commit from speclite template"); err != nil {
		return err
	}
	return nil
}

// CreateBranch creates and checks out a new branch in dir.
func CreateBranch(dir, name string) error {
	_, err := Run(dir, "checkout", "-b", name)
	return err
}

// Available reports whether the git binary can be found on PATH.
func Available() bool {
	_, err := exec.LookPath("git")
	return err == nil
}
