package merge

import (
	"fmt"
	"os"
	"path/filepath"
)

// PathResult records what happened to one target path.
type PathResult struct {
	Path   string `json:"path"`
	Action Action `json:"action"`
	Error  string `json:"error,omitempty"`
}

// Report summarizes an executed plan. It always enumerates per-path results
// so the operator can audit exactly what a run changed, including which
// protected paths were left alone.
type Report struct {
	Created     int          `json:"created"`
	Overwritten int          `json:"overwritten"`
	Skipped     int          `json:"skipped"`
	Failed      int          `json:"failed"`
	PerPath     []PathResult `json:"per_path"`
}

// Partial reports whether any individual write failed.
func (r Report) Partial() bool {
	return r.Failed > 0
}

// Execute applies a plan under root. Failures are isolated per file: a
// failed write is recorded and the remaining files are still attempted.
// Atomicity is per-file only; an interrupted run may leave earlier files
// written and later ones absent.
func Execute(root string, plan []Planned) Report {
	var report Report

	for _, p := range plan {
		result := PathResult{Path: p.File.TargetPath, Action: p.Action}

		switch p.Action {
		case SkipProtected:
			report.Skipped++
		case Create, Overwrite:
			if err := writeFile(root, p.File.TargetPath, []byte(p.File.Content), p.File.Mode); err != nil {
				result.Error = err.Error()
				report.Failed++
			} else if p.Action == Create {
				report.Created++
			} else {
				report.Overwritten++
			}
		}

		report.PerPath = append(report.PerPath, result)
	}

	return report
}

// writeFile writes one target path, creating parent directories as needed.
// The file handle is released on every exit path so an individual failure
// never leaks a descriptor or a half-open file.
func writeFile(root, target string, data []byte, mode os.FileMode) error {
	dest := filepath.Join(root, filepath.FromSlash(target))

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", target, err)
	}

	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("opening %s: %w", target, err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", target, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", target, err)
	}

	// An overwrite of a pre-existing file keeps the requested mode current
	// (OpenFile only applies mode on creation).
	if err := os.Chmod(dest, mode); err != nil {
		return fmt.Errorf("setting mode on %s: %w", target, err)
	}
	return nil
}

// statTarget stats a target path under root.
func statTarget(root, target string) (os.FileInfo, error) {
	return os.Stat(filepath.Join(root, filepath.FromSlash(target)))
}
