// Package envfile reads KEY=VALUE assignments from dotenv-style files
// into the process environment. Variables that are already set are never
// overwritten, so the real environment always wins over file contents.
package envfile

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Load applies the assignments in path to the current environment.
// A missing file is not an error; malformed lines are skipped.
func Load(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening env file %s: %w", path, err)
	}
	defer file.Close() //nolint:errcheck // best-effort close on read-only file

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := parseAssignment(line)
		if !ok {
			continue
		}
		if os.Getenv(key) == "" {
			_ = os.Setenv(key, value)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading env file %s: %w", path, err)
	}
	return nil
}

// parseAssignment splits one non-comment line into a key/value pair.
// An `export ` prefix and matching single or double quotes around the
// value are accepted, so files written for shell sourcing load as-is.
func parseAssignment(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(strings.TrimPrefix(line, "export "))

	key, value, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", false
	}
	return key, unquote(strings.TrimSpace(value)), true
}

// unquote strips one layer of matching quotes, if present.
func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
