// Package config provides the global configuration directory for speclite.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Dir returns the speclite configuration directory.
//
// Resolution:
//   - $SPECLITE_CONFIG_HOME if set (explicit override)
//   - $XDG_CONFIG_HOME/speclite if set (respects XDG on any platform)
//   - %AppData%/speclite on Windows
//   - ~/.config/speclite on macOS and Linux
func Dir() string {
	// Explicit override
	if dir := os.Getenv("SPECLITE_CONFIG_HOME"); dir != "" {
		return dir
	}

	// XDG override (works on any platform)
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "speclite")
	}

	// Windows: use AppData
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "speclite")
		}
	}

	// macOS and Linux: ~/.config/speclite
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "speclite")
}
