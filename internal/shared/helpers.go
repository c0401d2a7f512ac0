// Package shared provides common utility functions used across multiple
// packages in the livebundle codebase.
package shared

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// HTTPStatusErrorWithBody creates a formatted error that includes the
// response body for non-2xx HTTP responses.
func HTTPStatusErrorWithBody(status int, url string, body string) error {
	return fmt.Errorf("status=%d url=%s response=%s", status, url, body)
}

// ExpandHome replaces a leading "~" or "$HOME" in path with the user's home
// directory. Paths without either prefix are returned unchanged.
func ExpandHome(path string) string {
	trimmed := strings.TrimSpace(path)
	var rest string
	switch {
	case trimmed == "~" || trimmed == "$HOME":
	case strings.HasPrefix(trimmed, "~/"):
		rest = trimmed[2:]
	case strings.HasPrefix(trimmed, "$HOME/"):
		rest = trimmed[len("$HOME/"):]
	default:
		return trimmed
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return trimmed
	}
	return filepath.Join(home, rest)
}

// DefaultDataDir is where the file installer keeps bundles and state.
func DefaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "livebundle")
	}
	return ExpandHome("~/.local/share/livebundle")
}
