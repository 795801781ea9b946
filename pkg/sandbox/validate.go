package sandbox

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateWorkspacePath resolves path against root and checks that it
// lies inside root. Files outside the bind-mounted workspace do not exist
// inside the container.
func ValidateWorkspacePath(path, root string) (string, error) {
	if root == "" {
		return "", fmt.Errorf("workspace root cannot be empty")
	}
	root = filepath.Clean(root)

	abs := filepath.Clean(path)
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(root, abs)
	}

	if abs != root && !strings.HasPrefix(abs, root+string(filepath.Separator)) {
		return "", fmt.Errorf("path is not within workspace %s: %s", root, path)
	}
	return abs, nil
}

// ValidateToolName checks that a configured tool is a bare command name or
// path, with no arguments or control characters folded into it.
func ValidateToolName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("empty tool name")
	}
	if strings.ContainsAny(name, " \t\r\n\x00") {
		return fmt.Errorf("tool name %q must not contain whitespace; pass arguments as flags", name)
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("tool name %q contains control characters", name)
		}
	}
	return nil
}

// ValidateSourceFile checks that path names a Go source file
func ValidateSourceFile(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return fmt.Errorf("file has no extension: %s", path)
	}
	if ext != ".go" {
		return fmt.Errorf("not a Go source file: %s", path)
	}
	return nil
}
