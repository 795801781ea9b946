// Package workspace locates the project root, the GOPATH entry and the
// module cache for a directory.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
)

// FindRoot returns the root of the git worktree containing dir, or dir
// itself when it is not inside a repository.
func FindRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return abs, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to open repository at %s: %w", abs, err)
	}

	wt, err := repo.Worktree()
	if errors.Is(err, git.ErrIsBareRepository) {
		return abs, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}
	return wt.Filesystem.Root(), nil
}

// GoPath returns the GOPATH entries, defaulting to $HOME/go
func GoPath() []string {
	gopath := os.Getenv("GOPATH")
	if gopath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		return []string{filepath.Join(home, "go")}
	}
	return filepath.SplitList(gopath)
}

// GoPathWorkspace returns the GOPATH entry whose src tree contains dir, or
// "" when dir is outside every entry.
func GoPathWorkspace(gopath []string, dir string) string {
	for _, entry := range gopath {
		if entry == "" {
			continue
		}
		if within(filepath.Join(entry, "src"), dir) {
			return filepath.Clean(entry)
		}
	}
	return ""
}

// ImportPath returns dir relative to the src directory of the GOPATH entry
// containing it, in slash form.
func ImportPath(gopath []string, dir string) (string, bool) {
	entry := GoPathWorkspace(gopath, dir)
	if entry == "" {
		return "", false
	}
	rel, err := filepath.Rel(filepath.Join(entry, "src"), dir)
	if err != nil || rel == "." {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// ModuleCache returns the module download cache directory
func ModuleCache() string {
	if dir := os.Getenv("GOMODCACHE"); dir != "" {
		return dir
	}
	gopath := GoPath()
	if len(gopath) == 0 {
		return ""
	}
	return filepath.Join(gopath[0], "pkg", "mod")
}

// InModuleCache reports whether dir is inside the module cache
func InModuleCache(dir string) bool {
	cache := ModuleCache()
	return cache != "" && within(cache, dir)
}

// IsModuleMode reports whether the go command treats dir as part of a
// module, following GO111MODULE and then looking for go.mod upwards.
func IsModuleMode(dir string) bool {
	switch strings.ToLower(os.Getenv("GO111MODULE")) {
	case "off":
		return false
	case "on":
		return true
	}
	return FindModFile(dir) != ""
}

// FindModFile returns the nearest go.mod at or above dir
func FindModFile(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(abs, "go.mod")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return ""
		}
		abs = parent
	}
}

func within(root, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
