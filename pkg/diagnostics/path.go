package diagnostics

import (
	"path/filepath"
	"strings"
)

// PathMapper translates a path as seen by the tool into the path the
// editor uses for the same file.
type PathMapper interface {
	ToLocal(path string) string
}

// IdentityMapper leaves paths untouched; used for local runs
type IdentityMapper struct{}

// ToLocal returns path unchanged
func (IdentityMapper) ToLocal(path string) string { return path }

// PrefixMapper rewrites paths under Remote to the same relative location
// under Local. Paths outside Remote are returned unchanged.
type PrefixMapper struct {
	Remote string
	Local  string
}

// ToLocal maps a remote path to its local equivalent
func (m PrefixMapper) ToLocal(path string) string {
	return rebase(path, m.Remote, m.Local)
}

// ToRemote is the inverse of ToLocal
func (m PrefixMapper) ToRemote(path string) string {
	return rebase(path, m.Local, m.Remote)
}

func rebase(path, from, to string) string {
	if from == "" || from == to {
		return path
	}
	from = filepath.Clean(from)
	clean := filepath.Clean(path)
	if clean == from {
		return filepath.Clean(to)
	}
	if strings.HasPrefix(clean, from+string(filepath.Separator)) {
		return filepath.Join(to, strings.TrimPrefix(clean, from+string(filepath.Separator)))
	}
	return path
}
