package anydir

import (
	"os"
	"path/filepath"
	"strings"
)

const separator = string(filepath.Separator)

// stripPrefix returns p relative to base if p lies below base, otherwise p
// unchanged. Matching is on raw path text at separator boundaries; no
// normalization is done.
func stripPrefix(p, base string) string {
	if base == "" {
		return p
	}

	prefix := base
	if !strings.HasSuffix(prefix, separator) {
		prefix += separator
	}

	if rel, ok := strings.CutPrefix(p, prefix); ok && rel != "" {
		return rel
	}

	return p
}

// joinRaw appends name to base like a directory listing reports children,
// keeping base as given so stripPrefix can undo it.
func joinRaw(base, name string) string {
	switch {
	case base == "":
		return name
	case strings.HasSuffix(base, separator):
		return base + name
	default:
		return base + separator + name
	}
}

// isRegularFile reports whether the file at name is a regular file, following
// a symbolic link if mode says it is one.
func isRegularFile(mode os.FileMode, name string) bool {
	if mode.IsRegular() {
		return true
	}

	if mode&os.ModeSymlink == 0 {
		return false
	}

	info, err := os.Stat(name)

	return err == nil && info.Mode().IsRegular()
}
