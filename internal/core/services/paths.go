package services

import (
	"path/filepath"
	"strings"
)

// foldsCase reports whether path comparison is case-insensitive on goos.
func foldsCase(goos string) bool {
	return goos == "windows" || goos == "darwin"
}

// isRoot reports whether p is a filesystem or volume root.
func isRoot(p string) bool {
	return filepath.Dir(p) == p
}

// samePath compares two cleaned absolute paths.
func samePath(a, b string, fold bool) bool {
	if fold {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// isWithin reports whether child is strictly nested under parent.
// Both paths must be cleaned and absolute.
func isWithin(parent, child string, fold bool) bool {
	if fold {
		parent = strings.ToLower(parent)
		child = strings.ToLower(child)
	}
	if parent == child {
		return false
	}
	prefix := parent
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(child, prefix)
}

// pathDepth counts the components of p below its volume root.
func pathDepth(p string) int {
	rest := strings.TrimPrefix(p, filepath.VolumeName(p))
	depth := 0
	for _, part := range strings.Split(rest, string(filepath.Separator)) {
		if part != "" {
			depth++
		}
	}
	return depth
}

// backupPrefix is the directory name prefix for backups of a project.
// Separators and characters invalid in file names are replaced.
func backupPrefix(name string) string {
	name = strings.TrimSpace(name)
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		name = "backup"
	}
	return name + "_"
}
