package services

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/custodia-labs/codekeeper/internal/core/domain"
	"github.com/custodia-labs/codekeeper/internal/core/ports/driving"
)

// Ensure PathValidator implements the interface.
var _ driving.PathValidator = (*PathValidator)(nil)

// DenyEntry is a protected location.
type DenyEntry struct {
	Path string

	// Subtree also protects everything nested under Path.
	// When false only Path itself and its ancestors are rejected.
	Subtree bool
}

// PathValidator rejects filesystem roots, protected system locations and
// their ancestors. It never writes to the filesystem.
type PathValidator struct {
	entries []DenyEntry
	fold    bool
}

// NewPathValidator creates a validator over the given entries.
// fold enables case-insensitive comparison.
func NewPathValidator(entries []DenyEntry, fold bool) *PathValidator {
	cleaned := make([]DenyEntry, 0, len(entries))
	for _, e := range entries {
		p := strings.TrimSpace(e.Path)
		if p == "" {
			continue
		}
		cleaned = append(cleaned, DenyEntry{Path: filepath.Clean(p), Subtree: e.Subtree})
	}
	return &PathValidator{entries: cleaned, fold: fold}
}

// NewDefaultPathValidator creates a validator for the running platform.
func NewDefaultPathValidator() *PathValidator {
	home, _ := os.UserHomeDir()
	return NewPathValidator(DefaultDenylist(runtime.GOOS, home), foldsCase(runtime.GOOS))
}

// DefaultDenylist returns the protected locations for goos.
// home is the current user's profile directory and may be empty.
func DefaultDenylist(goos, home string) []DenyEntry {
	var subtree, exact []string
	switch goos {
	case "windows":
		subtree = []string{
			`C:\Windows`,
			`C:\Program Files`,
			`C:\Program Files (x86)`,
			`C:\ProgramData\Microsoft`,
			`C:\$Recycle.Bin`,
			`C:\System Volume Information`,
			`C:\Recovery`,
			`C:\Boot`,
			`C:\pagefile.sys`,
			`C:\hiberfil.sys`,
		}
		exact = []string{`C:\Users`}
	case "darwin":
		subtree = []string{
			"/System",
			"/Library",
			"/Applications",
			"/bin",
			"/sbin",
			"/usr/bin",
			"/usr/sbin",
			"/usr/lib",
			"/usr/libexec",
			"/etc",
			"/dev",
			"/cores",
			"/private/etc",
			"/private/var/db",
			"/private/var/log",
		}
		exact = []string{"/Users", "/Volumes"}
	default:
		subtree = []string{
			"/bin",
			"/sbin",
			"/lib",
			"/lib32",
			"/lib64",
			"/libx32",
			"/usr/bin",
			"/usr/sbin",
			"/usr/lib",
			"/usr/share",
			"/etc",
			"/boot",
			"/dev",
			"/proc",
			"/sys",
			"/run",
			"/var/cache",
			"/var/lib",
			"/var/log",
			"/var/run",
		}
		exact = []string{"/home"}
	}
	if home != "" {
		exact = append(exact, home)
	}

	entries := make([]DenyEntry, 0, len(subtree)+len(exact))
	for _, p := range subtree {
		entries = append(entries, DenyEntry{Path: p, Subtree: true})
	}
	for _, p := range exact {
		entries = append(entries, DenyEntry{Path: p})
	}
	return entries
}

// Entries returns the configured denylist.
func (v *PathValidator) Entries() []DenyEntry {
	out := make([]DenyEntry, len(v.entries))
	copy(out, v.entries)
	return out
}

// Validate returns the absolute, cleaned form of path or a
// *domain.PathRejectedError.
func (v *PathValidator) Validate(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", &domain.PathRejectedError{Path: path, Reason: "empty path"}
	}

	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", &domain.PathRejectedError{Path: path, Reason: "cannot resolve: " + err.Error()}
	}
	abs = filepath.Clean(abs)

	if err := v.check(abs, ""); err != nil {
		return "", err
	}

	// A symlink must not smuggle a protected target past the lexical check.
	if resolved, err := filepath.EvalSymlinks(abs); err == nil && !samePath(resolved, abs, v.fold) {
		if err := v.check(filepath.Clean(resolved), "resolves to "); err != nil {
			return "", err
		}
	}

	return abs, nil
}

func (v *PathValidator) check(p, reasonPrefix string) error {
	if isRoot(p) {
		return &domain.PathRejectedError{Path: p, Reason: reasonPrefix + "filesystem root"}
	}
	for _, e := range v.entries {
		switch {
		case samePath(p, e.Path, v.fold):
			return &domain.PathRejectedError{Path: p, Entry: e.Path, Reason: reasonPrefix + "protected location"}
		case isWithin(p, e.Path, v.fold):
			return &domain.PathRejectedError{Path: p, Entry: e.Path, Reason: reasonPrefix + "contains protected location"}
		case e.Subtree && isWithin(e.Path, p, v.fold):
			return &domain.PathRejectedError{Path: p, Entry: e.Path, Reason: reasonPrefix + "inside protected location"}
		}
	}
	return nil
}
