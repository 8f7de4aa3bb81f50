package services

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/codekeeper/internal/core/domain"
)

func newUnixValidator() *PathValidator {
	return NewPathValidator(DefaultDenylist("linux", "/home/alice"), false)
}

func TestPathValidator_Rejects(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix paths")
	}
	v := newUnixValidator()

	tests := []struct {
		name  string
		path  string
		entry string
	}{
		{"filesystem root", "/", ""},
		{"root with dots", "/usr/..", ""},
		{"denylisted entry", "/etc", "/etc"},
		{"nested under subtree entry", "/etc/nginx/sites", "/etc"},
		{"nested under usr bin", "/usr/bin/local", "/usr/bin"},
		{"ancestor of subtree entry", "/usr", "/usr/bin"},
		{"ancestor of var log", "/var", "/var/cache"},
		{"home root", "/home", "/home"},
		{"user home", "/home/alice", "/home/alice"},
		{"trailing slash", "/home/alice/", "/home/alice"},
		{"unclean path", "/opt/../etc/./ssl", "/etc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Validate(tt.path)
			require.Error(t, err)
			assert.Empty(t, got)
			assert.ErrorIs(t, err, domain.ErrPathRejected)

			var rejected *domain.PathRejectedError
			require.True(t, errors.As(err, &rejected))
			assert.Equal(t, tt.entry, rejected.Entry)
		})
	}
}

func TestPathValidator_RejectsEmpty(t *testing.T) {
	v := newUnixValidator()
	for _, p := range []string{"", "   "} {
		_, err := v.Validate(p)
		assert.ErrorIs(t, err, domain.ErrPathRejected)
	}
}

func TestPathValidator_Accepts(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix paths")
	}
	v := newUnixValidator()

	tests := []struct {
		path string
		want string
	}{
		{"/home/alice/dev/project", "/home/alice/dev/project"},
		{"/home/bob/code", "/home/bob/code"},
		{"/srv/backups/", "/srv/backups"},
		{"/opt/app/../app2", "/opt/app2"},
		{"/var/www/site", "/var/www/site"},
		{"/usr/local/src/tool", "/usr/local/src/tool"},
		{"/etcetera/files", "/etcetera/files"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := v.Validate(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPathValidator_Idempotent(t *testing.T) {
	v := newUnixValidator()
	dir := t.TempDir()

	for _, p := range []string{dir, filepath.Join(dir, "a", "..", "b"), "relative/dir"} {
		first, err := v.Validate(p)
		require.NoError(t, err)
		second, err := v.Validate(first)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.True(t, filepath.IsAbs(first))
	}
}

func TestPathValidator_RelativePathIsMadeAbsolute(t *testing.T) {
	v := newUnixValidator()
	wd, err := os.Getwd()
	require.NoError(t, err)

	got, err := v.Validate("sub/dir")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "sub", "dir"), got)
}

func TestPathValidator_SymlinkToProtectedLocation(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dir := t.TempDir()
	protected := filepath.Join(dir, "protected")
	require.NoError(t, os.MkdirAll(filepath.Join(protected, "inner"), 0o755))
	link := filepath.Join(dir, "innocent")
	require.NoError(t, os.Symlink(filepath.Join(protected, "inner"), link))

	resolvedProtected, err := filepath.EvalSymlinks(protected)
	require.NoError(t, err)
	v := NewPathValidator([]DenyEntry{{Path: resolvedProtected, Subtree: true}}, false)

	_, err = v.Validate(link)
	assert.ErrorIs(t, err, domain.ErrPathRejected)

	var rejected *domain.PathRejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Contains(t, rejected.Reason, "resolves to")
}

func TestPathValidator_CaseInsensitive(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix paths")
	}
	folding := NewPathValidator([]DenyEntry{{Path: "/System", Subtree: true}, {Path: "/Users"}}, true)
	strict := NewPathValidator([]DenyEntry{{Path: "/System", Subtree: true}}, false)

	_, err := folding.Validate("/system/library")
	assert.ErrorIs(t, err, domain.ErrPathRejected)
	_, err = folding.Validate("/users")
	assert.ErrorIs(t, err, domain.ErrPathRejected)
	_, err = folding.Validate("/users/alice/dev")
	assert.NoError(t, err)

	_, err = strict.Validate("/system/library")
	assert.NoError(t, err)
}

func TestNewPathValidator_IgnoresBlankEntries(t *testing.T) {
	v := NewPathValidator([]DenyEntry{{Path: ""}, {Path: "  "}, {Path: "/etc/", Subtree: true}}, false)
	assert.Equal(t, []DenyEntry{{Path: "/etc", Subtree: true}}, v.Entries())
}

func TestDefaultDenylist(t *testing.T) {
	contains := func(entries []DenyEntry, want DenyEntry) bool {
		for _, e := range entries {
			if e == want {
				return true
			}
		}
		return false
	}

	linux := DefaultDenylist("linux", "/home/alice")
	assert.True(t, contains(linux, DenyEntry{Path: "/etc", Subtree: true}))
	assert.True(t, contains(linux, DenyEntry{Path: "/home"}))
	assert.True(t, contains(linux, DenyEntry{Path: "/home/alice"}))
	assert.False(t, contains(linux, DenyEntry{Path: "/tmp", Subtree: true}))

	darwin := DefaultDenylist("darwin", "/Users/alice")
	assert.True(t, contains(darwin, DenyEntry{Path: "/System", Subtree: true}))
	assert.True(t, contains(darwin, DenyEntry{Path: "/Users"}))
	assert.True(t, contains(darwin, DenyEntry{Path: "/Users/alice"}))

	windows := DefaultDenylist("windows", `C:\Users\alice`)
	assert.True(t, contains(windows, DenyEntry{Path: `C:\Windows`, Subtree: true}))
	assert.True(t, contains(windows, DenyEntry{Path: `C:\Program Files`, Subtree: true}))
	assert.True(t, contains(windows, DenyEntry{Path: `C:\Users\alice`}))

	noHome := DefaultDenylist("linux", "")
	assert.Len(t, noHome, len(linux)-1)
}

func TestPathHelpers(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix paths")
	}
	assert.True(t, isWithin("/a", "/a/b", false))
	assert.False(t, isWithin("/a", "/a", false))
	assert.False(t, isWithin("/a", "/ab", false))
	assert.True(t, isWithin("/", "/a", false))
	assert.True(t, isWithin("/A", "/a/b", true))

	assert.Equal(t, 0, pathDepth("/"))
	assert.Equal(t, 2, pathDepth("/srv/backups"))

	assert.Equal(t, "my_app_", backupPrefix("my/app"))
	assert.Equal(t, "backup_", backupPrefix("  "))
	assert.Equal(t, "a_b_", backupPrefix("a:b"))
}
