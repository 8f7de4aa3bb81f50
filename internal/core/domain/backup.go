package domain

import (
	"fmt"
	"time"
)

// BackupTimestampLayout formats the timestamp part of a backup directory name.
const BackupTimestampLayout = "20060102_150405"

// CopyOp names the operation that failed for a single entry.
type CopyOp string

// Per-entry operations that can fail during a run.
const (
	CopyOpRead    CopyOp = "read"
	CopyOpMkdir   CopyOp = "mkdir"
	CopyOpCopy    CopyOp = "copy"
	CopyOpSymlink CopyOp = "symlink"
	CopyOpStat    CopyOp = "stat"
)

// CopyFailure records a non-fatal failure for one entry of a run.
type CopyFailure struct {
	// Path is the source path of the entry.
	Path string

	// Op is the operation that failed.
	Op CopyOp

	// Err is the underlying error.
	Err error
}

// Error implements error so failures can be logged or joined directly.
func (f CopyFailure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Op, f.Path, f.Err)
}

// Unwrap returns the underlying error.
func (f CopyFailure) Unwrap() error {
	return f.Err
}

// Progress reports how far a run has got.
// Processed only ever grows during a run; Total is never below Processed.
type Progress struct {
	Processed int
	Total     int

	// Path is the source path of the entry just handled.
	Path string
}

// Percent returns progress in the range [0, 100].
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	pct := float64(p.Processed) / float64(p.Total) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// Ratio returns progress in the range [0, 1].
func (p Progress) Ratio() float64 {
	return p.Percent() / 100
}

// ProgressFunc receives progress updates synchronously during a run.
type ProgressFunc func(Progress)

// BackupResult is the outcome of a backup or deploy run.
type BackupResult struct {
	// Destination is the directory the tree was copied into.
	Destination string

	// FilesCopied counts regular files and symlinks written.
	FilesCopied int

	// DirsCreated counts mirrored directories, excluding the destination root.
	DirsCreated int

	// BytesCopied is the total size of copied file contents.
	BytesCopied int64

	// Skipped counts entries dropped by exclusion patterns.
	Skipped int

	// Failures lists per-entry failures. Empty means full success.
	Failures []CopyFailure

	StartedAt  time.Time
	FinishedAt time.Time
}

// OK reports whether the run finished without per-entry failures.
func (r *BackupResult) OK() bool {
	return len(r.Failures) == 0
}

// Duration returns how long the run took.
func (r *BackupResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// BackupEntry is an existing backup directory of a project.
type BackupEntry struct {
	// Name is the directory name, <project>_<timestamp>[_n].
	Name string

	// Path is the absolute directory path.
	Path string

	// CreatedAt is parsed from the directory name.
	CreatedAt time.Time
}
