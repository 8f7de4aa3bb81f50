package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/custodia-labs/codekeeper/internal/core/domain"
	"github.com/custodia-labs/codekeeper/internal/core/ports/driving"
	"github.com/custodia-labs/codekeeper/internal/logger"
)

// Ensure BackupEngine implements the interface.
var _ driving.BackupEngine = (*BackupEngine)(nil)

// maxCollisionSuffix bounds the _2, _3, ... suffixes tried for one timestamp.
const maxCollisionSuffix = 1000

// BackupEngine copies project trees into backup and runtime directories.
// It holds no state between runs and does no locking.
type BackupEngine struct {
	validator driving.PathValidator
	fold      bool

	now  func() time.Time
	open func(name string) (*os.File, error)
}

// NewBackupEngine creates an engine that checks every path with validator.
func NewBackupEngine(validator driving.PathValidator) *BackupEngine {
	return &BackupEngine{
		validator: validator,
		fold:      foldsCase(runtime.GOOS),
		now:       time.Now,
		open:      os.Open,
	}
}

// RunBackup copies the source tree into a new <name>_<timestamp> directory
// under the backup root.
func (e *BackupEngine) RunBackup(ctx context.Context, req driving.BackupRequest) (*domain.BackupResult, error) {
	source, err := e.validator.Validate(req.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	root, err := e.validator.Validate(req.BackupRoot)
	if err != nil {
		return nil, fmt.Errorf("backup root: %w", err)
	}

	name := req.ProjectName
	if name == "" {
		name = filepath.Base(source)
	}
	dest := filepath.Join(root, backupPrefix(name)+e.now().Format(domain.BackupTimestampLayout))
	if _, err := e.validator.Validate(dest); err != nil {
		return nil, fmt.Errorf("destination: %w", err)
	}
	if samePath(source, dest, e.fold) || isWithin(source, dest, e.fold) {
		return nil, &domain.PathRejectedError{Path: dest, Entry: source, Reason: "destination inside source"}
	}

	if err := checkReadableDir(source); err != nil {
		return nil, err
	}

	logger.Section("Backup")
	logger.Debug("Source: %s", source)

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create backup root: %w", err)
	}
	dest, err = createUniqueDir(dest)
	if err != nil {
		return nil, fmt.Errorf("create backup directory: %w", err)
	}
	logger.Debug("Destination: %s", dest)

	result, err := e.copyTree(ctx, source, dest, req.Patterns, req.OnProgress)
	if info, statErr := os.Stat(source); statErr == nil {
		applyDirAttrs(dest, info)
	}
	return result, err
}

// DeployToRuntime copies the source tree over the runtime directory.
// Files only present in the runtime directory are left alone.
func (e *BackupEngine) DeployToRuntime(ctx context.Context, req driving.DeployRequest) (*domain.BackupResult, error) {
	if !req.Confirmed {
		return nil, domain.ErrNotConfirmed
	}

	source, err := e.validator.Validate(req.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	target, err := e.validator.Validate(req.RuntimeDir)
	if err != nil {
		return nil, fmt.Errorf("runtime: %w", err)
	}
	if samePath(source, target, e.fold) || isWithin(source, target, e.fold) {
		return nil, &domain.PathRejectedError{Path: target, Entry: source, Reason: "runtime directory inside source"}
	}

	if err := checkReadableDir(source); err != nil {
		return nil, err
	}

	logger.Section("Deploy")
	logger.Debug("Source: %s", source)
	logger.Debug("Runtime: %s", target)

	if err := os.MkdirAll(target, 0o755); err != nil {
		return nil, fmt.Errorf("create runtime directory: %w", err)
	}
	return e.copyTree(ctx, source, target, req.Patterns, req.OnProgress)
}

func (e *BackupEngine) copyTree(
	ctx context.Context,
	source, dest string,
	patterns []string,
	onProgress domain.ProgressFunc,
) (*domain.BackupResult, error) {
	excl := domain.NewExclusionSet(patterns)
	c := &treeCopier{
		ctx:        ctx,
		excl:       excl,
		open:       e.open,
		onProgress: onProgress,
		total:      countEntries(source, excl),
		result: &domain.BackupResult{
			Destination: dest,
			StartedAt:   e.now(),
		},
	}
	logger.Debug("Entries to copy: %d", c.total)

	err := c.copyDir(source, dest)
	c.result.FinishedAt = e.now()

	logger.Info("Copied %d files, %d directories, %d skipped, %d failed",
		c.result.FilesCopied, c.result.DirsCreated, c.result.Skipped, len(c.result.Failures))
	return c.result, err
}

// treeCopier holds the state of one run.
type treeCopier struct {
	ctx        context.Context
	excl       *domain.ExclusionSet
	open       func(name string) (*os.File, error)
	onProgress domain.ProgressFunc

	processed int
	total     int
	result    *domain.BackupResult
}

// copyDir mirrors the contents of src into the existing directory dst.
// Only cancellation is returned as an error.
func (c *treeCopier) copyDir(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		c.fail(src, domain.CopyOpRead, err)
		return nil
	}

	for _, entry := range entries {
		if err := c.ctx.Err(); err != nil {
			return err
		}

		name := entry.Name()
		srcPath := filepath.Join(src, name)
		dstPath := filepath.Join(dst, name)

		if c.excl.Match(name) {
			logger.Debug("Skipping %s", srcPath)
			c.result.Skipped++
			continue
		}

		switch {
		case entry.Type()&fs.ModeSymlink != 0:
			c.copySymlink(srcPath, dstPath)
			c.step(srcPath)
		case entry.IsDir():
			if err := c.mirrorDir(srcPath, dstPath, entry); err != nil {
				return err
			}
		case entry.Type().IsRegular():
			c.copyFile(srcPath, dstPath, entry)
			c.step(srcPath)
		default:
			c.fail(srcPath, domain.CopyOpCopy, fmt.Errorf("unsupported file type %s", entry.Type()))
			c.step(srcPath)
		}
	}
	return nil
}

func (c *treeCopier) mirrorDir(srcPath, dstPath string, entry fs.DirEntry) error {
	info, err := entry.Info()
	if err != nil {
		c.fail(srcPath, domain.CopyOpStat, err)
		c.skipSubtree(srcPath)
		return nil
	}
	if err := prepareDir(dstPath); err != nil {
		c.fail(srcPath, domain.CopyOpMkdir, err)
		c.skipSubtree(srcPath)
		return nil
	}
	c.result.DirsCreated++
	c.step(srcPath)

	if err := c.copyDir(srcPath, dstPath); err != nil {
		return err
	}
	applyDirAttrs(dstPath, info)
	return nil
}

func (c *treeCopier) copyFile(srcPath, dstPath string, entry fs.DirEntry) {
	info, err := entry.Info()
	if err != nil {
		c.fail(srcPath, domain.CopyOpStat, err)
		return
	}

	in, err := c.open(srcPath)
	if err != nil {
		c.fail(srcPath, domain.CopyOpRead, err)
		return
	}
	defer in.Close()

	mode := info.Mode().Perm()
	out, created, err := openDest(dstPath, mode)
	if err != nil {
		c.fail(srcPath, domain.CopyOpCopy, err)
		return
	}

	n, err := io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		// An existing runtime file stays in place, truncated or not.
		if created {
			_ = os.Remove(dstPath)
		}
		c.fail(srcPath, domain.CopyOpCopy, err)
		return
	}

	if err := os.Chmod(dstPath, mode); err != nil {
		logger.Debug("chmod %s: %v", dstPath, err)
	}
	if err := os.Chtimes(dstPath, info.ModTime(), info.ModTime()); err != nil {
		logger.Debug("chtimes %s: %v", dstPath, err)
	}

	c.result.FilesCopied++
	c.result.BytesCopied += n
}

// copySymlink recreates the link itself. Targets are never followed.
func (c *treeCopier) copySymlink(srcPath, dstPath string) {
	target, err := os.Readlink(srcPath)
	if err != nil {
		c.fail(srcPath, domain.CopyOpRead, err)
		return
	}

	if existing, err := os.Lstat(dstPath); err == nil {
		if existing.IsDir() {
			c.fail(srcPath, domain.CopyOpSymlink, fmt.Errorf("%s is a directory", dstPath))
			return
		}
		if err := os.Remove(dstPath); err != nil {
			c.fail(srcPath, domain.CopyOpSymlink, err)
			return
		}
	}

	if err := os.Symlink(target, dstPath); err != nil {
		c.fail(srcPath, domain.CopyOpSymlink, err)
		return
	}
	c.result.FilesCopied++
}

func (c *treeCopier) fail(path string, op domain.CopyOp, err error) {
	logger.Warn("%s %s: %v", op, path, err)
	c.result.Failures = append(c.result.Failures, domain.CopyFailure{Path: path, Op: op, Err: err})
}

// step records one processed entry and reports progress.
func (c *treeCopier) step(path string) {
	c.advance(1, path)
}

// skipSubtree counts a directory and its contents as processed.
func (c *treeCopier) skipSubtree(path string) {
	c.advance(1+countEntries(path, c.excl), path)
}

func (c *treeCopier) advance(n int, path string) {
	c.processed += n
	if c.total < c.processed {
		c.total = c.processed
	}
	if c.onProgress != nil {
		c.onProgress(domain.Progress{Processed: c.processed, Total: c.total, Path: path})
	}
}

// prepareDir makes dst an existing real directory that can be written to.
// A symlink in its place is replaced, never followed.
func prepareDir(dst string) error {
	info, err := os.Lstat(dst)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return os.Mkdir(dst, 0o755)
	case err != nil:
		return err
	case info.Mode()&fs.ModeSymlink != 0:
		if err := os.Remove(dst); err != nil {
			return err
		}
		return os.Mkdir(dst, 0o755)
	case !info.IsDir():
		return fmt.Errorf("%s exists and is not a directory", dst)
	case info.Mode().Perm()&0o200 == 0:
		// Restored by applyDirAttrs once the contents are written.
		return os.Chmod(dst, info.Mode().Perm()|0o200)
	}
	return nil
}

// openDest opens dst for writing without following a symlink in its place.
// created reports whether the file did not exist before. A read-only
// existing file is made writable first; its mode is reapplied after the copy.
func openDest(dst string, perm fs.FileMode) (f *os.File, created bool, err error) {
	info, err := os.Lstat(dst)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, false, err
	case info.Mode()&fs.ModeSymlink != 0:
		if err := os.Remove(dst); err != nil {
			return nil, false, err
		}
	case !info.Mode().IsRegular():
		return nil, false, fmt.Errorf("%s exists and is not a regular file", dst)
	default:
		f, err = os.OpenFile(dst, os.O_WRONLY|os.O_TRUNC, 0)
		if errors.Is(err, fs.ErrPermission) && info.Mode().Perm()&0o200 == 0 {
			if chmodErr := os.Chmod(dst, info.Mode().Perm()|0o200); chmodErr != nil {
				return nil, false, err
			}
			f, err = os.OpenFile(dst, os.O_WRONLY|os.O_TRUNC, 0)
		}
		return f, false, err
	}

	// O_EXCL refuses a symlink planted between the Lstat and the open.
	f, err = os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	return f, err == nil, err
}

// countEntries counts the non-excluded entries below dir.
// Unreadable directories contribute nothing.
func countEntries(dir string, excl *domain.ExclusionSet) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, entry := range entries {
		if excl.Match(entry.Name()) {
			continue
		}
		n++
		if entry.IsDir() {
			n += countEntries(filepath.Join(dir, entry.Name()), excl)
		}
	}
	return n
}

// checkReadableDir ensures the source root is a directory that can be listed.
func checkReadableDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrSourceUnreadable, dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s: not a directory", domain.ErrSourceUnreadable, dir)
	}
	f, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrSourceUnreadable, dir, err)
	}
	defer f.Close()
	if _, err := f.ReadDir(1); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %s: %w", domain.ErrSourceUnreadable, dir, err)
	}
	return nil
}

// createUniqueDir creates base, or base_2, base_3, ... when it exists.
// os.Mkdir fails atomically on existing paths, so concurrent runs never
// share a directory.
func createUniqueDir(base string) (string, error) {
	for i := 1; i <= maxCollisionSuffix; i++ {
		candidate := base
		if i > 1 {
			candidate = fmt.Sprintf("%s_%d", base, i)
		}
		err := os.Mkdir(candidate, 0o755)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("%s: too many backups with the same timestamp", base)
}

// applyDirAttrs copies mode and mtime onto a mirrored directory.
// Failures are not reported; some platforms refuse them.
func applyDirAttrs(dir string, info fs.FileInfo) {
	if err := os.Chmod(dir, info.Mode().Perm()); err != nil {
		logger.Debug("chmod %s: %v", dir, err)
	}
	if err := os.Chtimes(dir, info.ModTime(), info.ModTime()); err != nil {
		logger.Debug("chtimes %s: %v", dir, err)
	}
}
