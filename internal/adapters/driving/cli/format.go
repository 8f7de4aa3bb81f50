package cli

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/codekeeper/internal/core/domain"
)

// progressPrinter returns a progress callback that rewrites one line
// whenever the whole percentage changes.
func progressPrinter(cmd *cobra.Command, label string) domain.ProgressFunc {
	last := -1
	return func(p domain.Progress) {
		pct := int(p.Percent())
		if pct == last {
			return
		}
		last = pct
		cmd.Printf("\r%s... %3d%% (%d/%d)", label, pct, p.Processed, p.Total)
	}
}

// printResult prints the summary of a run and its per-entry failures.
func printResult(cmd *cobra.Command, verb string, result *domain.BackupResult) {
	if result == nil {
		return
	}
	cmd.Println()
	cmd.Printf("%s %s: %s files, %s directories, %s in %s\n",
		verb, result.Destination,
		humanize.Comma(int64(result.FilesCopied)),
		humanize.Comma(int64(result.DirsCreated)),
		humanize.Bytes(uint64(result.BytesCopied)),
		result.Duration().Round(time.Millisecond))
	if result.Skipped > 0 {
		cmd.Printf("Skipped %d excluded entries\n", result.Skipped)
	}
	if !result.OK() {
		cmd.Printf("%d entries failed:\n", len(result.Failures))
		for _, f := range result.Failures {
			cmd.Printf("  %s\n", f.Error())
		}
	}
}

// lastBackup renders a project's last backup time for listings.
func lastBackup(p *domain.Project) string {
	if p.LastBackupAt.IsZero() {
		return "never"
	}
	return humanize.Time(p.LastBackupAt)
}
