package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/codekeeper/internal/core/domain"
)

func bufferedCommand(input string) (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader(input))
	return cmd, buf
}

func TestProgressPrinter_OnlyOnChange(t *testing.T) {
	cmd, buf := bufferedCommand("")
	report := progressPrinter(cmd, "Backup")

	report(domain.Progress{Processed: 1, Total: 4})
	report(domain.Progress{Processed: 1, Total: 4})
	report(domain.Progress{Processed: 4, Total: 4})

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, " 25%"))
	assert.Contains(t, out, "Backup... 100% (4/4)")
}

func TestPrintResult(t *testing.T) {
	cmd, buf := bufferedCommand("")
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	result := &domain.BackupResult{
		Destination: "/backups/webapp_20260102_030405",
		FilesCopied: 1200,
		DirsCreated: 3,
		BytesCopied: 2048,
		Skipped:     2,
		Failures:    []domain.CopyFailure{{Path: "/src/a", Op: domain.CopyOpRead, Err: errors.New("denied")}},
		StartedAt:   start,
		FinishedAt:  start.Add(1500 * time.Millisecond),
	}

	printResult(cmd, "Backed up to", result)

	out := buf.String()
	assert.Contains(t, out, "Backed up to /backups/webapp_20260102_030405: 1,200 files, 3 directories, 2.0 kB in 1.5s")
	assert.Contains(t, out, "Skipped 2 excluded entries")
	assert.Contains(t, out, "1 entries failed:")
	assert.Contains(t, out, "read /src/a: denied")
}

func TestPrintResult_Nil(t *testing.T) {
	cmd, buf := bufferedCommand("")

	printResult(cmd, "Deployed to", nil)

	assert.Empty(t, buf.String())
}

func TestLastBackup(t *testing.T) {
	assert.Equal(t, "never", lastBackup(&domain.Project{}))
	p := &domain.Project{LastBackupAt: time.Now().Add(-2 * time.Hour)}
	assert.Equal(t, "2 hours ago", lastBackup(p))
}

func TestConfirm(t *testing.T) {
	orig := isInteractive
	isInteractive = func(*cobra.Command) bool { return true }
	t.Cleanup(func() { isInteractive = orig })

	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes ", true},
		{"n\n", false},
		{"\n", false},
		{"maybe\n", false},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			cmd, buf := bufferedCommand(tt.input)

			ok, err := confirm(cmd, "Proceed?")

			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.Contains(t, buf.String(), "Proceed? [y/N]: ")
		})
	}
}

func TestConfirm_EmptyInput(t *testing.T) {
	orig := isInteractive
	isInteractive = func(*cobra.Command) bool { return true }
	t.Cleanup(func() { isInteractive = orig })
	cmd, _ := bufferedCommand("")

	_, err := confirm(cmd, "Proceed?")

	assert.Error(t, err)
}

func TestConfirm_NotInteractive(t *testing.T) {
	cmd, _ := bufferedCommand("y\n")

	_, err := confirm(cmd, "Proceed?")

	assert.ErrorIs(t, err, errNeedsYes)
}
