package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture redirects output for the duration of the test.
func capture(t *testing.T, verbose bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verbose)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestDebug_WhenVerbose(t *testing.T) {
	buf := capture(t, true)

	Debug("copying %s", "src/app.js")

	out := buf.String()
	assert.Contains(t, out, "level=debug")
	assert.Contains(t, out, "copying src/app.js")
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	buf := capture(t, false)

	Debug("hidden")
	Info("hidden")
	Warn("hidden")
	Section("Hidden")

	assert.Empty(t, buf.String())
}

func TestInfoAndWarn_WhenVerbose(t *testing.T) {
	buf := capture(t, true)

	Info("copied %d files", 3)
	Warn("read %s failed", "x")

	out := buf.String()
	assert.Contains(t, out, "level=info")
	assert.Contains(t, out, "copied 3 files")
	assert.Contains(t, out, "level=warning")
	assert.Contains(t, out, "read x failed")
}

func TestError_AlwaysPrinted(t *testing.T) {
	buf := capture(t, false)

	Error("scheduler stopped: %v", "boom")

	assert.Contains(t, buf.String(), "scheduler stopped: boom")
}

func TestSection_WhenVerbose(t *testing.T) {
	buf := capture(t, true)

	Section("Backup")

	out := buf.String()
	assert.Contains(t, out, "section=Backup")
	assert.Contains(t, out, "begin")
}

func TestSetFormat(t *testing.T) {
	buf := capture(t, true)
	t.Cleanup(func() { _ = SetFormat("text") })

	require.NoError(t, SetFormat("JSON"))
	Info("copied %d files", 3)
	assert.Contains(t, buf.String(), `"msg":"copied 3 files"`)
	assert.Contains(t, buf.String(), `"level":"info"`)

	buf.Reset()
	require.NoError(t, SetFormat(""))
	Info("plain")
	assert.Contains(t, buf.String(), "msg=plain")

	assert.Error(t, SetFormat("xml"))
}

func TestWithFields(t *testing.T) {
	buf := capture(t, true)

	WithFields(Fields{"project": "webapp", "files": 12}).Info("backup finished")

	out := buf.String()
	assert.Contains(t, out, "backup finished")
	assert.Contains(t, out, "project=webapp")
	assert.Contains(t, out, "files=12")
}
