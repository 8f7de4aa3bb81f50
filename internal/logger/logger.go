// Package logger is the process-wide logrus logger.
//
// Debug, info and warning lines only appear with --verbose. Errors always do.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// FormatEnv selects the log format ("text" or "json").
const FormatEnv = "CODEKEEPER_LOG_FORMAT"

// Fields is a set of structured key/value pairs attached to a log line.
type Fields = logrus.Fields

var base = &logrus.Logger{
	Out:       os.Stderr,
	Formatter: textFormatter(),
	Hooks:     make(logrus.LevelHooks),
	Level:     logrus.ErrorLevel,
}

func textFormatter() logrus.Formatter {
	return &logrus.TextFormatter{
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
		PadLevelText:           true,
	}
}

// SetVerbose switches between debug and error level.
func SetVerbose(v bool) {
	if v {
		base.SetLevel(logrus.DebugLevel)
		return
	}
	base.SetLevel(logrus.ErrorLevel)
}

// IsVerbose reports whether debug lines are written.
func IsVerbose() bool {
	return base.IsLevelEnabled(logrus.DebugLevel)
}

// SetOutput redirects all log lines. Tests use it to capture output.
func SetOutput(w io.Writer) {
	base.SetOutput(w)
}

// SetFormat selects "text" (the default) or "json" output.
func SetFormat(format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		base.SetFormatter(textFormatter())
	case "json":
		base.SetFormatter(&logrus.JSONFormatter{DisableTimestamp: true})
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	return nil
}

// Debug logs per-entry detail when verbose.
func Debug(format string, args ...any) { base.Debugf(format, args...) }

// Info logs run summaries when verbose.
func Info(format string, args ...any) { base.Infof(format, args...) }

// Warn logs recoverable problems when verbose.
func Warn(format string, args ...any) { base.Warnf(format, args...) }

// Error is written regardless of verbosity.
func Error(format string, args ...any) { base.Errorf(format, args...) }

// Section marks the start of a phase such as a backup or deploy.
func Section(name string) {
	base.WithField("section", name).Debug("begin")
}

// WithFields returns an entry carrying fields. It honours the verbose setting.
func WithFields(fields Fields) *logrus.Entry {
	return base.WithFields(fields)
}
