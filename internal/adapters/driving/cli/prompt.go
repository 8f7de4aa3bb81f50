package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// errNeedsYes is returned when a confirmation is required but stdin is not a terminal.
var errNeedsYes = errors.New("confirmation required: re-run with --yes")

// isInteractive reports whether the command's input is a terminal.
// Tests replace it.
var isInteractive = func(cmd *cobra.Command) bool {
	f, ok := cmd.InOrStdin().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// confirm asks a y/N question on the command's input.
// Anything but y or yes declines.
func confirm(cmd *cobra.Command, question string) (bool, error) {
	if !isInteractive(cmd) {
		return false, errNeedsYes
	}
	cmd.Printf("%s [y/N]: ", question)
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && answer == "" {
		return false, fmt.Errorf("reading answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
