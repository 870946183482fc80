package ui

import (
	"os"

	"github.com/pgstage/pgstage/pkg/pgstage"
	"golang.org/x/term"
)

// IsInteractive reports whether the process can prompt the user.
// CI and PGSTAGE_NON_INTERACTIVE force non-interactive mode regardless of
// the attached terminals.
func IsInteractive() bool {
	if os.Getenv("PGSTAGE_NON_INTERACTIVE") != "" || os.Getenv("CI") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}

// NewApprover selects the approver for the current environment: interactive
// prompting on a terminal, automatic denial otherwise.
func NewApprover(verbose bool) pgstage.Approver {
	if IsInteractive() {
		return NewInteractiveApprover(verbose)
	}
	return NewNonInteractiveApprover()
}
