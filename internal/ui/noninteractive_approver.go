package ui

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pgstage/pgstage/pkg/pgstage"
)

// NonInteractiveApprover denies approval without prompting. It is used when
// stdin is not a terminal (CI pipelines, cron), where a blocking prompt would
// hang forever. The denial message tells the operator how to proceed.
type NonInteractiveApprover struct {
	output io.Writer
}

// NewNonInteractiveApprover creates a NonInteractiveApprover writing to stderr.
func NewNonInteractiveApprover() pgstage.Approver {
	return &NonInteractiveApprover{output: os.Stderr}
}

// RequestApproval always denies and explains why.
func (a *NonInteractiveApprover) RequestApproval(ctx context.Context, schema string, strayTables []string) (bool, error) {
	fmt.Fprintf(a.output, "Schema '%s' contains %d table(s) not managed by this load: %v\n",
		schema, len(strayTables), strayTables)
	fmt.Fprintln(a.output, "Running non-interactively; cannot prompt for confirmation. Re-run with --force to proceed.")
	return false, nil
}

// Verify NonInteractiveApprover implements the Approver interface at compile time
var _ pgstage.Approver = (*NonInteractiveApprover)(nil)
