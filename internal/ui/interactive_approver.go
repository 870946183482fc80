package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pgstage/pgstage/pkg/pgstage"
)

// InteractiveApprover implements the Approver interface for console-based
// interactive confirmation. It prompts the user to type the schema name
// before the load proceeds in a schema holding unmanaged tables.
type InteractiveApprover struct {
	verbose bool
	input   io.Reader
	output  io.Writer
}

// NewInteractiveApprover creates an InteractiveApprover reading from stdin
// and prompting on stderr.
func NewInteractiveApprover(verbose bool) pgstage.Approver {
	return &InteractiveApprover{
		verbose: verbose,
		input:   os.Stdin,
		output:  os.Stderr,
	}
}

// RequestApproval prompts the user to type the schema name to confirm.
func (a *InteractiveApprover) RequestApproval(ctx context.Context, schema string, strayTables []string) (bool, error) {
	fmt.Fprintf(a.output, "\n⚠️  WARNING: Schema '%s' contains %d table(s) not managed by this load:\n", schema, len(strayTables))
	for _, table := range strayTables {
		fmt.Fprintf(a.output, "    %s\n", table)
	}
	fmt.Fprintln(a.output, "These tables will NOT be dropped, but the schema is expected to be owned by the loader.")
	fmt.Fprintf(a.output, "\nTo proceed, type the schema name '%s' and press Enter: ", schema)

	// Read user input with context cancellation support
	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		reader := bufio.NewReader(a.input)
		input, err := reader.ReadString('\n')
		if err != nil {
			errChan <- err
			return
		}
		inputChan <- strings.TrimSpace(input)
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-errChan:
		return false, fmt.Errorf("failed to read input: %w", err)
	case input := <-inputChan:
		if input == schema {
			fmt.Fprintln(a.output, "✓ Confirmed. Proceeding with the load...")
			return true, nil
		}
		fmt.Fprintf(a.output, "✗ Input '%s' does not match schema name '%s'. Load cancelled.\n", input, schema)
		return false, nil
	}
}

// Verify InteractiveApprover implements the Approver interface at compile time
var _ pgstage.Approver = (*InteractiveApprover)(nil)
