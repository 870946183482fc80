package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/pgstage/pgstage/internal/cli"
	"github.com/pgstage/pgstage/pkg/pgstage"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(pgstage.ExitPanic)
		}
	}()

	if err := cli.Execute(); err != nil {
		os.Exit(pgstage.ExitCodeForError(err))
	}
}
