// Package appshell is the process entry of the fealden binary.
package appshell

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// ExitCancelled is reported when a signal stopped an otherwise clean run.
const ExitCancelled = 130

// RunFunc runs one invocation and returns its exit code.
type RunFunc func(ctx context.Context, argv []string, stdout, stderr io.Writer) int

// Main runs run and exits with its code. The first SIGINT or SIGTERM
// cancels the context so searches stop and the daemon drains; a second one
// exits at once.
func Main(run RunFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
		<-sigs
		_, _ = fmt.Fprintln(os.Stderr, "fealden: interrupted twice, exiting")
		os.Exit(ExitCancelled)
	}()

	argv := os.Args[1:]
	if len(argv) == 0 {
		argv = []string{"-h"}
	}

	code := run(ctx, argv, os.Stdout, os.Stderr)
	if ctx.Err() != nil && code == 0 {
		code = ExitCancelled
	}

	signal.Stop(sigs)
	cancel()
	os.Exit(code)
}
