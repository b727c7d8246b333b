// internal/writers/registry.go
package writers

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"syscall"

	"fealden/pkg/api"
)

// Options shape the text renderer; the structured formats ignore them.
type Options struct {
	Header bool // TSV header row
	Pretty bool // fold table under each row
}

// SolutionWriterFunc drains in and renders every solution to w.
type SolutionWriterFunc func(w io.Writer, in <-chan api.SolutionV1, opt Options) error

// SolutionWriters maps a format to its writer. Register in init() blocks.
var SolutionWriters = map[string]SolutionWriterFunc{}

// RegisterSolution adds or replaces the writer for format.
func RegisterSolution(format string, fn SolutionWriterFunc) { SolutionWriters[format] = fn }

// Formats lists the registered formats, sorted.
func Formats() []string {
	out := make([]string, 0, len(SolutionWriters))
	for f := range SolutionWriters {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// WriteSolutions dispatches to the writer registered for format.
func WriteSolutions(format string, w io.Writer, in <-chan api.SolutionV1, opt Options) error {
	fn, ok := SolutionWriters[format]
	if !ok {
		// keep the producer from blocking on a writer that will never read
		for range in {
		}
		return fmt.Errorf("unknown solution format %q (no writer registered)", format)
	}
	return fn(w, in, opt)
}

// StartSolutionWriter spins up a writer goroutine. Close the returned
// channel, then read the error channel once.
func StartSolutionWriter(out io.Writer, format string, opt Options, bufSize int) (chan<- api.SolutionV1, <-chan error) {
	if bufSize <= 0 {
		bufSize = 64
	}
	in := make(chan api.SolutionV1, bufSize)
	errCh := make(chan error, 1)
	go func() {
		errCh <- WriteSolutions(format, out, in, opt)
	}()
	return in, errCh
}

// IsBrokenPipe reports whether err means the reader went away, as when the
// output is piped into head. Writers treat that as a clean stop.
func IsBrokenPipe(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe)
}
