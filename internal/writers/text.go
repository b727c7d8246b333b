// internal/writers/text.go
package writers

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"fealden/pkg/api"
)

// FormatRowTSV returns the TSV columns of one solution (no trailing newline).
func FormatRowTSV(s api.SolutionV1) string {
	lowest := 0.0
	for i, f := range s.Folds {
		if i == 0 || f.Energy < lowest {
			lowest = f.Energy
		}
	}
	return fmt.Sprintf("%s\t%s\t%s\t%s\t%d\t%.4f\t%.4f\t%.4g\t%d\t%.2f",
		s.Recognition, s.Sequence, s.Stem1, s.Stem2, s.QuencherIndex,
		s.Ratio, s.Unknown, s.BindingConstant, len(s.Folds), lowest)
}

// RenderPretty draws the fold table of a solution, one structure per line
// aligned under the sequence.
func RenderPretty(s api.SolutionV1) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %-8s %-18s %-8s %s\n", "energy", "type", "share", s.Sequence)
	for _, f := range s.Folds {
		fmt.Fprintf(&b, "  %-8.2f %-18s %-8.3f %s", f.Energy, f.Type, f.Fraction, f.Structure)
		if f.PathLength > 0 {
			fmt.Fprintf(&b, "  path=%d", f.PathLength)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// StreamText writes TSV rows as solutions arrive.
func StreamText(w io.Writer, in <-chan api.SolutionV1, opt Options) error {
	bw := bufio.NewWriter(w)
	var werr error
	write := func(s string) {
		if werr == nil {
			_, werr = bw.WriteString(s)
		}
	}
	if opt.Header {
		write(TSVHeader + "\n")
	}
	for s := range in {
		write(FormatRowTSV(s) + "\n")
		if opt.Pretty {
			write(RenderPretty(s) + "\n")
		}
	}
	if werr == nil {
		werr = bw.Flush()
	}
	if werr != nil && !IsBrokenPipe(werr) {
		return werr
	}
	return nil
}

func init() {
	RegisterSolution(FormatText, StreamText)
}
