// internal/writers/jsonl.go
package writers

import (
	"encoding/json"
	"io"

	"fealden/internal/jsonlutil"
	"fealden/pkg/api"
)

// StartSolutionJSONLWriter streams each solution as one JSON line (v1).
func StartSolutionJSONLWriter(out io.Writer, bufSize int) (chan<- api.SolutionV1, <-chan error) {
	return jsonlutil.Start[api.SolutionV1](out, bufSize, IsBrokenPipe)
}

func init() {
	RegisterSolution(FormatJSONL, func(w io.Writer, in <-chan api.SolutionV1, _ Options) error {
		pipe, done := StartSolutionJSONLWriter(w, 64)
		for s := range in {
			pipe <- s
		}
		close(pipe)
		return <-done
	})

	RegisterSolution(FormatJSON, func(w io.Writer, in <-chan api.SolutionV1, _ Options) error {
		list := make([]api.SolutionV1, 0, 4)
		for s := range in {
			list = append(list, s)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(list); err != nil && !IsBrokenPipe(err) {
			return err
		}
		return nil
	})
}
