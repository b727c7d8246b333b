// internal/writers/yaml.go
package writers

import (
	"io"

	"gopkg.in/yaml.v3"

	"fealden/pkg/api"
)

// WriteYAML streams one YAML document per solution.
func WriteYAML(w io.Writer, in <-chan api.SolutionV1) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for s := range in {
		if err := enc.Encode(s); err != nil {
			for range in {
			}
			if IsBrokenPipe(err) {
				return nil
			}
			return err
		}
	}
	if err := enc.Close(); err != nil && !IsBrokenPipe(err) {
		return err
	}
	return nil
}

func init() {
	RegisterSolution(FormatYAML, func(w io.Writer, in <-chan api.SolutionV1, _ Options) error {
		return WriteYAML(w, in)
	})
}
