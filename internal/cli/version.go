package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"fealden/internal/version"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// no configuration needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(*cobra.Command, []string) error {
			_, _ = fmt.Fprintf(a.stdout, "fealden version %s\n", version.Version)
			return nil
		},
	}
}
