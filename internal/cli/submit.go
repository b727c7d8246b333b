// internal/cli/submit.go
package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"fealden/internal/queue"
	"fealden/internal/sensor"
	"fealden/internal/writers"
	"fealden/pkg/api"
)

func newSubmitCmd(a *app) *cobra.Command {
	var (
		outputDir, email      string
		maxTime               time.Duration
		ratioLo, ratioHi      float64
		maxUnknown, maxEnergy float64
		foldLo, foldHi        int
		solutions             int
	)
	cmd := &cobra.Command{
		Use:   "submit RECOGNITION",
		Short: "Queue a search for the daemon",
		Long: `submit writes a search request into the configured work queue. The
daemon stores the result as solution.json or failed.json in the output
directory, by default <locations.solutions>/RECOGNITION.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recog, err := sensor.ParseRecognition(args[0])
			if err != nil {
				return fail(ExitUsage, err)
			}
			q, err := queue.New(a.cfg.Locations.WorkQueue, 0)
			if err != nil {
				return fail(ExitIO, err)
			}

			dir := outputDir
			if dir == "" {
				store := writers.SolutionStore{Root: a.cfg.Locations.Solutions}
				if dir, err = store.Prepare(recog); err != nil {
					return fail(ExitIO, err)
				}
			} else if dir, err = filepath.Abs(dir); err != nil {
				return fail(ExitUsage, err)
			}
			if writers.Solved(dir) {
				_, _ = fmt.Fprintf(a.stdout, "%s already solved in %s\n", recog, dir)
				return nil
			}

			budget := a.cfg.Search.MaxTime
			if cmd.Flags().Changed("max-time") {
				budget = maxTime
			}
			req := api.NewRequest(recog, dir, budget)
			req.Email = email
			f := cmd.Flags()
			if f.Changed("solutions") {
				req.NumSolutions = solutions
			}
			if f.Changed("ratio-lo") || f.Changed("ratio-hi") {
				req.BindingRatioLo, req.BindingRatioHi = &ratioLo, &ratioHi
			}
			if f.Changed("max-unknown") {
				req.MaxUnknown = &maxUnknown
			}
			if f.Changed("fold-lo") || f.Changed("fold-hi") {
				req.NumFoldsLo, req.NumFoldsHi = &foldLo, &foldHi
			}
			if f.Changed("max-energy") {
				req.MaxEnergy = &maxEnergy
			}
			if err := req.Validate(); err != nil {
				return fail(ExitUsage, err)
			}
			if err := writers.ClearFailure(dir); err != nil {
				return fail(ExitIO, err)
			}
			if _, err := q.Put(req); err != nil {
				return fail(ExitIO, err)
			}
			a.log.Info("request queued", "request_id", req.ID, "recognition", recog, "queue", q.Dir())
			_, _ = fmt.Fprintf(a.stdout, "%s\t%s\n", req.ID, dir)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&outputDir, "output-dir", "", "directory that receives the result (must exist)")
	f.StringVar(&email, "email", "", "address to record with the request")
	f.DurationVar(&maxTime, "max-time", time.Minute, "search time budget")
	f.Float64Var(&ratioLo, "ratio-lo", 0.9, "lower bound of binding_on/nonbinding_off (set with --ratio-hi)")
	f.Float64Var(&ratioHi, "ratio-hi", 1.1, "upper bound of binding_on/nonbinding_off (set with --ratio-lo)")
	f.Float64Var(&maxUnknown, "max-unknown", 0.2, "largest accepted share of unclassifiable folds")
	f.IntVar(&foldLo, "fold-lo", 1, "fewest folds accepted (set with --fold-hi)")
	f.IntVar(&foldHi, "fold-hi", 100, "most folds accepted (set with --fold-lo)")
	f.Float64Var(&maxEnergy, "max-energy", 0, "slack above the recognition energy the lowest fold must stay within")
	f.IntVar(&solutions, "solutions", 1, "accepted sensors to collect")
	return cmd
}
