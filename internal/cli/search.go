// internal/cli/search.go
package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"fealden/internal/cmdutil"
	"fealden/internal/search"
	"fealden/internal/sensor"
	"fealden/internal/writers"
	"fealden/pkg/api"
)

type outputFlags struct {
	format string
	header bool
	pretty bool
	gain   bool
}

func (o *outputFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.format, "format", writers.FormatText, "output format: "+strings.Join(writers.Formats(), ", "))
	f.BoolVar(&o.header, "header", true, "print a header row (text)")
	f.BoolVar(&o.pretty, "pretty", false, "draw the fold table under each row (text)")
	f.BoolVar(&o.gain, "gain", false, "include the predicted gain curve (json, jsonl, yaml)")
}

func (o *outputFlags) validate() error {
	if !slices.Contains(writers.Formats(), o.format) {
		return fmt.Errorf("unknown --format %q (want one of %s)", o.format, strings.Join(writers.Formats(), ", "))
	}
	return nil
}

func (a *app) writeSolutions(o outputFlags, list []api.SolutionV1) error {
	in, done := writers.StartSolutionWriter(a.stdout, o.format, writers.Options{Header: o.header, Pretty: o.pretty}, len(list))
	for _, s := range list {
		in <- s
	}
	close(in)
	if err := <-done; err != nil {
		return fail(ExitIO, err)
	}
	return nil
}

func newSearchCmd(a *app) *cobra.Command {
	var (
		out       outputFlags
		maxEnergy float64
	)
	cmd := &cobra.Command{
		Use:   "search RECOGNITION",
		Short: "Search for stems that make RECOGNITION a working sensor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recog, err := sensor.ParseRecognition(args[0])
			if err != nil {
				return fail(ExitUsage, err)
			}
			if err := out.validate(); err != nil {
				return fail(ExitUsage, err)
			}
			opts := a.searchOptions()
			if cmd.Flags().Changed("max-energy") {
				opts.Thresholds.MaxEnergy = &maxEnergy
			}
			return a.runSearch(cmd.Context(), recog, opts, out)
		},
	}
	f := cmd.Flags()
	f.Duration("max-time", search.DefaultMaxTime, "search time budget")
	f.Float64("ratio-lo", 0.9, "lower bound of binding_on/nonbinding_off (exclusive)")
	f.Float64("ratio-hi", 1.1, "upper bound of binding_on/nonbinding_off (exclusive)")
	f.Float64("max-unknown", 0.2, "largest accepted share of unclassifiable folds (exclusive)")
	f.Int("fold-lo", 0, "fewest folds accepted (needs --fold-hi)")
	f.Int("fold-hi", 0, "most folds accepted (needs --fold-lo)")
	f.Float64Var(&maxEnergy, "max-energy", 0, "slack above the recognition energy the lowest fold must stay within")
	f.Int("solutions", 1, "stop after this many accepted sensors")
	f.String("hybrid-ss-min", "hybrid-ss-min", "path to UNAFold's hybrid-ss-min")
	out.register(cmd)

	for key, flag := range map[string]string{
		"search.max_time":      "max-time",
		"search.ratio_lo":      "ratio-lo",
		"search.ratio_hi":      "ratio-hi",
		"search.max_unknown":   "max-unknown",
		"search.fold_lo":       "fold-lo",
		"search.fold_hi":       "fold-hi",
		"search.max_solutions": "solutions",
		"predictor.command":    "hybrid-ss-min",
	} {
		_ = a.v.BindPFlag(key, f.Lookup(flag))
	}
	return cmd
}

func (a *app) runSearch(ctx context.Context, recog string, opts search.Options, out outputFlags) error {
	cands, st, err := search.Search(ctx, recog, opts, a.newPredictor())
	switch {
	case ctx.Err() != nil:
		return ctx.Err()
	case err != nil:
		return fail(ExitIO, err)
	}
	if len(cands) == 0 {
		cmdutil.Warnf(a.stderr, a.quiet, "no sensor for %s accepted within %s (%d candidates evaluated)",
			recog, opts.MaxTime, st.Evaluated)
		return fail(ExitNoSolution, nil)
	}
	return a.writeSolutions(out, writers.ToAPISolutions(cands, "", out.gain))
}
