// internal/cli/classify.go
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"fealden/internal/cmdutil"
	"fealden/internal/fold"
	"fealden/internal/scoring"
	"fealden/internal/search"
	"fealden/internal/sensor"
	"fealden/internal/writers"
	"fealden/pkg/api"
)

func parseStem(flag, raw string) (string, error) {
	s := sensor.Normalize(raw)
	if strings.Trim(s, "ACGT") != "" {
		return "", fmt.Errorf("--%s %q: allowed bases are A C G T", flag, raw)
	}
	return s, nil
}

func newClassifyCmd(a *app) *cobra.Command {
	var (
		recog, stem1, stem2 string
		out                 outputFlags
	)
	cmd := &cobra.Command{
		Use:   "classify FILE.ct",
		Short: "Score and validate the folds of a sensor without running a predictor",
		Long: `classify reads the folds of one sensor from a connect (.ct) file, as
written by hybrid-ss-min, classifies every fold and reports whether the
sensor passes the configured acceptance criteria. It exits 1 when it does not.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := sensor.ParseRecognition(recog)
			if err != nil {
				return fail(ExitUsage, err)
			}
			s1, err := parseStem("stem1", stem1)
			if err != nil {
				return fail(ExitUsage, err)
			}
			s2, err := parseStem("stem2", stem2)
			if err != nil {
				return fail(ExitUsage, err)
			}
			if err := out.validate(); err != nil {
				return fail(ExitUsage, err)
			}
			seq := sensor.New(r)
			seq.SetStem1(s1)
			seq.SetStem2(s2)

			f, err := os.Open(args[0])
			if err != nil {
				return fail(ExitIO, err)
			}
			defer f.Close()
			folds, err := fold.ParseCT(f)
			if err != nil {
				return fail(ExitIO, fmt.Errorf("%s: %w", args[0], err))
			}
			for i, fd := range folds {
				if fd.Bases() != seq.String() {
					cmdutil.Warnf(a.stderr, a.quiet, "fold %d of %s is not the sensor %s", i+1, args[0], seq.String())
					break
				}
			}

			scores, classified := scoring.Score(seq, folds)
			v := scoring.Explain(seq, scores, classified, thresholds(a.cfg.Search))
			sol := writers.ToAPISolution(search.Candidate{Sequence: seq, Scores: scores, Folds: classified}, "", out.gain)
			if err := a.writeSolutions(out, []api.SolutionV1{sol}); err != nil {
				return err
			}
			if !a.quiet {
				_, _ = fmt.Fprintf(a.stderr, "accepted=%t folds=%d ratio=%.4f unknown=%.4f ratio_ok=%t unknown_ok=%t folds_ok=%t energy_ok=%t\n",
					v.Accepted(), v.Folds, v.RatioValue, v.UnknownValue, v.Ratio, v.Unknown, v.FoldCount, v.Energy)
			}
			if !v.Accepted() {
				return fail(ExitNoSolution, nil)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&recog, "recognition", "", "recognition site of the sensor")
	f.StringVar(&stem1, "stem1", "", "stem 1 of the sensor")
	f.StringVar(&stem2, "stem2", "", "stem 2 of the sensor")
	_ = cmd.MarkFlagRequired("recognition")
	out.register(cmd)
	return cmd
}
