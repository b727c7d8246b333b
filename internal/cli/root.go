// Package cli is the fealden command line: one-shot searches, offline
// classification of .ct files, queue submission and the daemon.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fealden/internal/config"
	"fealden/internal/logging"
	"fealden/internal/writers"
)

// Exit codes.
const (
	ExitOK         = 0
	ExitNoSolution = 1
	ExitUsage      = 2
	ExitIO         = 3
	ExitCancelled  = 130
)

// exitError carries an exit code through cobra. A nil err means the
// command already told the user what happened.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func fail(code int, err error) error { return &exitError{code: code, err: err} }

// app is the state shared by every subcommand of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	v        *viper.Viper
	cfgFile  string
	quiet    bool
	cfg      config.Config
	log      *slog.Logger
	closeLog func() error
}

func newRoot(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "fealden",
		Short: "Design fluorescent transcription-factor beacons",
		Long: `fealden searches for stem sequences that turn a transcription factor
recognition site into a fluorescent beacon: dark while the stems are
closed, bright once the recognition site hybridises and the protein binds.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: fealden.yaml in /etc/fealden, ./etc or .)")
	pf.String("log-level", "info", "log level: debug, info, warn or error")
	pf.String("log-file", "", "also write JSON logs to this file")
	pf.BoolVarP(&a.quiet, "quiet", "q", false, "only log errors and suppress warnings")
	_ = a.v.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = a.v.BindPFlag("log.file", pf.Lookup("log-file"))

	root.AddCommand(
		newSearchCmd(a),
		newClassifyCmd(a),
		newSubmitCmd(a),
		newServeCmd(a),
		newVersionCmd(a),
	)
	return root
}

// setup reads the configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	if err := config.Read(a.v, a.cfgFile); err != nil {
		return fail(ExitUsage, err)
	}
	cfg, err := config.Decode(a.v)
	if err != nil {
		return fail(ExitUsage, err)
	}
	if cmd.Name() == "serve" && cfg.Log.File == "" {
		cfg.Log.File = cfg.Locations.Log
	}
	if a.quiet {
		cfg.Log.Level = "error"
	}
	log, closeLog, err := logging.Setup(cfg.Log, a.stderr)
	if err != nil {
		return fail(ExitUsage, err)
	}
	a.cfg, a.log, a.closeLog = cfg, log, closeLog
	if cfg.File != "" {
		log.Debug("configuration loaded", "file", cfg.File)
	}
	return nil
}

// Run executes one fealden invocation and returns its exit code.
func Run(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)
	a := &app{stdout: outw, stderr: stderr, v: config.NewViper()}
	root := newRoot(a)
	root.SetArgs(argv)
	root.SetOut(outw)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if a.closeLog != nil {
		_ = a.closeLog()
	}
	if e := outw.Flush(); e != nil && !writers.IsBrokenPipe(e) {
		_, _ = fmt.Fprintln(stderr, e)
		return ExitIO
	}
	return exitCode(err, stderr)
}

func exitCode(err error, stderr io.Writer) int {
	var ee *exitError
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitCancelled
	case errors.As(err, &ee):
		if ee.err != nil {
			_, _ = fmt.Fprintln(stderr, "error:", ee.err)
		}
		return ee.code
	default:
		// cobra argument and flag errors
		_, _ = fmt.Fprintln(stderr, "error:", err)
		_, _ = fmt.Fprintln(stderr, "Run 'fealden --help' for usage.")
		return ExitUsage
	}
}
