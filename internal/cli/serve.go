// internal/cli/serve.go
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"fealden/internal/httpapi"
	"fealden/internal/notify"
	"fealden/internal/queue"
	"fealden/internal/server"
	"fealden/internal/writers"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the search daemon and its HTTP front end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg
			if err := cfg.Locations.Validate(); err != nil {
				return fail(ExitUsage, err)
			}
			removePID, err := server.WritePIDFile(cfg.Locations.PID)
			if err != nil {
				return fail(ExitIO, err)
			}
			defer func() {
				if err := removePID(); err != nil {
					a.log.Warn("pid file left behind", "err", err)
				}
			}()

			q, err := queue.New(cfg.Locations.WorkQueue, cfg.Server.PollInterval)
			if err != nil {
				return fail(ExitUsage, err)
			}
			store := writers.SolutionStore{Root: cfg.Locations.Solutions}
			srvCfg := server.Config{
				Workers: cfg.Server.Workers,
				Search:  a.searchOptions(),
				Gain:    true,
				BaseURL: cfg.Mail.BaseURL,
			}
			if m := notify.NewSMTP(cfg.Mail); m != nil {
				srvCfg.Notifier = m
				a.log.Info("completion notices enabled", "relay", cfg.Mail.Host, "from", cfg.Mail.From)
			}
			srv := server.New(q, a.newPredictor(), srvCfg, a.log)

			ctx := cmd.Context()
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return srv.Run(gctx) })
			if cfg.Server.Listen != "" {
				front := httpapi.New(q, store, cfg.Search.MaxTime, a.log)
				a.log.Info("http front end listening", "addr", cfg.Server.Listen)
				g.Go(func() error { return httpapi.Serve(gctx, front, cfg.Server.Listen) })
			}
			err = g.Wait()
			if ctx.Err() != nil && (err == nil || errors.Is(err, context.Canceled)) {
				return nil
			}
			if err != nil {
				return fail(ExitIO, err)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.Int("workers", 2, "concurrent searches")
	f.String("listen", ":8080", "HTTP listen address; empty disables the front end")
	_ = a.v.BindPFlag("server.workers", f.Lookup("workers"))
	_ = a.v.BindPFlag("server.listen", f.Lookup("listen"))
	return cmd
}
