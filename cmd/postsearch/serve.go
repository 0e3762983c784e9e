package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/postsearch/api"
	"github.com/jonwraymond/postsearch/mcpserver"
	"github.com/jonwraymond/postsearch/metrics"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP search API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	st, release, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer release()

	m := metrics.New(prometheus.DefaultRegisterer)
	svc, err := a.newService(st, m)
	if err != nil {
		return err
	}

	opts := api.Options{
		Logger:            a.logger,
		Metrics:           m,
		SearchMaxAge:      a.cfg.Cache.SearchMaxAge,
		ListMaxAge:        a.cfg.Cache.ListMaxAge,
		ReadHeaderTimeout: a.cfg.HTTP.ReadHeaderTimeout,
	}
	if a.cfg.MCP.Enabled {
		mcpSrv, err := mcpserver.New(svc, st, mcpserver.Config{
			Name:    "postsearch",
			Version: version,
			Logger:  a.logger,
		})
		if err != nil {
			return err
		}
		opts.MCPHandler = mcpSrv.HTTPHandler()
		opts.MCPPath = a.cfg.MCP.Path
	}

	srv, err := api.New(svc, st, opts)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(a.cfg.HTTP.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info("server exited properly")
	return nil
}
