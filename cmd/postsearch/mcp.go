package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/postsearch/mcpserver"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the search tools over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, release, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer release()

			svc, err := a.newService(st, nil)
			if err != nil {
				return err
			}
			srv, err := mcpserver.New(svc, st, mcpserver.Config{
				Name:    "postsearch",
				Version: version,
				Logger:  a.logger,
			})
			if err != nil {
				return err
			}
			a.logger.InfoContext(ctx, "serving MCP over stdio")
			return srv.ServeStdio(ctx)
		},
	}
}
