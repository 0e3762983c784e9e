package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/postsearch/config"
	"github.com/jonwraymond/postsearch/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type app struct {
	configPath string
	logLevel   string
	driver     string

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "postsearch",
		Short: "Blog post search and relevance ranking",
		Long: `postsearch ranks blog posts for a search term using a full-text index when
one exists, a weighted field-scoring pipeline otherwise, and a plain
title/description match as the last resort.

Examples:
  # Serve the HTTP API over the in-memory sample store
  postsearch serve

  # Create the Postgres text index and seed the sample posts
  DATABASE_URL=postgres://localhost/blog postsearch --driver postgres setup-indexes
  DATABASE_URL=postgres://localhost/blog postsearch --driver postgres seed

  # Search from the command line
  postsearch search "orange theory"`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug|info|warn|error")
	root.PersistentFlags().StringVar(&a.driver, "driver", "", "Store driver: memory|postgres")

	root.AddCommand(
		newServeCmd(a),
		newSetupIndexesCmd(a),
		newSeedCmd(a),
		newSearchCmd(a),
		newMCPCmd(a),
	)
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.driver != "" {
		cfg.Store.Driver = a.driver
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg
	a.logger = logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		OTel:   cfg.Log.OTel,
		Name:   "postsearch",
		Writer: cmd.ErrOrStderr(),
	})
	return nil
}

// commandContext returns the command context, or a background context when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printf(cmd *cobra.Command, format string, args ...any) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
