package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/postsearch/config"
	"github.com/jonwraymond/postsearch/store"
)

func newSetupIndexesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "setup-indexes",
		Short: "Create the text, slug and publication date indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			st, release, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer release()

			im, ok := st.(store.IndexManager)
			if !ok {
				return fmt.Errorf("%s store does not manage indexes", a.cfg.Store.Driver)
			}
			if err := im.EnsureIndexes(ctx); err != nil {
				return err
			}
			printf(cmd, "indexes ready (%s)\n", a.cfg.Store.Driver)
			return nil
		},
	}
}

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			st, release, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer release()

			w, ok := st.(store.Writer)
			if !ok {
				return fmt.Errorf("%s store is read-only", a.cfg.Store.Driver)
			}
			if im, ok := st.(store.IndexManager); ok && a.cfg.Store.Driver == config.DriverPostgres {
				if err := im.EnsureIndexes(ctx); err != nil {
					return err
				}
			}
			inserted, skipped, err := seedSamples(ctx, w)
			if err != nil {
				return err
			}
			printf(cmd, "inserted %d posts, skipped %d existing\n", inserted, skipped)
			return nil
		},
	}
}
