package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/postsearch/config"
	"github.com/jonwraymond/postsearch/metrics"
	"github.com/jonwraymond/postsearch/pgstore"
	"github.com/jonwraymond/postsearch/post"
	"github.com/jonwraymond/postsearch/search"
	"github.com/jonwraymond/postsearch/store"
)

// openStore connects the configured store. The returned func releases it.
func (a *app) openStore(ctx context.Context) (store.Store, func(), error) {
	switch a.cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := pgstore.Connect(ctx, a.cfg.Store.PostgresURL, a.cfg.Store.MaxConns)
		if err != nil {
			return nil, nil, err
		}
		st, err := pgstore.New(pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		a.logger.InfoContext(ctx, "connected to postgres", "max_conns", a.cfg.Store.MaxConns)
		return st, pool.Close, nil

	default:
		st := store.NewInMemoryStore()
		if a.cfg.Store.SeedSamples {
			inserted, _, err := seedSamples(ctx, st)
			if err != nil {
				_ = st.Close()
				return nil, nil, err
			}
			a.logger.InfoContext(ctx, "seeded in-memory store", "posts", inserted)
		}
		if err := st.EnsureIndexes(ctx); err != nil {
			_ = st.Close()
			return nil, nil, err
		}
		return st, func() { _ = st.Close() }, nil
	}
}

func (a *app) newService(st store.Store, m *metrics.Metrics) (*search.Service, error) {
	return search.NewService(st, search.Options{
		Limit:           a.cfg.Search.Limit,
		TextScoreWeight: a.cfg.Search.TextScoreWeight,
		Logger:          a.logger,
		Metrics:         m,
	})
}

// seedSamples inserts the sample posts, skipping slugs already present.
func seedSamples(ctx context.Context, w store.Writer) (inserted, skipped int, err error) {
	samples, err := post.Samples()
	if err != nil {
		return 0, 0, err
	}
	for _, p := range samples {
		if _, err := w.Insert(ctx, p); err != nil {
			if errors.Is(err, store.ErrDuplicateSlug) {
				skipped++
				continue
			}
			return inserted, skipped, fmt.Errorf("insert %q: %w", p.Slug, err)
		}
		inserted++
	}
	return inserted, skipped, nil
}
