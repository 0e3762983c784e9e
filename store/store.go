package store

import (
	"context"

	"github.com/jonwraymond/postsearch/post"
)

// Store is the read contract search runs against.
type Store interface {
	// FindAll returns up to limit posts in the given order.
	FindAll(ctx context.Context, order Sort, limit int) ([]post.Post, error)
	// FindByPattern returns posts where any of the pattern's fields match.
	// A limit of 0 returns every match.
	FindByPattern(ctx context.Context, p Pattern, order Sort, limit int) ([]post.Post, error)
	// AggregateScored filters by the pipeline's match, scores each post with
	// its rules and returns the results ordered by score, then recency.
	AggregateScored(ctx context.Context, pl Pipeline) ([]Scored, error)
	// TextSearch queries the text index. Every hit carries TextScore.
	TextSearch(ctx context.Context, term string) ([]Scored, error)
}

// RankedTextSearcher scores text index hits in the store itself and
// returns only the top of the ranking.
type RankedTextSearcher interface {
	// RankedTextSearch returns hits that also satisfy the query's match.
	// Score is TextWeight times TextScore plus the rule points.
	RankedTextSearch(ctx context.Context, q TextQuery) ([]Scored, error)
}

// Pinger reports store reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IndexManager builds the indexes search relies on. EnsureIndexes must be
// idempotent.
type IndexManager interface {
	EnsureIndexes(ctx context.Context) error
}

// SlugFinder looks a post up by slug.
type SlugFinder interface {
	FindBySlug(ctx context.Context, slug string) (post.Post, error)
}

// AuthorFinder lists an author's posts, newest first.
type AuthorFinder interface {
	FindByAuthorEmail(ctx context.Context, email string, limit int) ([]post.Post, error)
}

// Writer inserts posts. Insert returns the stored post with its ID set.
type Writer interface {
	Insert(ctx context.Context, p post.Post) (post.Post, error)
}

// Scored is a post with the scores a query assigned to it.
type Scored struct {
	Post      post.Post
	Score     float64
	TextScore float64
}
