package pgstore

import (
	"context"
	"regexp"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS blog_posts (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	content      TEXT NOT NULL DEFAULT '',
	image        TEXT NOT NULL DEFAULT '',
	author       TEXT NOT NULL DEFAULT '',
	author_email TEXT NOT NULL DEFAULT '',
	author_image TEXT NOT NULL DEFAULT '',
	slug         TEXT NOT NULL,
	published_at TIMESTAMPTZ
)`,
}

var indexStatements = []string{
	`ALTER TABLE blog_posts ADD COLUMN IF NOT EXISTS search_vector tsvector
	GENERATED ALWAYS AS (
		setweight(to_tsvector('english', coalesce(title, '')), 'A') ||
		setweight(to_tsvector('english', coalesce(description, '')), 'B') ||
		setweight(to_tsvector('english', coalesce(author, '')), 'C') ||
		setweight(to_tsvector('english', coalesce(content, '')), 'D')
	) STORED`,
	`CREATE INDEX IF NOT EXISTS blog_posts_search_idx ON blog_posts USING GIN (search_vector)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS blog_posts_slug_idx ON blog_posts (slug)`,
	`CREATE INDEX IF NOT EXISTS blog_posts_published_at_idx ON blog_posts (published_at DESC)`,
}

// EnsureSchema creates the blog_posts table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return s.exec(ctx, "ensure_schema", schemaStatements)
}

// EnsureIndexes creates the schema, the weighted text index, the unique
// slug index and the publication date index. It is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if err := s.EnsureSchema(ctx); err != nil {
		return err
	}
	return s.exec(ctx, "ensure_indexes", indexStatements)
}

func (s *Store) exec(ctx context.Context, op string, statements []string) error {
	for _, stmt := range statements {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return classify(ctx, op, err)
		}
	}
	return nil
}

// regexpQuote escapes term for PostgreSQL advanced regular expressions.
// QuoteMeta's escapes are all valid ARE escapes.
func regexpQuote(term string) string {
	return regexp.QuoteMeta(term)
}
