package pgstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonwraymond/postsearch/post"
	"github.com/jonwraymond/postsearch/store"
)

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

// PostgreSQL error codes the store maps to store error kinds.
const (
	codeUniqueViolation = "23505"
	codeUndefinedColumn = "42703"
	codeUndefinedTable  = "42P01"
	codeInvalidRegex    = "2201B"
)

// Store is a post store backed by PostgreSQL.
type Store struct {
	db DB
}

// New wraps db.
func New(db DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("pgstore: nil db")
	}
	return &Store{db: db}, nil
}

// Connect opens a pool for url and verifies it with a ping.
func Connect(ctx context.Context, url string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

const selectColumns = `id, title, description, content, image, author, author_email, author_image, slug, published_at`

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return classify(ctx, "ping", err)
	}
	return nil
}

// FindAll returns up to limit posts in the given order.
func (s *Store) FindAll(ctx context.Context, order store.Sort, limit int) ([]post.Post, error) {
	var q query
	sql := "SELECT " + selectColumns + " FROM blog_posts ORDER BY " + orderBy(order) + q.limit(limit)
	return s.queryPosts(ctx, "find_all", sql, q.args...)
}

// FindByPattern returns posts where any of the pattern's fields match.
func (s *Store) FindByPattern(ctx context.Context, p store.Pattern, order store.Sort, limit int) ([]post.Post, error) {
	if err := p.Validate(); err != nil {
		return nil, store.NewOpError("find_by_pattern", store.ErrInvalidPattern, err)
	}
	var q query
	where := q.match(p)
	sql := "SELECT " + selectColumns + " FROM blog_posts WHERE " + where +
		" ORDER BY " + orderBy(order) + q.limit(limit)
	return s.queryPosts(ctx, "find_by_pattern", sql, q.args...)
}

// FindByAuthorEmail returns the author's posts, newest first.
func (s *Store) FindByAuthorEmail(ctx context.Context, email string, limit int) ([]post.Post, error) {
	var q query
	sql := "SELECT " + selectColumns + " FROM blog_posts WHERE lower(author_email) = lower(" +
		q.arg(strings.TrimSpace(email)) + ") ORDER BY " + orderBy(store.SortNewest) + q.limit(limit)
	return s.queryPosts(ctx, "find_by_author", sql, q.args...)
}

// FindBySlug returns the post with the given slug.
func (s *Store) FindBySlug(ctx context.Context, slug string) (post.Post, error) {
	row := s.db.QueryRow(ctx, "SELECT "+selectColumns+" FROM blog_posts WHERE slug = $1", slug)
	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return post.Post{}, store.NewOpError("find_by_slug", store.ErrNotFound, fmt.Errorf("slug %q", slug))
		}
		return post.Post{}, classify(ctx, "find_by_slug", err)
	}
	return p, nil
}

// AggregateScored runs the pipeline as one statement: the match becomes the
// WHERE clause and each rule a CASE term of the score sum.
func (s *Store) AggregateScored(ctx context.Context, pl store.Pipeline) ([]store.Scored, error) {
	if err := pl.Validate(); err != nil {
		return nil, store.NewOpError("aggregate", store.ErrInvalidPattern, err)
	}
	var q query
	where := q.match(pl.Match)
	score := q.score(pl.Score)
	sql := "SELECT " + selectColumns + ", (" + score + ")::float8 AS relevance_score" +
		" FROM blog_posts WHERE " + where +
		" ORDER BY relevance_score DESC, " + orderBy(store.SortNewest) + q.limit(pl.Limit)

	rows, err := s.db.Query(ctx, sql, q.args...)
	if err != nil {
		return nil, classify(ctx, "aggregate", err)
	}
	defer rows.Close()

	out := []store.Scored{}
	for rows.Next() {
		var sc store.Scored
		sc.Post, err = scanPost(rows, &sc.Score)
		if err != nil {
			return nil, classify(ctx, "aggregate", err)
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(ctx, "aggregate", err)
	}
	return out, nil
}

const textSearchSQL = `SELECT ` + selectColumns + `, ts_rank(search_vector, q)::float8 AS text_score
FROM blog_posts, websearch_to_tsquery('english', $1) q
WHERE search_vector @@ q
ORDER BY text_score DESC, published_at DESC NULLS LAST, id ASC`

// TextSearch queries the weighted tsvector index.
func (s *Store) TextSearch(ctx context.Context, term string) ([]store.Scored, error) {
	rows, err := s.db.Query(ctx, textSearchSQL, strings.TrimSpace(term))
	if err != nil {
		return nil, classifyText(ctx, err)
	}
	defer rows.Close()

	out := []store.Scored{}
	for rows.Next() {
		var sc store.Scored
		sc.Post, err = scanPost(rows, &sc.TextScore)
		if err != nil {
			return nil, classifyText(ctx, err)
		}
		sc.Score = sc.TextScore
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyText(ctx, err)
	}
	return out, nil
}

// RankedTextSearch runs the text query, the candidate match and the
// scoring rules as one statement so only the top Limit rows are read.
func (s *Store) RankedTextSearch(ctx context.Context, tq store.TextQuery) ([]store.Scored, error) {
	if err := tq.Validate(); err != nil {
		return nil, store.NewOpError("text_search", store.ErrInvalidPattern, err)
	}
	var q query
	term := q.arg(strings.TrimSpace(tq.Term))
	weight := q.arg(tq.TextWeight)
	where := q.match(tq.Match)
	score := q.score(tq.Score)
	sql := "SELECT " + selectColumns + ", text_score," +
		" (text_score * " + weight + "::float8 + (" + score + "))::float8 AS relevance_score" +
		" FROM (SELECT " + selectColumns + ", ts_rank(search_vector, tsq)::float8 AS text_score" +
		" FROM blog_posts, websearch_to_tsquery('english', " + term + "::text) tsq" +
		" WHERE search_vector @@ tsq AND " + where + ") hits" +
		" ORDER BY relevance_score DESC, " + orderBy(store.SortNewest) + q.limit(tq.Limit)

	rows, err := s.db.Query(ctx, sql, q.args...)
	if err != nil {
		return nil, classifyText(ctx, err)
	}
	defer rows.Close()

	out := []store.Scored{}
	for rows.Next() {
		var sc store.Scored
		sc.Post, err = scanPost(rows, &sc.TextScore, &sc.Score)
		if err != nil {
			return nil, classifyText(ctx, err)
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyText(ctx, err)
	}
	return out, nil
}

const insertSQL = `INSERT INTO blog_posts
(id, title, description, content, image, author, author_email, author_image, slug, published_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

// Insert normalizes, validates and stores p.
func (s *Store) Insert(ctx context.Context, p post.Post) (post.Post, error) {
	p = p.Normalized()
	if err := p.Validate(); err != nil {
		return post.Post{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	var published *time.Time
	if p.HasPublishedAt() {
		published = &p.PublishedAt
	}
	_, err := s.db.Exec(ctx, insertSQL,
		p.ID, p.Title, p.Description, p.Content, p.Image,
		p.Author, p.AuthorEmail, p.AuthorImage, p.Slug, published,
	)
	if err != nil {
		return post.Post{}, classify(ctx, "insert", err)
	}
	return p, nil
}

func (s *Store) queryPosts(ctx context.Context, op, sql string, args ...any) ([]post.Post, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, classify(ctx, op, err)
	}
	defer rows.Close()

	out := []post.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, classify(ctx, op, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(ctx, op, err)
	}
	return out, nil
}

func scanPost(row pgx.Row, extra ...any) (post.Post, error) {
	var (
		p         post.Post
		published *time.Time
	)
	dest := []any{
		&p.ID, &p.Title, &p.Description, &p.Content, &p.Image,
		&p.Author, &p.AuthorEmail, &p.AuthorImage, &p.Slug, &published,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return post.Post{}, err
	}
	if published != nil {
		p.PublishedAt = published.UTC()
	}
	return p, nil
}

func orderBy(order store.Sort) string {
	if order == store.SortOldest {
		return "published_at ASC NULLS LAST, id ASC"
	}
	return "published_at DESC NULLS LAST, id ASC"
}

func classify(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return store.NewOpError(op, store.ErrDuplicateSlug, err)
		case codeInvalidRegex:
			return store.NewOpError(op, store.ErrInvalidPattern, err)
		}
	}
	return store.NewOpError(op, store.ErrUnavailable, err)
}

func classifyText(ctx context.Context, err error) error {
	var pgErr *pgconn.PgError
	if ctx.Err() == nil && errors.As(err, &pgErr) &&
		(pgErr.Code == codeUndefinedColumn || pgErr.Code == codeUndefinedTable) {
		return store.NewOpError("text_search", store.ErrIndexUnavailable, err)
	}
	return classify(ctx, "text_search", err)
}

var (
	_ store.Store        = (*Store)(nil)
	_ store.Pinger       = (*Store)(nil)
	_ store.IndexManager = (*Store)(nil)
	_ store.SlugFinder   = (*Store)(nil)
	_ store.AuthorFinder = (*Store)(nil)
	_ store.Writer       = (*Store)(nil)

	_ store.RankedTextSearcher = (*Store)(nil)
)
