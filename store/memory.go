package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jonwraymond/postsearch/post"
)

// InMemoryStore keeps posts in memory. The text index is built by
// EnsureIndexes; until then TextSearch reports ErrIndexUnavailable.
type InMemoryStore struct {
	mu     sync.RWMutex
	posts  map[string]post.Post
	slugs  map[string]string
	text   *textIndex
	closed bool
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		posts: make(map[string]post.Post),
		slugs: make(map[string]string),
	}
}

// Insert normalizes, validates and stores p. A missing ID is replaced by a
// random UUID.
func (s *InMemoryStore) Insert(ctx context.Context, p post.Post) (post.Post, error) {
	if err := ctx.Err(); err != nil {
		return post.Post{}, err
	}
	p = p.Normalized()
	if err := p.Validate(); err != nil {
		return post.Post{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return post.Post{}, NewOpError("insert", ErrUnavailable, ErrClosed)
	}
	if owner, ok := s.slugs[p.Slug]; ok && owner != p.ID {
		return post.Post{}, NewOpError("insert", ErrDuplicateSlug, fmt.Errorf("slug %q", p.Slug))
	}
	if prev, ok := s.posts[p.ID]; ok && prev.Slug != p.Slug {
		delete(s.slugs, prev.Slug)
	}
	if s.text != nil {
		if err := s.text.index(p); err != nil {
			return post.Post{}, NewOpError("insert", ErrUnavailable, err)
		}
	}
	s.posts[p.ID] = p
	s.slugs[p.Slug] = p.ID
	return p, nil
}

// Len returns the number of stored posts.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts)
}

// Ping reports ErrUnavailable once the store is closed.
func (s *InMemoryStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return NewOpError("ping", ErrUnavailable, ErrClosed)
	}
	return nil
}

// EnsureIndexes builds the text index over every stored post. Calling it
// again is a no-op.
func (s *InMemoryStore) EnsureIndexes(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return NewOpError("ensure_indexes", ErrUnavailable, ErrClosed)
	}
	if s.text != nil {
		return nil
	}
	idx, err := newTextIndex()
	if err != nil {
		return NewOpError("ensure_indexes", ErrIndexUnavailable, err)
	}
	for _, p := range s.posts {
		if err := idx.index(p); err != nil {
			_ = idx.close()
			return NewOpError("ensure_indexes", ErrIndexUnavailable, err)
		}
	}
	s.text = idx
	return nil
}

// Close releases the text index. Later calls fail with ErrUnavailable.
func (s *InMemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.text == nil {
		return nil
	}
	err := s.text.close()
	s.text = nil
	return err
}

// FindAll returns up to limit posts in the given order.
func (s *InMemoryStore) FindAll(ctx context.Context, order Sort, limit int) ([]post.Post, error) {
	return s.collect(ctx, "find_all", func(post.Post) bool { return true }, order, limit)
}

// FindByPattern returns posts where any of the pattern's fields match.
func (s *InMemoryStore) FindByPattern(ctx context.Context, p Pattern, order Sort, limit int) ([]post.Post, error) {
	match, err := p.Matcher()
	if err != nil {
		return nil, NewOpError("find_by_pattern", ErrInvalidPattern, err)
	}
	return s.collect(ctx, "find_by_pattern", match, order, limit)
}

// FindByAuthorEmail returns the author's posts, newest first.
func (s *InMemoryStore) FindByAuthorEmail(ctx context.Context, email string, limit int) ([]post.Post, error) {
	email = strings.TrimSpace(email)
	return s.collect(ctx, "find_by_author", func(p post.Post) bool {
		return email != "" && strings.EqualFold(p.AuthorEmail, email)
	}, SortNewest, limit)
}

// FindBySlug returns the post with the given slug.
func (s *InMemoryStore) FindBySlug(ctx context.Context, slug string) (post.Post, error) {
	if err := ctx.Err(); err != nil {
		return post.Post{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return post.Post{}, NewOpError("find_by_slug", ErrUnavailable, ErrClosed)
	}
	id, ok := s.slugs[slug]
	if !ok {
		return post.Post{}, NewOpError("find_by_slug", ErrNotFound, fmt.Errorf("slug %q", slug))
	}
	return s.posts[id], nil
}

// AggregateScored filters by pl.Match, scores with pl.Score and returns the
// results by score, then recency.
func (s *InMemoryStore) AggregateScored(ctx context.Context, pl Pipeline) ([]Scored, error) {
	if err := pl.Validate(); err != nil {
		return nil, NewOpError("aggregate", ErrInvalidPattern, err)
	}
	match, err := pl.Match.Matcher()
	if err != nil {
		return nil, NewOpError("aggregate", ErrInvalidPattern, err)
	}
	candidates, err := s.collect(ctx, "aggregate", match, SortNewest, 0)
	if err != nil {
		return nil, err
	}

	scorer := CompileScorer(pl.Score)
	out := make([]Scored, 0, len(candidates))
	for _, p := range candidates {
		out = append(out, Scored{Post: p, Score: float64(scorer.Score(p))})
	}
	slices.SortStableFunc(out, CompareScored)
	if pl.Limit > 0 && len(out) > pl.Limit {
		out = out[:pl.Limit]
	}
	return out, nil
}

// TextSearch queries the text index. Hits are ordered by text score, then
// recency.
func (s *InMemoryStore) TextSearch(ctx context.Context, term string) ([]Scored, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, NewOpError("text_search", ErrUnavailable, ErrClosed)
	}
	if s.text == nil {
		return nil, NewOpError("text_search", ErrIndexUnavailable, nil)
	}

	hits, err := s.text.search(ctx, term, len(s.posts))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, NewOpError("text_search", ErrIndexUnavailable, err)
	}

	out := make([]Scored, 0, len(hits))
	for _, h := range hits {
		p, ok := s.posts[h.id]
		if !ok {
			continue
		}
		out = append(out, Scored{Post: p, Score: h.score, TextScore: h.score})
	}
	slices.SortStableFunc(out, CompareScored)
	return out, nil
}

func (s *InMemoryStore) collect(ctx context.Context, op string, keep func(post.Post) bool, order Sort, limit int) ([]post.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, NewOpError(op, ErrUnavailable, ErrClosed)
	}
	out := make([]post.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if keep(p) {
			out = append(out, p)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, order.Compare)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var (
	_ Store        = (*InMemoryStore)(nil)
	_ Pinger       = (*InMemoryStore)(nil)
	_ IndexManager = (*InMemoryStore)(nil)
	_ SlugFinder   = (*InMemoryStore)(nil)
	_ AuthorFinder = (*InMemoryStore)(nil)
	_ Writer       = (*InMemoryStore)(nil)
)
