package search

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/jonwraymond/postsearch/metrics"
	"github.com/jonwraymond/postsearch/post"
	"github.com/jonwraymond/postsearch/ranking"
	"github.com/jonwraymond/postsearch/store"
)

// faultyStore wraps an in-memory store with per-operation failures and
// call counts.
type faultyStore struct {
	*store.InMemoryStore
	findAllErr error
	textErr    error
	aggErr     error
	patternErr error
	calls      map[string]int
}

func newFaultyStore(t *testing.T, posts []post.Post) *faultyStore {
	t.Helper()
	mem := store.NewInMemoryStore()
	t.Cleanup(func() { _ = mem.Close() })
	for _, p := range posts {
		if _, err := mem.Insert(context.Background(), p); err != nil {
			t.Fatalf("Insert(%q) failed: %v", p.Title, err)
		}
	}
	return &faultyStore{InMemoryStore: mem, calls: map[string]int{}}
}

func (f *faultyStore) FindAll(ctx context.Context, order store.Sort, limit int) ([]post.Post, error) {
	f.calls["find_all"]++
	if f.findAllErr != nil {
		return nil, f.findAllErr
	}
	return f.InMemoryStore.FindAll(ctx, order, limit)
}

func (f *faultyStore) FindByPattern(ctx context.Context, p store.Pattern, order store.Sort, limit int) ([]post.Post, error) {
	f.calls["find_by_pattern"]++
	if f.patternErr != nil {
		return nil, f.patternErr
	}
	return f.InMemoryStore.FindByPattern(ctx, p, order, limit)
}

func (f *faultyStore) AggregateScored(ctx context.Context, pl store.Pipeline) ([]store.Scored, error) {
	f.calls["aggregate"]++
	if f.aggErr != nil {
		return nil, f.aggErr
	}
	return f.InMemoryStore.AggregateScored(ctx, pl)
}

func (f *faultyStore) TextSearch(ctx context.Context, term string) ([]store.Scored, error) {
	f.calls["text_search"]++
	if f.textErr != nil {
		return nil, f.textErr
	}
	return f.InMemoryStore.TextSearch(ctx, term)
}

func samplePosts(t *testing.T) []post.Post {
	t.Helper()
	posts, err := post.Samples()
	if err != nil {
		t.Fatalf("Samples: %v", err)
	}
	for i := range posts {
		posts[i].ID = fmt.Sprintf("post-%d", i+1)
	}
	return posts
}

func newService(t *testing.T, st store.Store) *Service {
	t.Helper()
	svc, err := NewService(st, Options{})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc
}

func indexStore(t *testing.T, f *faultyStore) {
	t.Helper()
	if err := f.EnsureIndexes(context.Background()); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}
}

var unavailable = store.NewOpError("query", store.ErrUnavailable, errors.New("connection refused"))

func TestNewServiceRequiresStore(t *testing.T) {
	if _, err := NewService(nil, Options{}); !errors.Is(err, ErrNilStore) {
		t.Fatalf("expected ErrNilStore, got %v", err)
	}
	svc := newService(t, store.NewInMemoryStore())
	if svc.Limit() != DefaultLimit {
		t.Errorf("Limit = %d, want %d", svc.Limit(), DefaultLimit)
	}
}

func TestEmptyTermListsNewestFirst(t *testing.T) {
	f := newFaultyStore(t, samplePosts(t))
	indexStore(t, f)
	svc := newService(t, f)

	for _, term := range []string{"", "   ", "\t\n"} {
		resp, err := svc.Run(context.Background(), term)
		if err != nil {
			t.Fatalf("Run(%q) failed: %v", term, err)
		}
		if resp.Path != PathList {
			t.Errorf("Path = %s, want list", resp.Path)
		}
		if len(resp.Results) != 8 {
			t.Fatalf("got %d results, want 8", len(resp.Results))
		}
		if resp.Results[0].Title != "Order Management Systems" {
			t.Errorf("first result = %q, want newest post", resp.Results[0].Title)
		}
		for i, r := range resp.Results {
			if r.RelevanceScore != 0 {
				t.Errorf("result %d score = %v, want 0", i, r.RelevanceScore)
			}
			if r.Content != "" || r.Author != "" {
				t.Errorf("result %d should be thin: %+v", i, r)
			}
			if i > 0 && r.PublishedAt.After(resp.Results[i-1].PublishedAt.Time) {
				t.Errorf("result %d is newer than its predecessor", i)
			}
		}
	}
	if f.calls["text_search"] != 0 || f.calls["aggregate"] != 0 || f.calls["find_by_pattern"] != 0 {
		t.Errorf("scoring path invoked for empty term: %v", f.calls)
	}
}

func TestIndexedPath(t *testing.T) {
	f := newFaultyStore(t, samplePosts(t))
	indexStore(t, f)
	svc := newService(t, f)

	resp, err := svc.Run(context.Background(), "React")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if resp.Path != PathIndexed {
		t.Fatalf("Path = %s, want indexed", resp.Path)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("got %v, want only the React post", resp.Results.Titles())
	}
	r := resp.Results[0]
	if r.Title != "React Performance Best Practices" {
		t.Errorf("first result = %q", r.Title)
	}
	if r.TextScore <= 0 {
		t.Errorf("TextScore = %v, want > 0", r.TextScore)
	}
	want := r.TextScore*DefaultTextScoreWeight + float64(ranking.Score("React", f.mustFind(t, r.Slug)))
	if r.RelevanceScore != want {
		t.Errorf("RelevanceScore = %v, want %v", r.RelevanceScore, want)
	}
	if r.Author != post.UnknownAuthor {
		t.Errorf("Author = %q, want placeholder", r.Author)
	}
	if r.Content == "" {
		t.Error("indexed results should carry content")
	}
	if f.calls["aggregate"] != 0 {
		t.Errorf("fallback invoked: %v", f.calls)
	}
}

func (f *faultyStore) mustFind(t *testing.T, slug string) post.Post {
	t.Helper()
	p, err := f.FindBySlug(context.Background(), slug)
	if err != nil {
		t.Fatalf("FindBySlug(%q): %v", slug, err)
	}
	return p
}

// rankedStore scores text hits itself, the way a SQL store does.
type rankedStore struct {
	*faultyStore
	rankedErr error
	queries   []store.TextQuery
}

func (r *rankedStore) RankedTextSearch(ctx context.Context, q store.TextQuery) ([]store.Scored, error) {
	r.queries = append(r.queries, q)
	if r.rankedErr != nil {
		return nil, r.rankedErr
	}
	hits, err := r.InMemoryStore.TextSearch(ctx, q.Term)
	if err != nil {
		return nil, err
	}
	match, err := q.Match.Matcher()
	if err != nil {
		return nil, err
	}
	rules := store.CompileScorer(q.Score)
	var out []store.Scored
	for _, h := range hits {
		if !match(h.Post) {
			continue
		}
		h.Score = h.TextScore*q.TextWeight + float64(rules.Score(h.Post))
		out = append(out, h)
	}
	return ranking.Cap(out, q.Limit), nil
}

func TestIndexedPathUsesStoreRanking(t *testing.T) {
	plain := newFaultyStore(t, samplePosts(t))
	indexStore(t, plain)
	want, err := newService(t, plain).Run(context.Background(), "React")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	f := newFaultyStore(t, samplePosts(t))
	indexStore(t, f)
	r := &rankedStore{faultyStore: f}
	resp, err := newService(t, r).Run(context.Background(), "React")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if resp.Path != PathIndexed {
		t.Fatalf("Path = %s, want indexed", resp.Path)
	}
	if f.calls["text_search"] != 0 {
		t.Errorf("unranked text search invoked: %v", f.calls)
	}
	if len(r.queries) != 1 {
		t.Fatalf("got %d ranked queries, want 1", len(r.queries))
	}
	q := r.queries[0]
	if q.Term != "React" || q.TextWeight != DefaultTextScoreWeight || q.Limit != DefaultLimit {
		t.Errorf("query = %+v", q)
	}
	if !slices.Equal(resp.Results.Slugs(), want.Results.Slugs()) ||
		!slices.Equal(resp.Results.Scores(), want.Results.Scores()) {
		t.Errorf("store ranking differs:\n got %v %v\nwant %v %v",
			resp.Results.Slugs(), resp.Results.Scores(), want.Results.Slugs(), want.Results.Scores())
	}
}

func TestRankedIndexUnavailableFallsBack(t *testing.T) {
	r := &rankedStore{
		faultyStore: newFaultyStore(t, samplePosts(t)),
		rankedErr:   store.NewOpError("text_search", store.ErrIndexUnavailable, errors.New("no index")),
	}
	resp, err := newService(t, r).Run(context.Background(), "Opt")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if resp.Path != PathFallback {
		t.Errorf("Path = %s, want fallback", resp.Path)
	}
}

func TestIndexedPathWithoutCandidatesFallsBack(t *testing.T) {
	f := newFaultyStore(t, samplePosts(t))
	indexStore(t, f)
	svc := newService(t, f)

	resp, err := svc.Run(context.Background(), "Opt")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if resp.Path != PathFallback {
		t.Fatalf("Path = %s, want fallback", resp.Path)
	}
	want := []string{
		"Optimize Your Database Performance",
		"Mobile App Optimization",
		"JavaScript Optimization Techniques",
		"React Performance Best Practices",
		"Understanding Oracle Database",
		"Organic SEO Strategies",
	}
	if got := resp.Results.Titles(); !slices.Equal(got, want) {
		t.Fatalf("titles = %v\nwant %v", got, want)
	}
	if got := resp.Results.Scores(); got[0] != 1130 || got[1] != 655 || got[2] != 630 {
		t.Errorf("scores = %v", got)
	}
}

func TestFallbackMatchesScorerWhenIndexUnavailable(t *testing.T) {
	posts := samplePosts(t)
	f := newFaultyStore(t, posts)
	svc := newService(t, f)

	for _, term := range []string{"O", "Or", "orange theory", "optimization", "database", "e-commerce", "(", "a.b"} {
		t.Run(term, func(t *testing.T) {
			resp, err := svc.Run(context.Background(), term)
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if resp.Path != PathFallback {
				t.Fatalf("Path = %s, want fallback", resp.Path)
			}

			scorer := ranking.NewScorer(term)
			var expected []store.Scored
			for _, p := range posts {
				if scorer.IsCandidate(p) {
					expected = append(expected, store.Scored{Post: p, Score: float64(scorer.Score(p))})
				}
			}
			ranking.Sort(expected)

			if len(resp.Results) != len(expected) {
				t.Fatalf("got %d results, want %d", len(resp.Results), len(expected))
			}
			for i, e := range expected {
				r := resp.Results[i]
				if r.Slug != e.Post.Slug || r.RelevanceScore != e.Score {
					t.Errorf("position %d = %s (%v), want %s (%v)", i, r.Slug, r.RelevanceScore, e.Post.Slug, e.Score)
				}
			}
		})
	}
}

func TestExactTitleFirst(t *testing.T) {
	f := newFaultyStore(t, samplePosts(t))
	indexStore(t, f)
	svc := newService(t, f)

	results, err := svc.Search(context.Background(), "Orange Theory: Color Psychology in Web Design")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) == 0 || results[0].Slug != "orange-theory-color-psychology" {
		t.Fatalf("expected exact title first, got %v", results.Slugs())
	}
}

func TestUnsupportedAggregationScoresInProcess(t *testing.T) {
	posts := samplePosts(t)
	f := newFaultyStore(t, posts)
	f.aggErr = store.NewOpError("aggregate", store.ErrUnsupported, nil)
	svc := newService(t, f)

	got, err := svc.Run(context.Background(), "opt")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	ref := newFaultyStore(t, posts)
	want, err := newService(t, ref).Run(context.Background(), "opt")
	if err != nil {
		t.Fatalf("reference Run failed: %v", err)
	}
	if got.Path != PathFallback {
		t.Errorf("Path = %s, want fallback", got.Path)
	}
	if Fingerprint(got.Results) != Fingerprint(want.Results) {
		t.Errorf("in-process scoring differs:\n got %v\nwant %v", got.Results.Slugs(), want.Results.Slugs())
	}
}

func TestLastResort(t *testing.T) {
	f := newFaultyStore(t, samplePosts(t))
	f.textErr = unavailable
	f.aggErr = unavailable
	svc := newService(t, f)

	resp, err := svc.Run(context.Background(), "performance")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if resp.Path != PathLastResort {
		t.Fatalf("Path = %s, want last_resort", resp.Path)
	}
	// Title/description matches only, newest first.
	want := []string{"react-performance-practices", "javascript-optimization", "optimize-database-performance"}
	if got := resp.Results.Slugs(); !slices.Equal(got, want) {
		t.Fatalf("slugs = %v, want %v", got, want)
	}
	for _, r := range resp.Results {
		if r.RelevanceScore != 0 || r.Content != "" {
			t.Errorf("last resort result should be thin and unscored: %+v", r)
		}
	}
}

func TestLastResortIgnoresContentAndAuthor(t *testing.T) {
	f := newFaultyStore(t, []post.Post{
		{Title: "Alpha", Content: "needle in content"},
		{Title: "Beta", Author: "needle author"},
		{Title: "Gamma", Description: "needle"},
	})
	f.textErr = unavailable
	f.aggErr = unavailable

	results, err := newService(t, f).Search(context.Background(), "needle")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if got := results.Titles(); !slices.Equal(got, []string{"Gamma"}) {
		t.Errorf("titles = %v, want [Gamma]", got)
	}
}

func TestSearchFailure(t *testing.T) {
	f := newFaultyStore(t, samplePosts(t))
	f.textErr = unavailable
	f.aggErr = unavailable
	f.patternErr = unavailable
	svc := newService(t, f)

	results, err := svc.Search(context.Background(), "react")
	if results != nil {
		t.Errorf("expected nil results on failure, got %v", results)
	}
	if !errors.Is(err, ErrSearchFailure) {
		t.Fatalf("expected ErrSearchFailure, got %v", err)
	}
	if !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("expected store cause in chain, got %v", err)
	}
	var serr *Error
	if !errors.As(err, &serr) || serr.Path != PathLastResort || serr.Term != "react" {
		t.Errorf("unexpected error detail: %#v", err)
	}
	if f.calls["text_search"] != 1 || f.calls["aggregate"] != 1 || f.calls["find_by_pattern"] != 1 {
		t.Errorf("each tier should run exactly once: %v", f.calls)
	}
}

func TestListFailure(t *testing.T) {
	f := newFaultyStore(t, nil)
	f.findAllErr = unavailable
	_, err := newService(t, f).Search(context.Background(), "")
	if !errors.Is(err, ErrSearchFailure) {
		t.Fatalf("expected ErrSearchFailure, got %v", err)
	}
}

func TestZeroMatchesIsEmptyNotError(t *testing.T) {
	f := newFaultyStore(t, samplePosts(t))
	indexStore(t, f)

	results, err := newService(t, f).Search(context.Background(), "kubernetes")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Fatalf("expected empty non-nil results, got %#v", results)
	}
}

func TestCanceledContextStopsTiers(t *testing.T) {
	f := newFaultyStore(t, samplePosts(t))
	indexStore(t, f)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newService(t, f).Search(ctx, "react")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, ErrSearchFailure) {
		t.Error("cancellation must not be reported as a search failure")
	}
	if f.calls["aggregate"] != 0 || f.calls["find_by_pattern"] != 0 {
		t.Errorf("fallback tiers ran after cancellation: %v", f.calls)
	}
}

func TestCapEnforced(t *testing.T) {
	posts := make([]post.Post, 0, 150)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 150 {
		title := fmt.Sprintf("Post %03d about golang", i)
		if i%3 == 0 {
			title = fmt.Sprintf("Golang post %03d", i)
		}
		posts = append(posts, post.Post{Title: title, PublishedAt: base.Add(time.Duration(i) * time.Hour)})
	}
	f := newFaultyStore(t, posts)
	svc := newService(t, f)

	results, err := svc.Search(context.Background(), "golang")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 100 {
		t.Fatalf("len = %d, want 100", len(results))
	}
	// The 50 prefix matches outrank every other post.
	for i := range 50 {
		if !strings.HasPrefix(results[i].Title, "Golang") {
			t.Fatalf("position %d = %q, want a prefix match", i, results[i].Title)
		}
	}
	// The remaining 50 are the newest of the contains-only posts.
	if results[50].Title != "Post 149 about golang" {
		t.Errorf("position 50 = %q", results[50].Title)
	}
	assertOrdered(t, results)

	listed, err := svc.Search(context.Background(), "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listed) != 100 {
		t.Errorf("list len = %d, want 100", len(listed))
	}
}

func TestResultsContainTermAndAreOrdered(t *testing.T) {
	posts := samplePosts(t)
	posts = append(posts,
		post.Post{Title: "Author spotlight", Author: "Orla Oracle"},
		post.Post{Title: "Content only", Content: "a deep dive into orders"},
	)
	for _, indexed := range []bool{false, true} {
		f := newFaultyStore(t, posts)
		if indexed {
			indexStore(t, f)
		}
		svc := newService(t, f)
		for _, term := range []string{"o", "or", "ora", "order", "database", "performance", "web design"} {
			results, err := svc.Search(context.Background(), term)
			if err != nil {
				t.Fatalf("Search(%q) failed: %v", term, err)
			}
			for _, r := range results {
				p := f.mustFind(t, r.Slug)
				if !ranking.NewScorer(term).IsCandidate(p) {
					t.Errorf("Search(%q) returned %q which does not contain the term", term, p.Title)
				}
			}
			assertOrdered(t, results)
		}
	}
}

func TestIdempotent(t *testing.T) {
	f := newFaultyStore(t, samplePosts(t))
	indexStore(t, f)
	svc := newService(t, f)

	for _, term := range []string{"", "o", "database", "react"} {
		a, err := svc.Search(context.Background(), term)
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		b, _ := svc.Search(context.Background(), term)
		if Fingerprint(a) != Fingerprint(b) {
			t.Errorf("Search(%q) is not idempotent", term)
		}
	}
}

func TestMetricsRecorded(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	f := newFaultyStore(t, samplePosts(t))
	svc, err := NewService(f, Options{Metrics: m})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	if _, err := svc.Search(context.Background(), "opt"); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if got := testutil.ToFloat64(m.SearchesTotal.WithLabelValues("fallback", "ok")); got != 1 {
		t.Errorf("fallback searches = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("indexed", "fallback")); got != 1 {
		t.Errorf("fallbacks = %v, want 1", got)
	}
}

func assertOrdered(t *testing.T, results post.Results) {
	t.Helper()
	for i := 1; i < len(results); i++ {
		prev, cur := results[i-1], results[i]
		if cur.RelevanceScore > prev.RelevanceScore {
			t.Fatalf("score increases at %d: %v > %v", i, cur.RelevanceScore, prev.RelevanceScore)
		}
		if cur.RelevanceScore == prev.RelevanceScore && !prev.PublishedAt.IsZero() && cur.PublishedAt.After(prev.PublishedAt.Time) {
			t.Fatalf("equal scores not newest first at %d", i)
		}
		if cur.RelevanceScore == prev.RelevanceScore && prev.PublishedAt.IsZero() && !cur.PublishedAt.IsZero() {
			t.Fatalf("missing publication time sorted before a dated post at %d", i)
		}
	}
}
