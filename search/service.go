package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonwraymond/postsearch/logging"
	"github.com/jonwraymond/postsearch/metrics"
	"github.com/jonwraymond/postsearch/post"
	"github.com/jonwraymond/postsearch/ranking"
	"github.com/jonwraymond/postsearch/store"
)

// Defaults applied by NewService.
const (
	DefaultLimit           = 100
	DefaultTextScoreWeight = 20
)

// Path names the tier that answered a search.
type Path string

const (
	PathList       Path = "list"
	PathIndexed    Path = "indexed"
	PathFallback   Path = "fallback"
	PathLastResort Path = "last_resort"
)

// Options configures a Service. Zero values select the defaults.
type Options struct {
	// Limit caps every result set.
	Limit int
	// TextScoreWeight multiplies the text index score on the indexed path.
	TextScoreWeight float64
	Logger          *slog.Logger
	Metrics         *metrics.Metrics
	Tracer          trace.Tracer
}

// Response is a search outcome with the path that produced it.
type Response struct {
	Term    string       `json:"term"`
	Path    Path         `json:"path"`
	Results post.Results `json:"results"`
}

// Service runs searches against a store.
type Service struct {
	store   store.Store
	limit   int
	weight  float64
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// NewService creates a Service over st.
func NewService(st store.Store, opts Options) (*Service, error) {
	if st == nil {
		return nil, ErrNilStore
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.TextScoreWeight <= 0 {
		opts.TextScoreWeight = DefaultTextScoreWeight
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer("github.com/jonwraymond/postsearch/search")
	}
	return &Service{
		store:   st,
		limit:   opts.Limit,
		weight:  opts.TextScoreWeight,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		tracer:  opts.Tracer,
	}, nil
}

// Limit returns the result cap.
func (s *Service) Limit() int { return s.limit }

// Search returns the ranked results for term.
func (s *Service) Search(ctx context.Context, term string) (post.Results, error) {
	resp, err := s.Run(ctx, term)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Run searches for term and reports which path answered.
func (s *Service) Run(ctx context.Context, term string) (*Response, error) {
	term = strings.TrimSpace(term)
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "search.Run", trace.WithAttributes(
		attribute.String("search.term", term),
		attribute.Int("search.limit", s.limit),
	))
	defer span.End()

	resp, err := s.run(ctx, term)
	if err != nil {
		path := PathList
		var serr *Error
		if errors.As(err, &serr) {
			path = serr.Path
		}
		status := "error"
		if ctx.Err() != nil {
			status = "canceled"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.RecordSearch(string(path), status, 0, time.Since(start))
		return nil, err
	}

	span.SetAttributes(
		attribute.String("search.path", string(resp.Path)),
		attribute.Int("search.results", len(resp.Results)),
	)
	s.metrics.RecordSearch(string(resp.Path), "ok", len(resp.Results), time.Since(start))
	return resp, nil
}

func (s *Service) run(ctx context.Context, term string) (*Response, error) {
	if term == "" {
		results, err := s.list(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.ErrorContext(ctx, "listing posts failed", "error", err)
			return nil, &Error{Path: PathList, Err: err}
		}
		return &Response{Term: term, Path: PathList, Results: results}, nil
	}

	results, err := s.indexed(ctx, term)
	if err == nil && len(results) > 0 {
		return &Response{Term: term, Path: PathIndexed, Results: results}, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		s.logger.WarnContext(ctx, "indexed search unavailable, using fallback",
			"term", term, "path", PathIndexed, "error", err)
	} else {
		s.logger.DebugContext(ctx, "indexed search had no candidates, using fallback", "term", term)
	}
	s.metrics.RecordFallback(string(PathIndexed), string(PathFallback))

	results, err = s.fallback(ctx, term)
	if err == nil {
		return &Response{Term: term, Path: PathFallback, Results: results}, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	s.logger.WarnContext(ctx, "fallback search failed, using last resort",
		"term", term, "path", PathFallback, "error", err)
	s.metrics.RecordFallback(string(PathFallback), string(PathLastResort))

	results, err = s.lastResort(ctx, term)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.ErrorContext(ctx, "search failed", "term", term, "path", PathLastResort, "error", err)
		return nil, &Error{Term: term, Path: PathLastResort, Err: err}
	}
	return &Response{Term: term, Path: PathLastResort, Results: results}, nil
}

func (s *Service) list(ctx context.Context) (post.Results, error) {
	ctx, span := s.tracer.Start(ctx, "search.list")
	defer span.End()

	posts, err := s.store.FindAll(ctx, store.SortNewest, s.limit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return thin(posts, s.limit), nil
}

func (s *Service) indexed(ctx context.Context, term string) (post.Results, error) {
	ctx, span := s.tracer.Start(ctx, "search.indexed")
	defer span.End()

	if rs, ok := s.store.(store.RankedTextSearcher); ok {
		scored, err := rs.RankedTextSearch(ctx, ranking.TextQuery(term, s.weight, s.limit))
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		span.SetAttributes(attribute.Int("search.candidates", len(scored)))
		return full(ranking.Cap(scored, s.limit)), nil
	}

	hits, err := s.store.TextSearch(ctx, term)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	scorer := ranking.NewScorer(term)
	scored := make([]store.Scored, 0, len(hits))
	for _, h := range hits {
		if !scorer.IsCandidate(h.Post) {
			continue
		}
		scored = append(scored, store.Scored{
			Post:      h.Post,
			TextScore: h.TextScore,
			Score:     h.TextScore*s.weight + float64(scorer.Score(h.Post)),
		})
	}
	span.SetAttributes(attribute.Int("search.hits", len(hits)), attribute.Int("search.candidates", len(scored)))
	return full(ranking.Cap(scored, s.limit)), nil
}

func (s *Service) fallback(ctx context.Context, term string) (post.Results, error) {
	ctx, span := s.tracer.Start(ctx, "search.fallback")
	defer span.End()

	scored, err := s.store.AggregateScored(ctx, ranking.Pipeline(term, s.limit))
	if errors.Is(err, store.ErrUnsupported) {
		scored, err = s.scoreInProcess(ctx, term)
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return full(ranking.Cap(scored, s.limit)), nil
}

// scoreInProcess serves stores without aggregation support.
func (s *Service) scoreInProcess(ctx context.Context, term string) ([]store.Scored, error) {
	posts, err := s.store.FindByPattern(ctx, ranking.CandidatePattern(term), store.SortNewest, 0)
	if err != nil {
		return nil, err
	}
	scorer := ranking.NewScorer(term)
	scored := make([]store.Scored, 0, len(posts))
	for _, p := range posts {
		if !scorer.IsCandidate(p) {
			continue
		}
		scored = append(scored, store.Scored{Post: p, Score: float64(scorer.Score(p))})
	}
	return scored, nil
}

func (s *Service) lastResort(ctx context.Context, term string) (post.Results, error) {
	ctx, span := s.tracer.Start(ctx, "search.last_resort")
	defer span.End()

	pattern := store.LiteralPattern(term, store.FieldTitle, store.FieldDescription)
	posts, err := s.store.FindByPattern(ctx, pattern, store.SortNewest, s.limit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return thin(posts, s.limit), nil
}

func thin(posts []post.Post, limit int) post.Results {
	if len(posts) > limit {
		posts = posts[:limit]
	}
	out := make(post.Results, 0, len(posts))
	for _, p := range posts {
		out = append(out, post.Thin(p, 0))
	}
	return out
}

func full(scored []store.Scored) post.Results {
	out := make(post.Results, 0, len(scored))
	for _, sc := range scored {
		r := post.Full(sc.Post, sc.Score)
		r.TextScore = sc.TextScore
		out = append(out, r)
	}
	return out
}
