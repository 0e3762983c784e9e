package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/postsearch/logging"
	"github.com/jonwraymond/postsearch/metrics"
	"github.com/jonwraymond/postsearch/search"
	"github.com/jonwraymond/postsearch/store"
)

// Cache lifetimes for search responses.
const (
	DefaultSearchMaxAge = 60 * time.Second
	DefaultListMaxAge   = 300 * time.Second
)

const healthTimeout = 5 * time.Second

// ErrNilService is returned by New without a search service.
var ErrNilService = errors.New("api: nil search service")

// Options configures the HTTP server. Zero values select the defaults.
type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	// Gatherer backs /metrics; nil uses the default gatherer.
	Gatherer prometheus.Gatherer

	// SearchMaxAge is the cache lifetime of searches with a term,
	// ListMaxAge of the unfiltered listing.
	SearchMaxAge time.Duration
	ListMaxAge   time.Duration

	// MCPHandler is mounted at MCPPath when set.
	MCPHandler http.Handler
	MCPPath    string

	ReadHeaderTimeout time.Duration
}

// Server is the HTTP front end of a search service.
type Server struct {
	echo    *echo.Echo
	svc     *search.Service
	store   store.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	opts    Options
}

// New builds the router. st serves the lookup and health routes and may be
// the same store the service searches.
func New(svc *search.Service, st store.Store, opts Options) (*Server, error) {
	if svc == nil {
		return nil, ErrNilService
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.SearchMaxAge <= 0 {
		opts.SearchMaxAge = DefaultSearchMaxAge
	}
	if opts.ListMaxAge <= 0 {
		opts.ListMaxAge = DefaultListMaxAge
	}
	if opts.MCPPath == "" {
		opts.MCPPath = "/mcp"
	}

	s := &Server{
		echo:    echo.New(),
		svc:     svc,
		store:   st,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		opts:    opts,
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	if opts.ReadHeaderTimeout > 0 {
		s.echo.Server.ReadHeaderTimeout = opts.ReadHeaderTimeout
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	e := s.echo
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path == "/health" || path == "/metrics"
		},
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.InfoContext(c.Request().Context(), "HTTP request completed",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"error", v.Error)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(s.recordRequests)

	e.GET("/search", s.handleSearch("query"))
	e.GET("/api/posts", s.handleSearch("search"))
	e.GET("/posts", s.handleAuthorPosts)
	e.GET("/posts/:slug", s.handlePost)
	e.GET("/health", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{})))

	if s.opts.MCPHandler != nil {
		e.Any(s.opts.MCPPath, echo.WrapHandler(s.opts.MCPHandler))
	}
}

// recordRequests counts every response by route template and status.
func (s *Server) recordRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.RecordHTTP(route, strconv.Itoa(c.Response().Status))
		return nil
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start(addr string) error {
	s.logger.Info("starting HTTP server", "addr", addr)
	return s.echo.Start(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
