package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonwraymond/postsearch/logging"
	"github.com/jonwraymond/postsearch/post"
	"github.com/jonwraymond/postsearch/search"
	"github.com/jonwraymond/postsearch/store"
)

// Tool names.
const (
	SearchToolName  = "search_posts"
	GetPostToolName = "get_post"
)

// Config describes the server in the initialize handshake.
type Config struct {
	Name    string
	Version string
	Logger  *slog.Logger
}

// SearchArgs are the search_posts arguments.
type SearchArgs struct {
	Query    string  `json:"query,omitempty" jsonschema:"search term; empty lists every post newest first"`
	Limit    int     `json:"limit,omitempty" jsonschema:"maximum number of results to return"`
	MinScore float64 `json:"min_score,omitempty" jsonschema:"drop results scoring below this; listing results score 0"`
}

// SearchOutput is the structured search_posts result.
type SearchOutput struct {
	Term    string       `json:"term"`
	Path    search.Path  `json:"path"`
	Count   int          `json:"count"`
	Results post.Results `json:"results"`
}

// GetPostArgs are the get_post arguments.
type GetPostArgs struct {
	Slug string `json:"slug" jsonschema:"slug of the post"`
}

// Server serves the post search tools over MCP.
type Server struct {
	mcp    *mcp.Server
	svc    *search.Service
	store  store.Store
	logger *slog.Logger
}

// New registers the tools on a fresh MCP server. st is used for get_post
// and may be nil.
func New(svc *search.Service, st store.Store, cfg Config) (*Server, error) {
	if svc == nil {
		return nil, ErrNilService
	}
	if cfg.Name == "" {
		cfg.Name = "postsearch"
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}

	s := &Server{
		mcp:    mcp.NewServer(&mcp.Implementation{Name: cfg.Name, Version: cfg.Version}, nil),
		svc:    svc,
		store:  st,
		logger: cfg.Logger,
	}

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        SearchToolName,
		Description: "Search blog posts by title, description, content and author, ranked by relevance",
	}, s.searchPosts)

	if _, ok := st.(store.SlugFinder); ok {
		mcp.AddTool(s.mcp, &mcp.Tool{
			Name:        GetPostToolName,
			Description: "Get a blog post by its slug",
		}, s.getPost)
	}
	return s, nil
}

// MCP returns the underlying SDK server.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// ServeStdio serves the tools over stdin/stdout until ctx is cancelled or
// the client disconnects.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// HTTPHandler returns a streamable HTTP handler for the tools.
func (s *Server) HTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcp
	}, nil)
}

func (s *Server) searchPosts(ctx context.Context, _ *mcp.CallToolRequest, args SearchArgs) (*mcp.CallToolResult, any, error) {
	resp, err := s.svc.Run(ctx, args.Query)
	if err != nil {
		s.logger.WarnContext(ctx, "search tool failed", "query", args.Query, "error", err)
		return nil, nil, err
	}

	results := resp.Results
	if args.MinScore > 0 {
		results = results.FilterByMinScore(args.MinScore)
	}
	if args.Limit > 0 && len(results) > args.Limit {
		results = results[:args.Limit]
	}
	return nil, SearchOutput{
		Term:    resp.Term,
		Path:    resp.Path,
		Count:   len(results),
		Results: results,
	}, nil
}

func (s *Server) getPost(ctx context.Context, _ *mcp.CallToolRequest, args GetPostArgs) (*mcp.CallToolResult, any, error) {
	slug := strings.TrimSpace(args.Slug)
	if slug == "" {
		return nil, nil, ErrMissingSlug
	}
	finder, ok := s.store.(store.SlugFinder)
	if !ok {
		return nil, nil, ErrLookupUnsupported
	}
	p, err := finder.FindBySlug(ctx, slug)
	if err != nil {
		return nil, nil, fmt.Errorf("get post %q: %w", slug, err)
	}
	return nil, post.Full(p, 0), nil
}
