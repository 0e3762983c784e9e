package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jonwraymond/postsearch/post"
	"github.com/jonwraymond/postsearch/search"
	"github.com/jonwraymond/postsearch/store"
)

// Client-facing error messages.
const (
	msgSearchFailed  = "Failed to fetch posts"
	msgPostNotFound  = "Post not found"
	msgPostFailed    = "Failed to fetch post"
	msgMissingAuthor = "authorEmail is required"
	msgUnsupported   = "Not supported by this store"
)

// authorPostsLimit caps the author listing.
const authorPostsLimit = 100

// SearchPathHeader names the tier that answered a search.
const SearchPathHeader = "X-Search-Path"

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) handleSearch(param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		term := strings.TrimSpace(c.QueryParam(param))

		resp, err := s.svc.Run(ctx, term)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				s.logger.DebugContext(ctx, "search canceled by client", "term", term)
			} else {
				s.logger.ErrorContext(ctx, "search request failed", "term", term, "error", err)
			}
			return c.JSON(http.StatusInternalServerError, errorBody{Error: msgSearchFailed})
		}

		results := resp.Results
		if results == nil {
			results = post.Results{}
		}

		maxAge := s.opts.SearchMaxAge
		if term == "" {
			maxAge = s.opts.ListMaxAge
		}
		etag := ETag(results)

		h := c.Response().Header()
		h.Set(echo.HeaderCacheControl, cacheControl(maxAge))
		h.Set("ETag", etag)
		h.Set(SearchPathHeader, string(resp.Path))

		if match := c.Request().Header.Get("If-None-Match"); match != "" && match == etag {
			return c.NoContent(http.StatusNotModified)
		}
		return c.JSON(http.StatusOK, results)
	}
}

func (s *Server) handlePost(c echo.Context) error {
	finder, ok := s.store.(store.SlugFinder)
	if !ok {
		return c.JSON(http.StatusNotImplemented, errorBody{Error: msgUnsupported})
	}
	ctx := c.Request().Context()
	slug := c.Param("slug")

	p, err := finder.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, errorBody{Error: msgPostNotFound})
		}
		s.logger.ErrorContext(ctx, "post lookup failed", "slug", slug, "error", err)
		return c.JSON(http.StatusInternalServerError, errorBody{Error: msgPostFailed})
	}
	return c.JSON(http.StatusOK, post.Full(p, 0))
}

func (s *Server) handleAuthorPosts(c echo.Context) error {
	email := strings.TrimSpace(c.QueryParam("authorEmail"))
	if email == "" {
		return c.JSON(http.StatusBadRequest, errorBody{Error: msgMissingAuthor})
	}
	finder, ok := s.store.(store.AuthorFinder)
	if !ok {
		return c.JSON(http.StatusNotImplemented, errorBody{Error: msgUnsupported})
	}
	ctx := c.Request().Context()

	posts, err := finder.FindByAuthorEmail(ctx, email, authorPostsLimit)
	if err != nil {
		s.logger.ErrorContext(ctx, "author listing failed", "error", err)
		return c.JSON(http.StatusInternalServerError, errorBody{Error: msgSearchFailed})
	}
	results := make(post.Results, len(posts))
	for i, p := range posts {
		results[i] = post.Full(p, 0)
	}
	return c.JSON(http.StatusOK, results)
}

func (s *Server) handleHealth(c echo.Context) error {
	pinger, ok := s.store.(store.Pinger)
	if !ok {
		s.metrics.SetStoreUp(true)
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
	defer cancel()
	if err := pinger.Ping(ctx); err != nil {
		s.metrics.SetStoreUp(false)
		s.logger.WarnContext(ctx, "health check failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
	}
	s.metrics.SetStoreUp(true)
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

// ETag returns the quoted short fingerprint of results.
func ETag(results post.Results) string {
	fp := search.Fingerprint(results)
	if len(fp) > 16 {
		fp = fp[:16]
	}
	return `"` + fp + `"`
}

func cacheControl(maxAge time.Duration) string {
	return fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds()))
}
