package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/postsearch/post"
)

func TestHTTPFetcher(t *testing.T) {
	var gotQuery []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		gotQuery = append(gotQuery, r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(post.Results{{ID: "1", Title: "C++ Templates", RelevanceScore: 1025}})
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL, srv.Client())
	got, err := f.Fetch(context.Background(), "c++")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1025.0, got[0].RelevanceScore)
	assert.True(t, got[0].PublishedAt.IsZero())

	_, err = f.Fetch(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"query=c%2B%2B", ""}, gotQuery)
}

func TestHTTPFetcherServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to fetch posts"}`))
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(srv.URL, nil).Fetch(context.Background(), "x")
	assert.ErrorIs(t, err, ErrFetch)
	assert.Contains(t, err.Error(), "500")
}

func TestHTTPFetcherEmptyArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	}))
	defer srv.Close()

	got, err := NewHTTPFetcher(srv.URL, nil).Fetch(context.Background(), "x")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestHTTPFetcherCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTTPFetcher("http://127.0.0.1:1", nil).Fetch(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}
