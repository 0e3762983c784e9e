// Package mcpserver exposes post search as MCP tools.
//
// Tools:
//   - search_posts: runs the tiered search and returns the ranked results
//     together with the path that answered
//   - get_post: returns one post by slug, when the store supports lookups
//
// The same server can be served over stdio or mounted as a streamable HTTP
// handler:
//
//	srv, _ := mcpserver.New(svc, st, mcpserver.Config{Name: "postsearch", Version: "1.0.0"})
//	_ = srv.ServeStdio(ctx)
//
//	mux.Handle("/mcp", srv.HTTPHandler())
package mcpserver
