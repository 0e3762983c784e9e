// Package api serves post search over HTTP with echo.
//
// Routes:
//
//	GET /search?query=<term>        ranked results (alias: GET /api/posts?search=<term>)
//	GET /posts/:slug                one post
//	GET /posts?authorEmail=<email>  an author's posts, newest first
//	GET /health                     store reachability
//	GET /metrics                    Prometheus exposition
//	ANY /mcp                        MCP streamable HTTP, when mounted
//
// Search responses carry Cache-Control and an ETag derived from the result
// fingerprint; a matching If-None-Match is answered with 304.
package api
