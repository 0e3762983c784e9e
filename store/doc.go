// Package store defines the post store contract used by search and ships an
// in-memory implementation backed by a bleve text index.
//
// # Contract
//
// [Store] exposes four queries: newest-first listing ([Store.FindAll]),
// regular expression scans over selected fields ([Store.FindByPattern]),
// scored aggregation ([Store.AggregateScored]) and text index search
// ([Store.TextSearch]). Optional capabilities are discovered with type
// assertions: [Pinger], [IndexManager], [SlugFinder], [AuthorFinder] and
// [Writer].
//
// Scoring rules are data ([ScoreRule]); [CompileScorer] evaluates them
// in-process so every implementation can agree on the same numbers.
//
// # Errors
//
// Failures are reported as [*OpError] values that match both a kind
// sentinel ([ErrUnavailable], [ErrIndexUnavailable], [ErrUnsupported], ...)
// and the underlying cause under [errors.Is].
//
// # Thread Safety
//
// [InMemoryStore] is safe for concurrent use.
package store
