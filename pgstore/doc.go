// Package pgstore implements [store.Store] on PostgreSQL.
//
// Posts live in the blog_posts table. The text index is a generated
// tsvector column (title weighted A, description B, author C, content D)
// with a GIN index; until [Store.EnsureIndexes] has created it,
// [Store.TextSearch] reports [store.ErrIndexUnavailable] and search falls
// back to the scored aggregation, which runs as a single SQL statement
// built from the [store.ScoreRule] table.
//
// The store never opens or closes connections itself. Pass it a ready pool
// (see [Connect]) or anything implementing [DB].
package pgstore
