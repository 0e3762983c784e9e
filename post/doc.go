// Package post defines the blog post record stored by a post store and the
// result record returned by search.
//
// # Records
//
// [Post] is the stored shape. Every field except Title and Slug may be
// empty, and a zero PublishedAt means the post has no publication date.
// [Post.Normalized] applies the store-boundary rules (trimmed strings,
// derived slug, UTC timestamps) and [Post.Validate] rejects records that
// cannot be stored.
//
// [Result] is the output shape. Thin results ([Thin]) carry the listing
// fields only; full results ([Full]) add content, image and author details,
// with the author defaulting to [UnknownAuthor].
//
// # Timestamps
//
// [Timestamp] renders as ISO-8601 UTC with millisecond precision, or as
// JSON null when absent.
package post
