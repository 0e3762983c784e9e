// Package search answers post searches by trying progressively simpler
// store queries until one succeeds.
//
// # Paths
//
// An empty term lists posts newest first with a zero relevance score. Any
// other term runs through up to three tiers, strictly in order:
//
//   - indexed: the store's text index, with each hit scored as
//     textScore * TextScoreWeight plus the [ranking] table
//   - fallback: a scored aggregation over every post containing the term
//     in its title, description, content or author
//   - last resort: a title/description match ordered by date, unscored
//
// The indexed tier gives way to the fallback when the index is missing,
// fails, or has no hit that contains the term. The last resort runs only
// when the fallback query fails, and its own failure is returned as an
// [*Error] matching [ErrSearchFailure].
//
// # Usage
//
//	svc, err := search.NewService(st, search.Options{})
//	if err != nil {
//	    return err
//	}
//	results, err := svc.Search(ctx, "orange theory")
//
// # Behavior
//
// Every path caps results at Options.Limit (default 100). Zero matches is an
// empty, non-nil slice. A cancelled context stops the tier chain and its
// error is returned as is.
package search
