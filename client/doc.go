// Package client keeps a search box responsive between server round-trips.
//
// An [Index] is an immutable fuzzy-match snapshot over the last result set
// fetched from the server. A [Session] ties the index to a [Fetcher]: every
// keystroke re-filters the snapshot immediately and schedules a debounced
// server query, and only the newest response is ever applied.
//
// # Matching
//
// Each key (title, description, content) is matched two ways and the better
// distance wins:
//
//   - edit tier: the fewest edits that turn the query into some substring
//     of the field, divided by the query length
//   - gap tier: an in-order subsequence match from github.com/sahilm/fuzzy,
//     scored by how tightly the matched runes cluster
//
// Fields whose distance exceeds the threshold do not match. An item's
// distance is the product of its matched fields' distances, each raised to
// the key's normalized weight times a field-length norm.
//
// # Sessions
//
//	sess, _ := client.NewSession(client.NewHTTPFetcher("http://localhost:8080", nil), client.SessionOptions{})
//	defer sess.Close()
//	sess.Submit("")    // initial unfiltered load
//	sess.Type("opt")   // local filter now, server query after the debounce
//	view := sess.View()
package client
