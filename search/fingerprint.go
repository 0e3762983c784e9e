package search

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"github.com/jonwraymond/postsearch/post"
)

// Fingerprint returns a stable hash of an ordered result set. It changes
// whenever any returned field, score or the order changes.
func Fingerprint(results post.Results) string {
	h := sha256.New()

	for _, r := range results {
		for _, field := range []string{
			r.ID,
			r.Title,
			r.Description,
			r.Slug,
			r.PublishedAt.String(),
			strconv.FormatFloat(r.RelevanceScore, 'g', -1, 64),
			strconv.FormatFloat(r.TextScore, 'g', -1, 64),
			r.Content,
			r.Image,
			r.Author,
			r.AuthorEmail,
			r.AuthorImage,
		} {
			h.Write([]byte(field))
			h.Write([]byte{0})
		}
		// record separator
		h.Write([]byte{1})
	}

	return hex.EncodeToString(h.Sum(nil))
}
