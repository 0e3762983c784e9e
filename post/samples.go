package post

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed sample_posts.yaml
var samplePostsYAML []byte

// Samples returns the bundled sample posts, normalized.
func Samples() ([]Post, error) {
	var posts []Post
	if err := yaml.Unmarshal(samplePostsYAML, &posts); err != nil {
		return nil, fmt.Errorf("decode sample posts: %w", err)
	}
	for i := range posts {
		posts[i] = posts[i].Normalized()
	}
	return posts, nil
}
