package post

import (
	"fmt"
	"strings"
	"time"
)

// UnknownAuthor is the author shown on full results when a post has none.
const UnknownAuthor = "Unknown Author"

// Post is a stored blog post.
type Post struct {
	ID          string    `json:"id" yaml:"id,omitempty"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	Content     string    `json:"content" yaml:"content"`
	Image       string    `json:"image,omitempty" yaml:"image,omitempty"`
	Author      string    `json:"author,omitempty" yaml:"author,omitempty"`
	AuthorEmail string    `json:"authorEmail,omitempty" yaml:"authorEmail,omitempty"`
	AuthorImage string    `json:"authorImage,omitempty" yaml:"authorImage,omitempty"`
	Slug        string    `json:"slug" yaml:"slug"`
	PublishedAt time.Time `json:"publishedAt" yaml:"publishedAt,omitempty"`
}

// HasPublishedAt reports whether the post carries a publication time.
func (p Post) HasPublishedAt() bool {
	return !p.PublishedAt.IsZero()
}

// Normalized returns a copy with trimmed strings, a slug derived from the
// title when missing, and PublishedAt in UTC.
func (p Post) Normalized() Post {
	p.ID = strings.TrimSpace(p.ID)
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	p.Content = strings.TrimSpace(p.Content)
	p.Image = strings.TrimSpace(p.Image)
	p.Author = strings.TrimSpace(p.Author)
	p.AuthorEmail = strings.TrimSpace(p.AuthorEmail)
	p.AuthorImage = strings.TrimSpace(p.AuthorImage)
	p.Slug = strings.TrimSpace(p.Slug)
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	if !p.PublishedAt.IsZero() {
		p.PublishedAt = p.PublishedAt.UTC()
	}
	return p
}

// Validate checks the fields a store requires.
func (p Post) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidPost)
	}
	if strings.TrimSpace(p.Slug) == "" {
		return fmt.Errorf("%w: slug is required", ErrInvalidPost)
	}
	if p.Slug != Slugify(p.Slug) {
		return fmt.Errorf("%w: slug %q is not url-safe", ErrInvalidPost, p.Slug)
	}
	return nil
}

// DisplayAuthor returns the author, or UnknownAuthor when empty.
func (p Post) DisplayAuthor() string {
	if p.Author == "" {
		return UnknownAuthor
	}
	return p.Author
}
