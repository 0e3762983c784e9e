package store

import (
	"cmp"
	"fmt"
	"regexp"

	"github.com/jonwraymond/postsearch/post"
)

// Field names a searchable post field.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldContent     Field = "content"
	FieldAuthor      Field = "author"
	FieldAuthorEmail Field = "authorEmail"
	FieldSlug        Field = "slug"
)

// Value returns the field's value on p.
func (f Field) Value(p post.Post) string {
	switch f {
	case FieldTitle:
		return p.Title
	case FieldDescription:
		return p.Description
	case FieldContent:
		return p.Content
	case FieldAuthor:
		return p.Author
	case FieldAuthorEmail:
		return p.AuthorEmail
	case FieldSlug:
		return p.Slug
	default:
		return ""
	}
}

// Valid reports whether f is a known field.
func (f Field) Valid() bool {
	switch f {
	case FieldTitle, FieldDescription, FieldContent, FieldAuthor, FieldAuthorEmail, FieldSlug:
		return true
	}
	return false
}

// Sort orders posts by publication time. Posts without one sort last.
type Sort int

const (
	SortNewest Sort = iota
	SortOldest
)

// Compare orders a before b under s, breaking ties by ID ascending.
func (s Sort) Compare(a, b post.Post) int {
	if c := comparePublished(a, b, s == SortOldest); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func comparePublished(a, b post.Post, ascending bool) int {
	az, bz := a.PublishedAt.IsZero(), b.PublishedAt.IsZero()
	switch {
	case az && bz:
		return 0
	case az:
		return 1
	case bz:
		return -1
	}
	c := a.PublishedAt.Compare(b.PublishedAt)
	if ascending {
		return c
	}
	return -c
}

// CompareScored orders by Score descending, then publication time
// descending (missing last), then ID ascending.
func CompareScored(a, b Scored) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	return SortNewest.Compare(a.Post, b.Post)
}

// Pattern matches a regular expression against any of Fields.
//
// Expr must stay within the syntax shared by RE2 and PostgreSQL regular
// expressions: literals escaped with regexp.QuoteMeta, anchors, classes.
type Pattern struct {
	Fields          []Field
	Expr            string
	CaseInsensitive bool
}

// LiteralPattern matches term literally, case-insensitively, in any of fields.
func LiteralPattern(term string, fields ...Field) Pattern {
	return Pattern{
		Fields:          fields,
		Expr:            regexp.QuoteMeta(term),
		CaseInsensitive: true,
	}
}

// Validate checks fields and compiles the expression.
func (p Pattern) Validate() error {
	_, err := p.compile()
	return err
}

func (p Pattern) compile() (*regexp.Regexp, error) {
	if len(p.Fields) == 0 {
		return nil, fmt.Errorf("%w: no fields", ErrInvalidPattern)
	}
	for _, f := range p.Fields {
		if !f.Valid() {
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidPattern, f)
		}
	}
	expr := p.Expr
	if p.CaseInsensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return re, nil
}

// Matcher compiles the pattern into a predicate over posts.
func (p Pattern) Matcher() (func(post.Post) bool, error) {
	re, err := p.compile()
	if err != nil {
		return nil, err
	}
	fields := p.Fields
	return func(doc post.Post) bool {
		for _, f := range fields {
			if re.MatchString(f.Value(doc)) {
				return true
			}
		}
		return false
	}, nil
}

// Pipeline is a scored aggregation: filter by Match, score with Score,
// order by score and keep at most Limit results (0 keeps all).
type Pipeline struct {
	Match Pattern
	Score []ScoreRule
	Limit int
}

// TextQuery is a text index search combined with a pipeline: hits for Term
// that satisfy Match, scored TextWeight*TextScore plus the Score rules,
// ordered like a pipeline and capped at Limit (0 keeps all).
type TextQuery struct {
	Term       string
	TextWeight float64
	Pipeline
}

// Validate checks the match pattern and every rule.
func (pl Pipeline) Validate() error {
	if err := pl.Match.Validate(); err != nil {
		return err
	}
	for _, r := range pl.Score {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}
