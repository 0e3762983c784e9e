package ranking

import (
	"slices"
	"strings"

	"github.com/jonwraymond/postsearch/post"
	"github.com/jonwraymond/postsearch/store"
)

// Points awarded per rule.
const (
	TitleExactPoints          = 1000
	TitlePrefixPoints         = 500
	TitleWordPoints           = 300
	TitleContainsPoints       = 200
	DescriptionPrefixPoints   = 100
	DescriptionWordPoints     = 80
	DescriptionContainsPoints = 50
	AuthorContainsPoints      = 75
	ShortTitleBonus           = 25
)

// ShortTitleRunes is the exclusive title length limit for ShortTitleBonus.
const ShortTitleRunes = 30

// CandidateFields are the fields a post must contain the term in to be
// ranked at all.
var CandidateFields = []store.Field{
	store.FieldTitle,
	store.FieldDescription,
	store.FieldContent,
	store.FieldAuthor,
}

// Rules returns the scoring table for term. The term is trimmed; an empty
// term yields no rules.
func Rules(term string) []store.ScoreRule {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}
	return []store.ScoreRule{
		{Field: store.FieldTitle, Op: store.OpEquals, Term: term, Points: TitleExactPoints},
		{Field: store.FieldTitle, Op: store.OpPrefix, Term: term, Points: TitlePrefixPoints},
		{Field: store.FieldTitle, Op: store.OpWordPrefix, Term: term, Points: TitleWordPoints},
		{Field: store.FieldTitle, Op: store.OpContains, Term: term, Points: TitleContainsPoints},
		{Field: store.FieldDescription, Op: store.OpPrefix, Term: term, Points: DescriptionPrefixPoints},
		{Field: store.FieldDescription, Op: store.OpWordPrefix, Term: term, Points: DescriptionWordPoints},
		{Field: store.FieldDescription, Op: store.OpContains, Term: term, Points: DescriptionContainsPoints},
		{Field: store.FieldAuthor, Op: store.OpContains, Term: term, Points: AuthorContainsPoints},
		{Field: store.FieldTitle, Op: store.OpContains, Term: term, Points: ShortTitleBonus, MaxRunes: ShortTitleRunes},
	}
}

// Scorer scores posts against a fixed term.
type Scorer struct {
	candidate func(post.Post) bool
	rules     *store.RuleScorer
}

// NewScorer compiles the scoring table for term.
func NewScorer(term string) *Scorer {
	term = strings.TrimSpace(term)
	s := &Scorer{rules: store.CompileScorer(Rules(term))}
	if term != "" {
		// literal patterns over valid fields always compile
		s.candidate, _ = CandidatePattern(term).Matcher()
	}
	return s
}

// Score returns the additive relevance of p. Posts outside the candidate
// set score 0.
func (s *Scorer) Score(p post.Post) int {
	if !s.IsCandidate(p) {
		return 0
	}
	return s.rules.Score(p)
}

// IsCandidate reports whether any candidate field contains the term.
func (s *Scorer) IsCandidate(p post.Post) bool {
	if s.candidate == nil {
		return false
	}
	return s.candidate(p)
}

// Score returns the relevance of p for term.
func Score(term string, p post.Post) int {
	return NewScorer(term).Score(p)
}

// CandidatePattern matches posts containing term in any candidate field.
func CandidatePattern(term string) store.Pattern {
	return store.LiteralPattern(strings.TrimSpace(term), CandidateFields...)
}

// Pipeline builds the scored aggregation for term, keeping at most limit
// results.
func Pipeline(term string, limit int) store.Pipeline {
	return store.Pipeline{
		Match: CandidatePattern(term),
		Score: Rules(term),
		Limit: limit,
	}
}

// TextQuery builds the ranked text index search for term: text scores are
// multiplied by weight and added to the scoring table.
func TextQuery(term string, weight float64, limit int) store.TextQuery {
	return store.TextQuery{
		Term:       strings.TrimSpace(term),
		TextWeight: weight,
		Pipeline:   Pipeline(term, limit),
	}
}

// Sort orders scored posts by score, then publication time (newest first,
// missing last), then ID.
func Sort(scored []store.Scored) {
	slices.SortStableFunc(scored, store.CompareScored)
}

// Cap sorts scored and truncates it to limit. A non-positive limit keeps
// everything.
func Cap(scored []store.Scored, limit int) []store.Scored {
	Sort(scored)
	if limit > 0 && len(scored) > limit {
		return scored[:limit]
	}
	return scored
}
