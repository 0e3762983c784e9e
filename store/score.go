package store

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/jonwraymond/postsearch/post"
)

// MatchOp is a case-insensitive comparison between a field and a term.
// Every operator folds case the way Pattern does, with RE2 (?i).
type MatchOp string

const (
	// OpEquals matches when the field equals the term.
	OpEquals MatchOp = "equals"
	// OpPrefix matches when the field starts with the term.
	OpPrefix MatchOp = "prefix"
	// OpWordPrefix matches when the term starts at a word boundary.
	OpWordPrefix MatchOp = "word_prefix"
	// OpContains matches when the term appears anywhere in the field.
	OpContains MatchOp = "contains"
)

// ScoreRule adds Points when Field satisfies Op against Term. When MaxRunes
// is positive the field must also be shorter than MaxRunes runes.
type ScoreRule struct {
	Field    Field
	Op       MatchOp
	Term     string
	Points   int
	MaxRunes int
}

// Validate checks the rule's field and operator.
func (r ScoreRule) Validate() error {
	if !r.Field.Valid() {
		return fmt.Errorf("%w: unknown field %q", ErrInvalidPattern, r.Field)
	}
	switch r.Op {
	case OpEquals, OpPrefix, OpWordPrefix, OpContains:
		return nil
	}
	return fmt.Errorf("%w: unknown operator %q", ErrInvalidPattern, r.Op)
}

type compiledRule struct {
	ScoreRule
	re *regexp.Regexp
}

// RuleScorer evaluates a fixed set of score rules against posts.
type RuleScorer struct {
	rules []compiledRule
}

// CompileScorer prepares rules for repeated evaluation. Terms are matched
// literally.
func CompileScorer(rules []ScoreRule) *RuleScorer {
	s := &RuleScorer{rules: make([]compiledRule, 0, len(rules))}
	for _, r := range rules {
		s.rules = append(s.rules, compiledRule{ScoreRule: r, re: ruleRegexp(r)})
	}
	return s
}

// Score returns the sum of points of every rule p satisfies.
func (s *RuleScorer) Score(p post.Post) int {
	total := 0
	for _, r := range s.rules {
		if r.match(r.Field.Value(p)) {
			total += r.Points
		}
	}
	return total
}

// ruleRegexp anchors the quoted term for the rule's operator. Unknown
// operators never match.
func ruleRegexp(r ScoreRule) *regexp.Regexp {
	term := regexp.QuoteMeta(r.Term)
	switch r.Op {
	case OpEquals:
		term = `^` + term + `$`
	case OpPrefix:
		term = `^` + term
	case OpWordPrefix:
		term = `\b` + term
	case OpContains:
	default:
		return nil
	}
	return regexp.MustCompile(`(?i)` + term)
}

func (r compiledRule) match(value string) bool {
	if r.re == nil {
		return false
	}
	if r.MaxRunes > 0 && utf8.RuneCountInString(value) >= r.MaxRunes {
		return false
	}
	return r.re.MatchString(value)
}
