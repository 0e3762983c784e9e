package pgstore

import (
	"strconv"
	"strings"

	"github.com/jonwraymond/postsearch/store"
)

var columns = map[store.Field]string{
	store.FieldTitle:       "title",
	store.FieldDescription: "description",
	store.FieldContent:     "content",
	store.FieldAuthor:      "author",
	store.FieldAuthorEmail: "author_email",
	store.FieldSlug:        "slug",
}

// query accumulates positional arguments while SQL fragments are built.
// Equal strings share one placeholder.
type query struct {
	args []any
	seen map[string]string
}

func (q *query) arg(v any) string {
	str, isString := v.(string)
	if isString {
		if ph, ok := q.seen[str]; ok {
			return ph
		}
	}
	q.args = append(q.args, v)
	ph := "$" + strconv.Itoa(len(q.args))
	if isString {
		if q.seen == nil {
			q.seen = make(map[string]string)
		}
		q.seen[str] = ph
	}
	return ph
}

func (q *query) limit(n int) string {
	if n <= 0 {
		return ""
	}
	return " LIMIT " + q.arg(n)
}

// match renders p as a disjunction of regex matches. Fields are validated
// by the caller.
func (q *query) match(p store.Pattern) string {
	op := " ~ "
	if p.CaseInsensitive {
		op = " ~* "
	}
	ph := q.arg(p.Expr)
	parts := make([]string, 0, len(p.Fields))
	for _, f := range p.Fields {
		parts = append(parts, columns[f]+op+ph)
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

// score renders the rules as a sum of CASE terms.
func (q *query) score(rules []store.ScoreRule) string {
	if len(rules) == 0 {
		return "0"
	}
	terms := make([]string, 0, len(rules))
	for _, r := range rules {
		col := columns[r.Field]
		cond := q.condition(col, r)
		if r.MaxRunes > 0 {
			cond += " AND char_length(" + col + ") < " + q.arg(r.MaxRunes) + "::int"
		}
		terms = append(terms, "CASE WHEN "+cond+" THEN "+q.arg(r.Points)+"::int ELSE 0 END")
	}
	return strings.Join(terms, " + ")
}

func (q *query) condition(col string, r store.ScoreRule) string {
	switch r.Op {
	case store.OpEquals:
		return col + ` ~* ('^' || ` + q.arg(regexpQuote(r.Term)) + `::text || '$')`
	case store.OpPrefix:
		return col + ` ~* ('^' || ` + q.arg(regexpQuote(r.Term)) + "::text)"
	case store.OpWordPrefix:
		return col + ` ~* ('\y' || ` + q.arg(regexpQuote(r.Term)) + "::text)"
	default:
		return col + " ~* " + q.arg(regexpQuote(r.Term)) + "::text"
	}
}
