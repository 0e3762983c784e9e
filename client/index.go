package client

import (
	"math"
	"slices"
	"strings"

	"github.com/jonwraymond/postsearch/post"
)

// DefaultThreshold is the largest field distance that still matches.
const DefaultThreshold = 0.4

// Key is a searchable field of a result and its weight.
type Key struct {
	Name   string
	Weight float64
	Get    func(post.Result) string
}

// DefaultKeys weights the title above the description and the description
// above the content.
var DefaultKeys = []Key{
	{Name: "title", Weight: 2.0, Get: func(r post.Result) string { return r.Title }},
	{Name: "description", Weight: 1.5, Get: func(r post.Result) string { return r.Description }},
	{Name: "content", Weight: 1.0, Get: func(r post.Result) string { return r.Content }},
}

// IndexOptions configures NewIndex. Zero values select the defaults.
type IndexOptions struct {
	Threshold float64
	Keys      []Key
}

// Match is an item of the index that matched a query.
type Match struct {
	Item post.Result
	// Distance is 0 for a perfect match and grows towards 1.
	Distance float64
	// Position is the item's index in the set the Index was built from.
	Position int
}

// Relevance returns 1 - Distance.
func (m Match) Relevance() float64 {
	return 1 - m.Distance
}

type indexedField struct {
	text string
	norm float64
}

// Index is an immutable fuzzy-match snapshot of a result set.
type Index struct {
	items     post.Results
	fields    [][]indexedField
	weights   []float64
	threshold float64
}

// NewIndex builds an index over items. The slice is copied.
func NewIndex(items post.Results, opts IndexOptions) *Index {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if len(opts.Keys) == 0 {
		opts.Keys = DefaultKeys
	}

	var total float64
	for _, k := range opts.Keys {
		total += k.Weight
	}
	weights := make([]float64, len(opts.Keys))
	for i, k := range opts.Keys {
		if total > 0 {
			weights[i] = k.Weight / total
		}
	}

	idx := &Index{
		items:     slices.Clone(items),
		fields:    make([][]indexedField, len(items)),
		weights:   weights,
		threshold: opts.Threshold,
	}
	for i, item := range items {
		fs := make([]indexedField, len(opts.Keys))
		for j, k := range opts.Keys {
			text := strings.ToLower(k.Get(item))
			fs[j] = indexedField{text: text, norm: fieldNorm(text)}
		}
		idx.fields[i] = fs
	}
	return idx
}

// Len returns the number of indexed items.
func (x *Index) Len() int {
	return len(x.items)
}

// Items returns a copy of the indexed set in its original order.
func (x *Index) Items() post.Results {
	return slices.Clone(x.items)
}

// Search returns the items matching query, best first. Ties keep the
// original order. An empty query matches nothing.
func (x *Index) Search(query string) []Match {
	qs := strings.ToLower(strings.TrimSpace(query))
	if qs == "" {
		return nil
	}
	q := []rune(qs)

	var out []Match
	for i, fs := range x.fields {
		score, matched := 1.0, false
		for j, f := range fs {
			d, ok := fieldDistance(q, qs, f.text, x.threshold)
			if !ok {
				continue
			}
			matched = true
			if d == 0 {
				d = epsilon
			}
			score *= math.Pow(d, x.weights[j]*f.norm)
		}
		if matched {
			out = append(out, Match{Item: x.items[i], Distance: score, Position: i})
		}
	}
	slices.SortStableFunc(out, func(a, b Match) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		}
		return 0
	})
	return out
}

// Filter narrows the set to the items matching query with their relevance
// as RelevanceScore. A blank query returns the whole set unchanged.
func (x *Index) Filter(query string) post.Results {
	if strings.TrimSpace(query) == "" {
		return x.Items()
	}
	matches := x.Search(query)
	out := make(post.Results, len(matches))
	for i, m := range matches {
		r := m.Item
		r.RelevanceScore = m.Relevance()
		out[i] = r
	}
	return out
}

// epsilon stands in for a zero distance so a perfect field still lets the
// other fields weigh in.
const epsilon = 2.220446049250313e-16
