package store

import (
	"context"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/jonwraymond/postsearch/post"
)

// Field boosts of the text index, highest first.
const (
	TitleBoost       = 3.0
	DescriptionBoost = 2.0
	AuthorBoost      = 1.0
	ContentBoost     = 1.0
)

var textFields = []struct {
	field Field
	boost float64
}{
	{FieldTitle, TitleBoost},
	{FieldDescription, DescriptionBoost},
	{FieldAuthor, AuthorBoost},
	{FieldContent, ContentBoost},
}

type textHit struct {
	id    string
	score float64
}

type textIndex struct {
	idx bleve.Index
}

func newTextIndex() (*textIndex, error) {
	idx, err := bleve.NewMemOnly(textIndexMapping())
	if err != nil {
		return nil, err
	}
	return &textIndex{idx: idx}, nil
}

func textIndexMapping() mapping.IndexMapping {
	postMapping := bleve.NewDocumentMapping()
	postMapping.Dynamic = false
	for _, tf := range textFields {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = en.AnalyzerName
		fm.Store = false
		fm.IncludeTermVectors = false
		postMapping.AddFieldMappingsAt(string(tf.field), fm)
	}

	im := bleve.NewIndexMapping()
	im.DefaultMapping = postMapping
	im.DefaultAnalyzer = en.AnalyzerName
	return im
}

func (t *textIndex) index(p post.Post) error {
	doc := make(map[string]any, len(textFields))
	for _, tf := range textFields {
		doc[string(tf.field)] = tf.field.Value(p)
	}
	return t.idx.Index(p.ID, doc)
}

func (t *textIndex) search(ctx context.Context, term string, size int) ([]textHit, error) {
	term = strings.TrimSpace(term)
	if term == "" || size <= 0 {
		return nil, nil
	}

	queries := make([]query.Query, 0, len(textFields))
	for _, tf := range textFields {
		q := bleve.NewMatchQuery(term)
		q.SetField(string(tf.field))
		q.SetBoost(tf.boost)
		queries = append(queries, q)
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(queries...), size, 0, false)
	res, err := t.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, err
	}

	hits := make([]textHit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, textHit{id: h.ID, score: h.Score})
	}
	return hits, nil
}

func (t *textIndex) close() error {
	return t.idx.Close()
}
