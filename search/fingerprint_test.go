package search

import (
	"testing"
	"time"

	"github.com/jonwraymond/postsearch/post"
)

func TestFingerprint_SameResultsProduceSameFingerprint(t *testing.T) {
	results := post.Results{
		{ID: "1", Title: "One", Slug: "one", RelevanceScore: 10},
		{ID: "2", Title: "Two", Slug: "two", RelevanceScore: 5},
	}

	fp1 := Fingerprint(results)
	fp2 := Fingerprint(results)

	if fp1 != fp2 {
		t.Errorf("same results produced different fingerprints: %s vs %s", fp1, fp2)
	}
	if len(fp1) != 64 {
		t.Errorf("expected a hex sha256, got %q", fp1)
	}
}

func TestFingerprint_OrderMatters(t *testing.T) {
	a := post.Result{ID: "1", Title: "One"}
	b := post.Result{ID: "2", Title: "Two"}

	if Fingerprint(post.Results{a, b}) == Fingerprint(post.Results{b, a}) {
		t.Error("different order should produce different fingerprints")
	}
}

func TestFingerprint_IncludesAllFields(t *testing.T) {
	base := post.Result{
		ID:             "1",
		Title:          "Title",
		Description:    "Description",
		Slug:           "title",
		PublishedAt:    post.NewTimestamp(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		RelevanceScore: 100,
		TextScore:      1.5,
		Content:        "Content",
		Image:          "img.png",
		Author:         "Ada",
		AuthorEmail:    "ada@example.com",
		AuthorImage:    "ada.png",
	}
	baseFP := Fingerprint(post.Results{base})

	variations := map[string]func(r *post.Result){
		"id":          func(r *post.Result) { r.ID = "2" },
		"title":       func(r *post.Result) { r.Title = "Other" },
		"description": func(r *post.Result) { r.Description = "Other" },
		"slug":        func(r *post.Result) { r.Slug = "other" },
		"publishedAt": func(r *post.Result) { r.PublishedAt = post.Timestamp{} },
		"score":       func(r *post.Result) { r.RelevanceScore = 99 },
		"textScore":   func(r *post.Result) { r.TextScore = 0 },
		"content":     func(r *post.Result) { r.Content = "" },
		"image":       func(r *post.Result) { r.Image = "" },
		"author":      func(r *post.Result) { r.Author = post.UnknownAuthor },
		"authorEmail": func(r *post.Result) { r.AuthorEmail = "" },
		"authorImage": func(r *post.Result) { r.AuthorImage = "" },
	}
	for name, mutate := range variations {
		r := base
		mutate(&r)
		if Fingerprint(post.Results{r}) == baseFP {
			t.Errorf("changing %s did not change the fingerprint", name)
		}
	}
}

func TestFingerprint_FieldBoundaries(t *testing.T) {
	a := post.Results{{ID: "ab", Title: "c"}}
	b := post.Results{{ID: "a", Title: "bc"}}
	if Fingerprint(a) == Fingerprint(b) {
		t.Error("field boundaries should be part of the fingerprint")
	}
}

func TestFingerprint_Empty(t *testing.T) {
	if Fingerprint(nil) != Fingerprint(post.Results{}) {
		t.Error("nil and empty results should fingerprint the same")
	}
}
