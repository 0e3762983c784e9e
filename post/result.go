package post

// Result is a post as returned by search, carrying its relevance score.
//
// Thin results (listing and last-resort searches) leave the detail fields
// empty so they are omitted from JSON.
type Result struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Slug           string    `json:"slug"`
	PublishedAt    Timestamp `json:"publishedAt"`
	RelevanceScore float64   `json:"relevanceScore"`

	// TextScore is the raw text index relevance, set on indexed results.
	TextScore float64 `json:"textScore,omitempty"`

	Content     string `json:"content,omitempty"`
	Image       string `json:"image,omitempty"`
	Author      string `json:"author,omitempty"`
	AuthorEmail string `json:"authorEmail,omitempty"`
	AuthorImage string `json:"authorImage,omitempty"`
}

// Thin builds a listing result.
func Thin(p Post, score float64) Result {
	return Result{
		ID:             p.ID,
		Title:          p.Title,
		Description:    p.Description,
		Slug:           p.Slug,
		PublishedAt:    NewTimestamp(p.PublishedAt),
		RelevanceScore: score,
	}
}

// Full builds a detailed result. The author falls back to UnknownAuthor.
func Full(p Post, score float64) Result {
	r := Thin(p, score)
	r.Content = p.Content
	r.Image = p.Image
	r.Author = p.DisplayAuthor()
	r.AuthorEmail = p.AuthorEmail
	r.AuthorImage = p.AuthorImage
	return r
}

// Results is an ordered list of search results with helper methods.
type Results []Result

// Slugs returns the result slugs in order.
func (r Results) Slugs() []string {
	slugs := make([]string, len(r))
	for i, result := range r {
		slugs[i] = result.Slug
	}
	return slugs
}

// Titles returns the result titles in order.
func (r Results) Titles() []string {
	titles := make([]string, len(r))
	for i, result := range r {
		titles[i] = result.Title
	}
	return titles
}

// Scores returns the relevance scores in order.
func (r Results) Scores() []float64 {
	scores := make([]float64, len(r))
	for i, result := range r {
		scores[i] = result.RelevanceScore
	}
	return scores
}

// FilterByMinScore returns results with a relevance score >= minScore.
func (r Results) FilterByMinScore(minScore float64) Results {
	filtered := Results{}
	for _, result := range r {
		if result.RelevanceScore >= minScore {
			filtered = append(filtered, result)
		}
	}
	return filtered
}
