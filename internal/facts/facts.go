// Package facts defines the normalized shapes produced by the resolution
// pipeline. Every resolver tier for a category returns the same shape, so the
// presentation layer never needs to know which source answered.
package facts

// Category identifies one kind of historical content.
type Category string

const (
	CategoryEvents     Category = "events"
	CategoryMovies     Category = "movies"
	CategoryMusic      Category = "music"
	CategoryTechnology Category = "technology"
	CategoryFashion    Category = "fashion"
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{CategoryEvents, CategoryMovies, CategoryMusic, CategoryTechnology, CategoryFashion}
}

// MaxEvents caps the events list regardless of source.
const MaxEvents = 10

// Movie is one film associated with the date's era.
type Movie struct {
	Title       string `json:"title"`
	ReleaseYear int    `json:"release_year"`
	Director    string `json:"director,omitempty"`
	// PosterAssetID identifies the poster in the image cache.
	PosterAssetID string `json:"poster_asset_id,omitempty"`
	PosterURL     string `json:"poster_url,omitempty"`
	// PosterPath is the local cached file, empty when no image is available.
	PosterPath string `json:"poster_path,omitempty"`
}

// Song is a title/artist pair.
type Song struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// Music groups popular songs, artists and trivia.
type Music struct {
	Songs   []Song   `json:"songs"`
	Artists []string `json:"artists"`
	Trivia  []string `json:"trivia"`
}

// Technology groups gadgets, milestones and a short computing narrative.
type Technology struct {
	Gadgets            []string `json:"gadgets"`
	Milestones         []string `json:"milestones"`
	ComputingNarrative string   `json:"computing_narrative"`
}

// Fashion groups clothing, hairstyles and style icons.
type Fashion struct {
	Clothing   []string `json:"clothing"`
	Hairstyles []string `json:"hairstyles"`
	Icons      []string `json:"icons"`
}

// Attempt records one tier invocation. Diagnostics only.
type Attempt struct {
	Category  Category `json:"category"`
	Tier      string   `json:"tier"`
	Succeeded bool     `json:"succeeded"`
	Reason    string   `json:"reason,omitempty"`
}

// Bundle is the complete, atomically delivered result for one date.
// Treat as read-only once handed to the presentation layer.
type Bundle struct {
	Date      string `json:"date"`
	Decade    int    `json:"decade"`
	Era       string `json:"era"`
	Highlight string `json:"highlight,omitempty"`

	Events     []string   `json:"events"`
	Movies     []Movie    `json:"movies"`
	Music      Music      `json:"music"`
	Technology Technology `json:"technology"`
	Fashion    Fashion    `json:"fashion"`

	Attempts []Attempt `json:"attempts,omitempty"`
}

// Empty reports whether a category has no normalized data at all. The UI uses
// this to pick its "no data" path, which is distinct from generic filler.
func (b Bundle) Empty(c Category) bool {
	switch c {
	case CategoryEvents:
		return len(b.Events) == 0
	case CategoryMovies:
		return len(b.Movies) == 0
	case CategoryMusic:
		return len(b.Music.Songs) == 0 && len(b.Music.Artists) == 0 && len(b.Music.Trivia) == 0
	case CategoryTechnology:
		return len(b.Technology.Gadgets) == 0 && len(b.Technology.Milestones) == 0 && b.Technology.ComputingNarrative == ""
	case CategoryFashion:
		return len(b.Fashion.Clothing) == 0 && len(b.Fashion.Hairstyles) == 0 && len(b.Fashion.Icons) == 0
	}
	return true
}

// AttemptsFor returns the attempts recorded for one category, in order.
func (b Bundle) AttemptsFor(c Category) []Attempt {
	var out []Attempt
	for _, a := range b.Attempts {
		if a.Category == c {
			out = append(out, a)
		}
	}
	return out
}
