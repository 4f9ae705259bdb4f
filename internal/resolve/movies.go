package resolve

import (
	"context"
	"fmt"
	"strconv"

	"github.com/abelbrown/retroday/internal/calendar"
	"github.com/abelbrown/retroday/internal/facts"
	"github.com/abelbrown/retroday/internal/tmdb"
)

// MaxMovies caps the structured-API movie list.
const MaxMovies = 5

// MovieSource is the subset of *tmdb.Client the movies tier uses.
type MovieSource interface {
	Available() bool
	Discover(ctx context.Context, year int) ([]tmdb.Movie, error)
	Credits(ctx context.Context, movieID int) ([]tmdb.CrewMember, error)
	PosterURL(posterPath string) string
}

// MovieAPITier lists the most popular films released in the date's year.
// It is all-or-nothing: one failed credits lookup fails the whole tier.
type MovieAPITier struct {
	source MovieSource
}

// NewMovieAPITier creates the movies tier backed by source.
func NewMovieAPITier(source MovieSource) *MovieAPITier {
	return &MovieAPITier{source: source}
}

func (t *MovieAPITier) Name() string { return TierMovieAPI }

func (t *MovieAPITier) Attempt(ctx context.Context, d calendar.Date) ([]facts.Movie, error) {
	if t.source == nil || !t.source.Available() {
		return nil, failure(TierMovieAPI, "no credential configured", tmdb.ErrNoCredential)
	}

	found, err := t.source.Discover(ctx, d.Year())
	if err != nil {
		return nil, failure(TierMovieAPI, "discover", err)
	}
	if len(found) == 0 {
		return nil, failure(TierMovieAPI, fmt.Sprintf("no movies released in %d", d.Year()), nil)
	}
	if len(found) > MaxMovies {
		found = found[:MaxMovies]
	}

	movies := make([]facts.Movie, 0, len(found))
	for _, m := range found {
		crew, err := t.source.Credits(ctx, m.ID)
		if err != nil {
			return nil, failure(TierMovieAPI, fmt.Sprintf("credits for movie %d", m.ID), err)
		}

		movie := facts.Movie{
			Title:       m.Title,
			ReleaseYear: releaseYear(m.ReleaseDate, d.Year()),
			Director:    director(crew),
		}
		if m.PosterPath != "" {
			movie.PosterURL = t.source.PosterURL(m.PosterPath)
			movie.PosterAssetID = PosterAssetID(m.ID)
		}
		movies = append(movies, movie)
	}
	return movies, nil
}

// PosterAssetID is the image cache identifier for a movie's poster.
func PosterAssetID(movieID int) string {
	return "tmdb-poster-" + strconv.Itoa(movieID)
}

// director returns the first crew member credited as "Director", or "".
func director(crew []tmdb.CrewMember) string {
	for _, c := range crew {
		if c.Job == "Director" {
			return c.Name
		}
	}
	return ""
}

// releaseYear reads the year from a "YYYY-MM-DD" release date.
func releaseYear(date string, fallback int) int {
	if len(date) < 4 {
		return fallback
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return fallback
	}
	return y
}
