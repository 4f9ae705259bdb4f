package resolve

import (
	"context"
	"slices"

	"github.com/abelbrown/retroday/internal/calendar"
	"github.com/abelbrown/retroday/internal/facts"
)

// staticTier serves curated per-decade data and never fails. Decades without
// a table entry get a generic placeholder.
type staticTier[T any] struct {
	table    map[int]T
	fallback func(d calendar.Date) T
	clone    func(T) T
}

func (t staticTier[T]) Name() string { return TierStatic }

func (t staticTier[T]) Attempt(_ context.Context, d calendar.Date) (T, error) {
	if v, ok := t.table[d.Decade()]; ok {
		return t.clone(v), nil
	}
	return t.fallback(d), nil
}

// StaticEvents is the terminal events tier.
func StaticEvents() Tier[[]string] {
	return staticTier[[]string]{
		table:    staticEvents,
		fallback: func(calendar.Date) []string { return []string{"No specific historical events found for this date."} },
		clone:    func(s []string) []string { return slices.Clone(s) },
	}
}

// StaticMovies is the terminal movies tier.
func StaticMovies() Tier[[]facts.Movie] {
	return staticTier[[]facts.Movie]{
		table: staticMovies,
		fallback: func(d calendar.Date) []facts.Movie {
			return []facts.Movie{{Title: "No specific movie data available", ReleaseYear: d.Year()}}
		},
		clone: func(m []facts.Movie) []facts.Movie { return slices.Clone(m) },
	}
}

// StaticMusic is the only music tier.
func StaticMusic() Tier[facts.Music] {
	return staticTier[facts.Music]{
		table: staticMusic,
		fallback: func(calendar.Date) facts.Music {
			return facts.Music{
				Songs:   []facts.Song{{Title: "No specific song data available", Artist: "Unknown"}},
				Artists: []string{"No artist data available"},
				Trivia:  []string{"No music trivia available for this period."},
			}
		},
		clone: func(m facts.Music) facts.Music {
			return facts.Music{Songs: slices.Clone(m.Songs), Artists: slices.Clone(m.Artists), Trivia: slices.Clone(m.Trivia)}
		},
	}
}

// StaticTechnology is the only technology tier.
func StaticTechnology() Tier[facts.Technology] {
	return staticTier[facts.Technology]{
		table: staticTechnology,
		fallback: func(calendar.Date) facts.Technology {
			return facts.Technology{
				Gadgets:            []string{"No specific gadget data available"},
				Milestones:         []string{"No specific tech milestones available"},
				ComputingNarrative: "No computing information available for this period.",
			}
		},
		clone: func(t facts.Technology) facts.Technology {
			return facts.Technology{
				Gadgets:            slices.Clone(t.Gadgets),
				Milestones:         slices.Clone(t.Milestones),
				ComputingNarrative: t.ComputingNarrative,
			}
		},
	}
}

// StaticFashion is the only fashion tier.
func StaticFashion() Tier[facts.Fashion] {
	return staticTier[facts.Fashion]{
		table: staticFashion,
		fallback: func(calendar.Date) facts.Fashion {
			return facts.Fashion{
				Clothing:   []string{"No specific clothing data available"},
				Hairstyles: []string{"No specific hairstyle data available"},
				Icons:      []string{"No fashion icons available for this period"},
			}
		},
		clone: func(f facts.Fashion) facts.Fashion {
			return facts.Fashion{Clothing: slices.Clone(f.Clothing), Hairstyles: slices.Clone(f.Hairstyles), Icons: slices.Clone(f.Icons)}
		},
	}
}
