// Package aggregate runs every category's resolver chain for a date and
// assembles the results into one facts.Bundle.
package aggregate

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/retroday/internal/calendar"
	"github.com/abelbrown/retroday/internal/facts"
	"github.com/abelbrown/retroday/internal/otel"
	"github.com/abelbrown/retroday/internal/resolve"
)

// ImageStore caches remote images locally. Satisfied by *imagecache.Cache.
type ImageStore interface {
	FetchOrGet(ctx context.Context, remoteURL, identifier string) (string, bool)
}

// Chains holds one resolver chain per category.
type Chains struct {
	Events     *resolve.Chain[[]string]
	Movies     *resolve.Chain[[]facts.Movie]
	Music      *resolve.Chain[facts.Music]
	Technology *resolve.Chain[facts.Technology]
	Fashion    *resolve.Chain[facts.Fashion]
}

// Sources are the upstreams the production chains draw from. Nil fields
// drop the corresponding tier; the static tiers are always present.
type Sources struct {
	Articles resolve.ArticleSource
	Days     resolve.DaySource
	Movies   resolve.MovieSource
}

// DefaultChains builds the production tier order for every category:
// events try the article, then the day page, then the decade table; movies
// try the structured API only when it has a credential.
func DefaultChains(src Sources, logger *otel.Logger) Chains {
	var events []resolve.Tier[[]string]
	if src.Articles != nil {
		events = append(events, resolve.NewKnowledgeTier(src.Articles, logger))
	}
	if src.Days != nil {
		events = append(events, resolve.NewScrapeTier(src.Days))
	}
	events = append(events, resolve.StaticEvents())

	var movies []resolve.Tier[[]facts.Movie]
	if src.Movies != nil && src.Movies.Available() {
		movies = append(movies, resolve.NewMovieAPITier(src.Movies))
	}
	movies = append(movies, resolve.StaticMovies())

	return Chains{
		Events:     resolve.NewChain(facts.CategoryEvents, logger, events...),
		Movies:     resolve.NewChain(facts.CategoryMovies, logger, movies...),
		Music:      resolve.NewChain(facts.CategoryMusic, logger, resolve.StaticMusic()),
		Technology: resolve.NewChain(facts.CategoryTechnology, logger, resolve.StaticTechnology()),
		Fashion:    resolve.NewChain(facts.CategoryFashion, logger, resolve.StaticFashion()),
	}
}

// Aggregator produces bundles. Safe for concurrent use.
type Aggregator struct {
	chains Chains
	images ImageStore
	logger *otel.Logger
}

// New creates an Aggregator. images may be nil, in which case posters are
// never cached locally.
func New(chains Chains, images ImageStore, logger *otel.Logger) *Aggregator {
	if logger == nil {
		logger = otel.NewNullLogger()
	}
	return &Aggregator{chains: chains, images: images, logger: logger}
}

// Aggregate resolves all five categories concurrently and returns once every
// one has finished. A failing or panicking category leaves its slot empty
// and never affects the others. The only error is cancellation of ctx.
func (a *Aggregator) Aggregate(ctx context.Context, d calendar.Date) (facts.Bundle, error) {
	b := facts.Bundle{
		Date:   d.ISO(),
		Decade: d.Decade(),
		Era:    facts.EraDescription(d.Decade()),
	}

	cats := facts.Categories()
	attempts := make([][]facts.Attempt, len(cats))

	var g errgroup.Group
	for i, cat := range cats {
		g.Go(func() error {
			attempts[i] = a.runCategory(ctx, d, cat, &b)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return facts.Bundle{}, err
	}

	for _, as := range attempts {
		b.Attempts = append(b.Attempts, as...)
	}
	if len(b.Events) > 0 {
		b.Highlight = b.Events[0]
	}
	return b, nil
}

// runCategory resolves one category into its own field of b. Each goroutine
// writes a distinct field, so no locking is needed.
func (a *Aggregator) runCategory(ctx context.Context, d calendar.Date, cat facts.Category, b *facts.Bundle) (attempts []facts.Attempt) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindCategoryPanic, Comp: "aggregate",
				Date: d.ISO(), Category: string(cat), Err: fmt.Sprint(r)})
			attempts = append(attempts, facts.Attempt{Category: cat, Tier: "panic", Reason: fmt.Sprintf("panic: %v", r)})
		}
	}()

	var err error
	switch cat {
	case facts.CategoryEvents:
		var v []string
		v, attempts, err = a.chains.Events.Resolve(ctx, d)
		b.Events = v
	case facts.CategoryMovies:
		var v []facts.Movie
		v, attempts, err = a.chains.Movies.Resolve(ctx, d)
		b.Movies = a.cachePosters(ctx, v)
	case facts.CategoryMusic:
		b.Music, attempts, err = a.chains.Music.Resolve(ctx, d)
	case facts.CategoryTechnology:
		b.Technology, attempts, err = a.chains.Technology.Resolve(ctx, d)
	case facts.CategoryFashion:
		b.Fashion, attempts, err = a.chains.Fashion.Resolve(ctx, d)
	}
	if err != nil {
		a.logger.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindError, Comp: "aggregate",
			Date: d.ISO(), Category: string(cat), Err: err.Error()})
	}
	return attempts
}

// cachePosters stores each poster locally. A failed download or write only
// leaves that movie's PosterPath empty.
func (a *Aggregator) cachePosters(ctx context.Context, movies []facts.Movie) []facts.Movie {
	if a.images == nil {
		return movies
	}
	for i := range movies {
		m := &movies[i]
		if m.PosterURL == "" || m.PosterAssetID == "" {
			continue
		}
		if p, ok := a.images.FetchOrGet(ctx, m.PosterURL, m.PosterAssetID); ok {
			m.PosterPath = p
		}
	}
	return movies
}
