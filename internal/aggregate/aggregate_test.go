package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/abelbrown/retroday/internal/calendar"
	"github.com/abelbrown/retroday/internal/facts"
	"github.com/abelbrown/retroday/internal/otel"
	"github.com/abelbrown/retroday/internal/resolve"
	"github.com/abelbrown/retroday/internal/tmdb"
)

func mustDate(t *testing.T, y, m, d int) calendar.Date {
	t.Helper()
	date, err := calendar.New(y, m, d)
	if err != nil {
		t.Fatal(err)
	}
	return date
}

type failingArticles struct{}

func (failingArticles) Article(context.Context, string) (string, error) {
	return "", errors.New("connection refused")
}

type failingDays struct{}

func (failingDays) Events(context.Context, time.Month, int, int) ([]string, error) {
	return nil, errors.New("connection refused")
}

type stubMovies struct {
	available bool
}

func (s stubMovies) Available() bool { return s.available }

func (s stubMovies) Discover(context.Context, int) ([]tmdb.Movie, error) {
	return []tmdb.Movie{
		{ID: 7, Title: "Easy Rider", ReleaseDate: "1969-07-14", PosterPath: "/er.jpg"},
		{ID: 8, Title: "Midnight Cowboy", ReleaseDate: "1969-05-25", PosterPath: "/mc.jpg"},
	}, nil
}

func (s stubMovies) Credits(context.Context, int) ([]tmdb.CrewMember, error) {
	return []tmdb.CrewMember{{Name: "Someone", Job: "Director"}}, nil
}

func (s stubMovies) PosterURL(p string) string { return "https://img.example" + p }

type fakeImages struct {
	mu    sync.Mutex
	fail  map[string]bool
	calls []string
}

func (f *fakeImages) FetchOrGet(_ context.Context, _, id string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, id)
	if f.fail[id] {
		return "", false
	}
	return "/cache/" + id + ".jpg", true
}

func TestAggregateStaticOnly(t *testing.T) {
	a := New(DefaultChains(Sources{}, nil), nil, nil)

	b, err := a.Aggregate(context.Background(), mustDate(t, 1969, 7, 20))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if b.Date != "1969-07-20" || b.Decade != 1960 {
		t.Errorf("date/decade = %q/%d", b.Date, b.Decade)
	}
	if b.Era != facts.EraDescription(1960) {
		t.Errorf("era = %q", b.Era)
	}
	if len(b.Events) != 3 || b.Highlight != b.Events[0] {
		t.Errorf("events/highlight = %v / %q", b.Events, b.Highlight)
	}
	for _, c := range facts.Categories() {
		if b.Empty(c) {
			t.Errorf("category %s empty", c)
		}
		as := b.AttemptsFor(c)
		if len(as) != 1 || as[0].Tier != resolve.TierStatic || !as[0].Succeeded {
			t.Errorf("%s attempts = %+v", c, as)
		}
	}
}

// The same date and the same upstream responses give byte-identical bundles.
func TestAggregateIdempotent(t *testing.T) {
	src := Sources{Articles: failingArticles{}, Days: failingDays{}, Movies: stubMovies{available: true}}
	a := New(DefaultChains(src, nil), &fakeImages{}, nil)
	d := mustDate(t, 1969, 7, 20)

	b1, err := a.Aggregate(context.Background(), d)
	if err != nil {
		t.Fatal(err)
	}
	b2, err := a.Aggregate(context.Background(), d)
	if err != nil {
		t.Fatal(err)
	}

	j1, _ := json.Marshal(b1)
	j2, _ := json.Marshal(b2)
	if string(j1) != string(j2) {
		t.Errorf("bundles differ:\n%s\n%s", j1, j2)
	}
}

func TestAggregateAttemptOrder(t *testing.T) {
	src := Sources{Articles: failingArticles{}, Days: failingDays{}}
	a := New(DefaultChains(src, nil), nil, nil)

	b, err := a.Aggregate(context.Background(), mustDate(t, 1950, 1, 1))
	if err != nil {
		t.Fatal(err)
	}

	var got []string
	for _, at := range b.Attempts {
		got = append(got, string(at.Category)+"/"+at.Tier)
	}
	want := []string{
		"events/knowledge", "events/scrape", "events/static",
		"movies/static", "music/static", "technology/static", "fashion/static",
	}
	if len(got) != len(want) {
		t.Fatalf("attempts = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("attempt %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestAggregateMoviesUseAPIAndCachePosters(t *testing.T) {
	images := &fakeImages{fail: map[string]bool{"tmdb-poster-8": true}}
	a := New(DefaultChains(Sources{Movies: stubMovies{available: true}}, nil), images, nil)

	b, err := a.Aggregate(context.Background(), mustDate(t, 1969, 7, 20))
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Movies) != 2 || b.Movies[0].Title != "Easy Rider" {
		t.Fatalf("movies = %+v", b.Movies)
	}
	if b.Movies[0].PosterPath != "/cache/tmdb-poster-7.jpg" {
		t.Errorf("poster path = %q", b.Movies[0].PosterPath)
	}
	// A cache failure leaves no image but keeps the movie.
	if b.Movies[1].PosterPath != "" || b.Movies[1].Title != "Midnight Cowboy" {
		t.Errorf("failed poster movie = %+v", b.Movies[1])
	}
	if len(images.calls) != 2 {
		t.Errorf("image calls = %v", images.calls)
	}
}

func TestAggregateMoviesSkipAPIWithoutCredential(t *testing.T) {
	chains := DefaultChains(Sources{Movies: stubMovies{available: false}}, nil)
	tiers := chains.Movies.Tiers()
	if len(tiers) != 1 || tiers[0] != resolve.TierStatic {
		t.Errorf("movies tiers = %v, want [static]", tiers)
	}
}

func TestAggregatePanicIsolated(t *testing.T) {
	chains := DefaultChains(Sources{}, nil)
	chains.Music = resolve.NewChain(facts.CategoryMusic, nil, resolve.Tier[facts.Music](resolve.TierFunc[facts.Music]{
		TierName: "broken",
		Fn: func(context.Context, calendar.Date) (facts.Music, error) {
			panic("nil map write")
		},
	}))

	buf := otel.NewRingBuffer(64)
	l := otel.NewNullLogger()
	l.SetRingBuffer(buf)

	b, err := New(chains, nil, l).Aggregate(context.Background(), mustDate(t, 1969, 7, 20))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	l.Close()

	if !b.Empty(facts.CategoryMusic) {
		t.Errorf("panicking category should be empty: %+v", b.Music)
	}
	for _, c := range []facts.Category{facts.CategoryEvents, facts.CategoryMovies, facts.CategoryTechnology, facts.CategoryFashion} {
		if b.Empty(c) {
			t.Errorf("category %s affected by music panic", c)
		}
	}
	as := b.AttemptsFor(facts.CategoryMusic)
	if len(as) != 1 || as[0].Succeeded || as[0].Tier != "panic" {
		t.Errorf("music attempts = %+v", as)
	}
	if buf.Stats()[otel.KindCategoryPanic] != 1 {
		t.Errorf("expected one category panic event, stats %v", buf.Stats())
	}
}

func TestAggregateRunsCategoriesConcurrently(t *testing.T) {
	var arrived sync.WaitGroup
	arrived.Add(len(facts.Categories()))
	all := make(chan struct{})
	go func() {
		arrived.Wait()
		close(all)
	}()

	// Each tier waits for all five categories to have started.
	rendezvous := func() error {
		arrived.Done()
		select {
		case <-all:
			return nil
		case <-time.After(5 * time.Second):
			return errors.New("categories did not run concurrently")
		}
	}

	chains := Chains{
		Events: resolve.NewChain(facts.CategoryEvents, nil, resolve.Tier[[]string](resolve.TierFunc[[]string]{TierName: "t",
			Fn: func(context.Context, calendar.Date) ([]string, error) { return []string{"e"}, rendezvous() }})),
		Movies: resolve.NewChain(facts.CategoryMovies, nil, resolve.Tier[[]facts.Movie](resolve.TierFunc[[]facts.Movie]{TierName: "t",
			Fn: func(context.Context, calendar.Date) ([]facts.Movie, error) { return []facts.Movie{{Title: "m"}}, rendezvous() }})),
		Music: resolve.NewChain(facts.CategoryMusic, nil, resolve.Tier[facts.Music](resolve.TierFunc[facts.Music]{TierName: "t",
			Fn: func(context.Context, calendar.Date) (facts.Music, error) { return facts.Music{Trivia: []string{"x"}}, rendezvous() }})),
		Technology: resolve.NewChain(facts.CategoryTechnology, nil, resolve.Tier[facts.Technology](resolve.TierFunc[facts.Technology]{TierName: "t",
			Fn: func(context.Context, calendar.Date) (facts.Technology, error) { return facts.Technology{Gadgets: []string{"x"}}, rendezvous() }})),
		Fashion: resolve.NewChain(facts.CategoryFashion, nil, resolve.Tier[facts.Fashion](resolve.TierFunc[facts.Fashion]{TierName: "t",
			Fn: func(context.Context, calendar.Date) (facts.Fashion, error) { return facts.Fashion{Icons: []string{"x"}}, rendezvous() }})),
	}

	b, err := New(chains, nil, nil).Aggregate(context.Background(), mustDate(t, 1969, 7, 20))
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range facts.Categories() {
		if as := b.AttemptsFor(c); len(as) != 1 || !as[0].Succeeded {
			t.Errorf("%s attempts = %+v", c, as)
		}
	}
}

func TestAggregateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(DefaultChains(Sources{}, nil), nil, nil).Aggregate(ctx, mustDate(t, 1969, 7, 20))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
