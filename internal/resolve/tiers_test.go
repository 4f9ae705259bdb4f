package resolve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/abelbrown/retroday/internal/facts"
	"github.com/abelbrown/retroday/internal/fetch"
	"github.com/abelbrown/retroday/internal/onthisday"
	"github.com/abelbrown/retroday/internal/otel"
	"github.com/abelbrown/retroday/internal/tmdb"
	"github.com/abelbrown/retroday/internal/wiki"
)

type fakeArticles struct {
	text string
	err  error
	keys []string
}

func (f *fakeArticles) Article(_ context.Context, key string) (string, error) {
	f.keys = append(f.keys, key)
	return f.text, f.err
}

type fakeDays struct {
	events []string
	err    error
	calls  int
}

func (f *fakeDays) Events(_ context.Context, _ time.Month, _, _ int) ([]string, error) {
	f.calls++
	return f.events, f.err
}

const moonArticle = `July 20 is the 201st day of the year.

1969 – Apollo 11 lands on the Moon.
Neil Armstrong becomes the first person to walk on the Moon.

1976 – Viking 1 lands on Mars.
`

func TestKnowledgeTierYearBlock(t *testing.T) {
	src := &fakeArticles{text: moonArticle}
	got, err := NewKnowledgeTier(src, nil).Attempt(context.Background(), mustDate(t, 1969, 7, 20))
	if err != nil {
		t.Fatalf("Attempt: %v", err)
	}
	if len(src.keys) != 1 || src.keys[0] != "July_20" {
		t.Errorf("requested keys %v, want [July_20]", src.keys)
	}
	if len(got) == 0 || !strings.HasPrefix(got[0], "1969:") {
		t.Errorf("expected entries prefixed 1969:, got %v", got)
	}
}

func TestKnowledgeTierNoMatches(t *testing.T) {
	src := &fakeArticles{text: "Nothing useful here.\n"}
	_, err := NewKnowledgeTier(src, nil).Attempt(context.Background(), mustDate(t, 1969, 7, 20))
	var f *Failure
	if !errors.As(err, &f) || f.Tier != TierKnowledge {
		t.Fatalf("expected knowledge Failure, got %v", err)
	}
}

func TestKnowledgeTierLogsNotFoundAndTransportDistinctly(t *testing.T) {
	buf := otel.NewRingBuffer(16)
	l := otel.NewNullLogger()
	l.SetRingBuffer(buf)

	d := mustDate(t, 1969, 7, 20)
	missing := &fakeArticles{err: fmt.Errorf("lookup: %w", wiki.ErrPageNotFound)}
	broken := &fakeArticles{err: errors.New("connection refused")}

	if _, err := NewKnowledgeTier(missing, l).Attempt(context.Background(), d); err == nil {
		t.Error("expected failure for missing page")
	}
	if _, err := NewKnowledgeTier(broken, l).Attempt(context.Background(), d); err == nil {
		t.Error("expected failure for transport error")
	}
	l.Close()

	stats := buf.Stats()
	if stats[otel.KindWikiNotFound] != 1 {
		t.Errorf("wiki.not_found = %d, want 1", stats[otel.KindWikiNotFound])
	}
	if stats[otel.KindWikiTransport] != 1 {
		t.Errorf("wiki.transport = %d, want 1", stats[otel.KindWikiTransport])
	}
}

func TestScrapeTier(t *testing.T) {
	many := make([]string, 14)
	for i := range many {
		many[i] = fmt.Sprintf("1969: event %d", i)
	}
	got, err := NewScrapeTier(&fakeDays{events: many}).Attempt(context.Background(), mustDate(t, 1969, 7, 20))
	if err != nil {
		t.Fatalf("Attempt: %v", err)
	}
	if len(got) != facts.MaxEvents {
		t.Errorf("len = %d, want %d", len(got), facts.MaxEvents)
	}

	if _, err := NewScrapeTier(&fakeDays{}).Attempt(context.Background(), mustDate(t, 1969, 7, 20)); err == nil {
		t.Error("expected failure on zero events")
	}
	if _, err := NewScrapeTier(&fakeDays{err: onthisday.ErrNoSections}).Attempt(context.Background(), mustDate(t, 1969, 7, 20)); !errors.Is(err, onthisday.ErrNoSections) {
		t.Errorf("expected wrapped ErrNoSections, got %v", err)
	}
}

// Knowledge fails, scrape is consulted, static is never reached.
func TestEventsChainOrder(t *testing.T) {
	articles := &fakeArticles{err: wiki.ErrPageNotFound}
	days := &fakeDays{events: []string{"1969: scraped"}}
	c := NewChain(facts.CategoryEvents, nil, NewKnowledgeTier(articles, nil), NewScrapeTier(days), StaticEvents())

	got, attempts, err := c.Resolve(context.Background(), mustDate(t, 1969, 7, 20))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"1969: scraped"}) {
		t.Errorf("got %v", got)
	}
	if days.calls != 1 {
		t.Errorf("scrape calls = %d, want 1", days.calls)
	}
	tiers := []string{attempts[0].Tier, attempts[1].Tier}
	if !reflect.DeepEqual(tiers, []string{TierKnowledge, TierScrape}) {
		t.Errorf("attempt order %v", tiers)
	}
}

func TestEventsChainSkipsScrapeOnKnowledgeSuccess(t *testing.T) {
	articles := &fakeArticles{text: moonArticle}
	days := &fakeDays{events: []string{"1969: scraped"}}
	c := NewChain(facts.CategoryEvents, nil, NewKnowledgeTier(articles, nil), NewScrapeTier(days), StaticEvents())

	if _, _, err := c.Resolve(context.Background(), mustDate(t, 1969, 7, 20)); err != nil {
		t.Fatal(err)
	}
	if days.calls != 0 {
		t.Errorf("scrape tier invoked after knowledge success")
	}
}

// With both upstreams unreachable a 1969 date gets the 1960s table.
func TestEventsChainUnreachableFallsBackToDecade(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := server.URL
	server.Close()

	f := fetch.NewFetcher(time.Second)
	c := NewChain(facts.CategoryEvents, nil,
		NewKnowledgeTier(wiki.NewClient(base+"/w/api.php", f), nil),
		NewScrapeTier(onthisday.NewScraper(base, f)),
		StaticEvents(),
	)

	got, attempts, err := c.Resolve(context.Background(), mustDate(t, 1969, 7, 20))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !reflect.DeepEqual(got, staticEvents[1960]) {
		t.Errorf("got %v, want 1960s table", got)
	}
	if len(attempts) != 3 || !attempts[2].Succeeded || attempts[2].Tier != TierStatic {
		t.Errorf("unexpected attempts %+v", attempts)
	}
}

func TestStaticTables(t *testing.T) {
	ctx := context.Background()

	events, _ := StaticEvents().Attempt(ctx, mustDate(t, 1955, 3, 1))
	want := []string{
		"The post-war economic boom leads to suburban expansion",
		"Rock 'n' roll music emerges as a cultural force",
		"The Cold War begins between the US and Soviet Union",
	}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("1950s events = %v", events)
	}

	movies, _ := StaticMovies().Attempt(ctx, mustDate(t, 1969, 7, 20))
	if len(movies) != 3 || movies[2].Title != "2001: A Space Odyssey" || movies[2].Director != "Stanley Kubrick" {
		t.Errorf("1960s movies = %+v", movies)
	}

	music, _ := StaticMusic().Attempt(ctx, mustDate(t, 1950, 1, 1))
	if music.Songs[0].Title != "Hound Dog" || len(music.Artists) != 4 || len(music.Trivia) != 2 {
		t.Errorf("1950s music = %+v", music)
	}

	tech, _ := StaticTechnology().Attempt(ctx, mustDate(t, 1962, 1, 1))
	if tech.Gadgets[1] != "Color TV" || !strings.HasPrefix(tech.ComputingNarrative, "Mainframe") {
		t.Errorf("1960s tech = %+v", tech)
	}

	fashion, _ := StaticFashion().Attempt(ctx, mustDate(t, 1965, 1, 1))
	if fashion.Icons[0] != "Twiggy" {
		t.Errorf("1960s fashion = %+v", fashion)
	}
}

func TestStaticPlaceholders(t *testing.T) {
	ctx := context.Background()
	d := mustDate(t, 1985, 6, 15)

	events, err := StaticEvents().Attempt(ctx, d)
	if err != nil || len(events) != 1 || events[0] != "No specific historical events found for this date." {
		t.Errorf("events placeholder = %v, %v", events, err)
	}
	movies, _ := StaticMovies().Attempt(ctx, d)
	if len(movies) != 1 || movies[0].ReleaseYear != 1985 {
		t.Errorf("movies placeholder = %+v", movies)
	}
	music, _ := StaticMusic().Attempt(ctx, d)
	if len(music.Songs) != 1 || music.Songs[0].Artist != "Unknown" {
		t.Errorf("music placeholder = %+v", music)
	}
	tech, _ := StaticTechnology().Attempt(ctx, d)
	if tech.ComputingNarrative != "No computing information available for this period." {
		t.Errorf("tech placeholder = %+v", tech)
	}
	fashion, _ := StaticFashion().Attempt(ctx, d)
	if len(fashion.Clothing) != 1 || len(fashion.Hairstyles) != 1 || len(fashion.Icons) != 1 {
		t.Errorf("fashion placeholder = %+v", fashion)
	}
}

func TestStaticResultsAreCopies(t *testing.T) {
	d := mustDate(t, 1955, 1, 1)
	a, _ := StaticEvents().Attempt(context.Background(), d)
	a[0] = "mutated"
	b, _ := StaticEvents().Attempt(context.Background(), d)
	if b[0] == "mutated" {
		t.Error("static table shared with caller")
	}
}

type fakeMovies struct {
	available bool
	found     []tmdb.Movie
	crew      map[int][]tmdb.CrewMember
	discErr   error
	creditErr map[int]error
	credited  []int
}

func (f *fakeMovies) Available() bool { return f.available }

func (f *fakeMovies) Discover(context.Context, int) ([]tmdb.Movie, error) {
	return f.found, f.discErr
}

func (f *fakeMovies) Credits(_ context.Context, id int) ([]tmdb.CrewMember, error) {
	f.credited = append(f.credited, id)
	if err := f.creditErr[id]; err != nil {
		return nil, err
	}
	return f.crew[id], nil
}

func (f *fakeMovies) PosterURL(p string) string { return "https://img.example" + p }

func TestMovieAPITier(t *testing.T) {
	src := &fakeMovies{available: true, crew: map[int][]tmdb.CrewMember{
		1: {{Name: "Producer P", Job: "Producer"}, {Name: "Dennis Hopper", Job: "Director"}, {Name: "Other", Job: "Director"}},
	}}
	for i := 1; i <= 7; i++ {
		m := tmdb.Movie{ID: i, Title: fmt.Sprintf("Movie %d", i), ReleaseDate: "1969-07-14"}
		if i == 1 {
			m.PosterPath = "/p1.jpg"
		}
		src.found = append(src.found, m)
	}

	got, err := NewMovieAPITier(src).Attempt(context.Background(), mustDate(t, 1969, 7, 20))
	if err != nil {
		t.Fatalf("Attempt: %v", err)
	}
	if len(got) != MaxMovies {
		t.Fatalf("len = %d, want %d", len(got), MaxMovies)
	}
	if len(src.credited) != MaxMovies {
		t.Errorf("credits lookups = %d, want %d", len(src.credited), MaxMovies)
	}
	first := got[0]
	if first.Director != "Dennis Hopper" {
		t.Errorf("director = %q, want first Director credit", first.Director)
	}
	if first.ReleaseYear != 1969 || first.PosterURL != "https://img.example/p1.jpg" || first.PosterAssetID != "tmdb-poster-1" {
		t.Errorf("unexpected first movie %+v", first)
	}
	if got[1].Director != "" || got[1].PosterAssetID != "" {
		t.Errorf("movie without director/poster should leave fields empty: %+v", got[1])
	}
}

func TestMovieAPITierAllOrNothing(t *testing.T) {
	src := &fakeMovies{
		available: true,
		found:     []tmdb.Movie{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}},
		creditErr: map[int]error{2: errors.New("502")},
	}
	got, err := NewMovieAPITier(src).Attempt(context.Background(), mustDate(t, 1969, 7, 20))
	if err == nil {
		t.Fatal("expected failure when one credits lookup fails")
	}
	if got != nil {
		t.Errorf("partial results returned: %+v", got)
	}
}

func TestMovieAPITierNoCredential(t *testing.T) {
	src := &fakeMovies{available: false}
	_, err := NewMovieAPITier(src).Attempt(context.Background(), mustDate(t, 1969, 7, 20))
	if !errors.Is(err, tmdb.ErrNoCredential) {
		t.Errorf("expected ErrNoCredential, got %v", err)
	}
}

func TestMovieAPITierDiscoverFailure(t *testing.T) {
	src := &fakeMovies{available: true, discErr: errors.New("bad json")}
	if _, err := NewMovieAPITier(src).Attempt(context.Background(), mustDate(t, 1969, 7, 20)); err == nil {
		t.Error("expected failure")
	}
	src = &fakeMovies{available: true}
	if _, err := NewMovieAPITier(src).Attempt(context.Background(), mustDate(t, 1969, 7, 20)); err == nil {
		t.Error("expected failure on empty discover results")
	}
}

func TestMoviesChainFallsBackToStatic(t *testing.T) {
	c := NewChain(facts.CategoryMovies, nil, NewMovieAPITier(&fakeMovies{}), StaticMovies())
	got, attempts, err := c.Resolve(context.Background(), mustDate(t, 1969, 7, 20))
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Title != "Psycho" {
		t.Errorf("got %+v", got)
	}
	if len(attempts) != 2 || attempts[0].Succeeded {
		t.Errorf("attempts = %+v", attempts)
	}
}

func TestReleaseYear(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"1969-07-14", 1969},
		{"", 1970},
		{"abc", 1970},
		{"19xx-01-01", 1970},
	}
	for _, tc := range cases {
		if got := releaseYear(tc.in, 1970); got != tc.want {
			t.Errorf("releaseYear(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

