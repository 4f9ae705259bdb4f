package resolve

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/abelbrown/retroday/internal/calendar"
	"github.com/abelbrown/retroday/internal/facts"
	"github.com/abelbrown/retroday/internal/otel"
)

func mustDate(t *testing.T, y, m, d int) calendar.Date {
	t.Helper()
	date, err := calendar.New(y, m, d)
	if err != nil {
		t.Fatalf("calendar.New(%d, %d, %d): %v", y, m, d, err)
	}
	return date
}

// recordingTier appends its name to calls on every attempt.
func recordingTier(name string, calls *[]string, out []string, err error) Tier[[]string] {
	return TierFunc[[]string]{
		TierName: name,
		Fn: func(context.Context, calendar.Date) ([]string, error) {
			*calls = append(*calls, name)
			return out, err
		},
	}
}

func TestChainStopsAtFirstSuccess(t *testing.T) {
	var calls []string
	c := NewChain(facts.CategoryEvents, nil,
		recordingTier("a", &calls, nil, failure("a", "down", nil)),
		recordingTier("b", &calls, []string{"ok"}, nil),
		recordingTier("c", &calls, []string{"never"}, nil),
	)

	got, attempts, err := c.Resolve(context.Background(), mustDate(t, 1969, 7, 20))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"ok"}) {
		t.Errorf("got %v", got)
	}
	if !reflect.DeepEqual(calls, []string{"a", "b"}) {
		t.Errorf("calls = %v, want [a b]", calls)
	}
	if len(attempts) != 2 || attempts[0].Succeeded || !attempts[1].Succeeded {
		t.Errorf("unexpected attempts %+v", attempts)
	}
	if attempts[0].Category != facts.CategoryEvents || attempts[0].Tier != "a" || attempts[0].Reason == "" {
		t.Errorf("failed attempt not recorded properly: %+v", attempts[0])
	}
}

func TestChainExhausted(t *testing.T) {
	var calls []string
	c := NewChain(facts.CategoryEvents, nil,
		recordingTier("a", &calls, nil, failure("a", "down", nil)),
		recordingTier("b", &calls, nil, errors.New("plain error")),
	)

	_, attempts, err := c.Resolve(context.Background(), mustDate(t, 1969, 7, 20))
	if !errors.Is(err, ErrChainExhausted) {
		t.Fatalf("expected ErrChainExhausted, got %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("attempts = %d, want 2", len(attempts))
	}
	if !strings.Contains(attempts[1].Reason, "plain error") {
		t.Errorf("non-Failure error not wrapped into reason: %q", attempts[1].Reason)
	}
}

func TestChainTerminalStaticNeverExhausts(t *testing.T) {
	var calls []string
	c := NewChain(facts.CategoryEvents, nil,
		recordingTier("a", &calls, nil, failure("a", "down", nil)),
		StaticEvents(),
	)
	for _, y := range []int{1950, 1969, 1985, 2020} {
		got, _, err := c.Resolve(context.Background(), mustDate(t, y, 1, 1))
		if err != nil {
			t.Errorf("year %d: %v", y, err)
		}
		if len(got) == 0 {
			t.Errorf("year %d: empty result", y)
		}
	}
}

func TestChainEmitsEvents(t *testing.T) {
	buf := otel.NewRingBuffer(32)
	l := otel.NewNullLogger()
	l.SetRingBuffer(buf)

	var calls []string
	c := NewChain(facts.CategoryEvents, l,
		recordingTier("a", &calls, nil, failure("a", "down", nil)),
		recordingTier("b", &calls, []string{"x"}, nil),
	)
	c.Resolve(context.Background(), mustDate(t, 1969, 7, 20))
	l.Close()

	stats := buf.Stats()
	if stats[otel.KindTierAttempt] != 2 {
		t.Errorf("tier.attempt = %d, want 2", stats[otel.KindTierAttempt])
	}
	if stats[otel.KindTierFailure] != 1 || stats[otel.KindTierSuccess] != 1 {
		t.Errorf("unexpected stats %v", stats)
	}
}

func TestChainTiers(t *testing.T) {
	c := NewChain(facts.CategoryMovies, nil, NewMovieAPITier(nil), StaticMovies())
	if got := c.Tiers(); !reflect.DeepEqual(got, []string{TierMovieAPI, TierStatic}) {
		t.Errorf("Tiers() = %v", got)
	}
	if c.Category() != facts.CategoryMovies {
		t.Errorf("Category() = %q", c.Category())
	}
}

func TestFailureUnwrap(t *testing.T) {
	cause := errors.New("boom")
	var err error = failure(TierScrape, "day page unavailable", cause)

	if !errors.Is(err, cause) {
		t.Error("Failure should unwrap to its cause")
	}
	var f *Failure
	if !errors.As(err, &f) || f.Tier != TierScrape {
		t.Errorf("errors.As failed: %v", err)
	}
	if !strings.Contains(err.Error(), "scrape tier") || !strings.Contains(err.Error(), "boom") {
		t.Errorf("Error() = %q", err.Error())
	}
}
