package resolve

import (
	"context"
	"time"

	"github.com/abelbrown/retroday/internal/calendar"
	"github.com/abelbrown/retroday/internal/facts"
)

// DaySource lists events for a calendar day. Satisfied by *onthisday.Scraper.
type DaySource interface {
	Events(ctx context.Context, month time.Month, day, limit int) ([]string, error)
}

// ScrapeTier reads events from a third-party "on this day" page.
type ScrapeTier struct {
	source DaySource
}

// NewScrapeTier creates the secondary events tier.
func NewScrapeTier(source DaySource) *ScrapeTier {
	return &ScrapeTier{source: source}
}

func (t *ScrapeTier) Name() string { return TierScrape }

func (t *ScrapeTier) Attempt(ctx context.Context, d calendar.Date) ([]string, error) {
	events, err := t.source.Events(ctx, d.Month(), d.Day(), facts.MaxEvents)
	if err != nil {
		return nil, failure(TierScrape, "day page unavailable", err)
	}
	if len(events) == 0 {
		return nil, failure(TierScrape, "no events on day page", nil)
	}
	if len(events) > facts.MaxEvents {
		events = events[:facts.MaxEvents]
	}
	return events, nil
}
