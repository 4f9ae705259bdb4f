// Package onthisday scrapes day-indexed "on this day" pages.
//
// The page is expected to contain one <section class="event-list"> per year,
// each with an <h3> heading holding the year and <li> items for the events.
package onthisday

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/abelbrown/retroday/internal/fetch"
)

// DefaultBaseURL is the site the scraper targets.
const DefaultBaseURL = "https://www.onthisday.com"

// ErrNoSections is returned when the page lacks the expected section markup.
var ErrNoSections = errors.New("no event-list sections found")

type getter interface {
	Get(ctx context.Context, rawURL string) (fetch.Response, error)
}

// Scraper fetches and parses day pages.
type Scraper struct {
	baseURL string
	http    getter
}

// NewScraper creates a Scraper. If baseURL is empty, DefaultBaseURL is used.
func NewScraper(baseURL string, f getter) *Scraper {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Scraper{baseURL: strings.TrimRight(baseURL, "/"), http: f}
}

// DayURL returns the page URL for a month and day.
func (s *Scraper) DayURL(month time.Month, day int) string {
	return fmt.Sprintf("%s/day/%s/%d", s.baseURL, strings.ToLower(month.String()), day)
}

// Events fetches the page for month/day and returns "year: text" lines in
// page order, capped to limit (no cap if limit <= 0).
func (s *Scraper) Events(ctx context.Context, month time.Month, day, limit int) ([]string, error) {
	resp, err := s.http.Get(ctx, s.DayURL(month, day))
	if err != nil {
		return nil, err
	}
	return Parse(resp.Body, limit)
}

// Parse extracts events from page HTML.
func Parse(page []byte, limit int) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	sections := doc.Find("section.event-list")
	if sections.Length() == 0 {
		return nil, ErrNoSections
	}

	var events []string
	var structErr error
	sections.EachWithBreak(func(i int, sec *goquery.Selection) bool {
		heading := sec.Find("h3").First()
		if heading.Length() == 0 {
			structErr = fmt.Errorf("section %d has no year heading", i)
			return false
		}
		year := collapse(heading.Text())

		sec.Find("li").EachWithBreak(func(_ int, li *goquery.Selection) bool {
			if text := collapse(li.Text()); text != "" {
				events = append(events, year+": "+text)
			}
			return limit <= 0 || len(events) < limit
		})
		return limit <= 0 || len(events) < limit
	})
	if structErr != nil {
		return nil, structErr
	}
	if len(events) == 0 {
		return nil, errors.New("event-list sections contain no items")
	}
	return events, nil
}

// collapse trims and folds internal whitespace runs to single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
