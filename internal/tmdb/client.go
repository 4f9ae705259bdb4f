// Package tmdb is a small client for The Movie Database discovery and
// credits endpoints.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/abelbrown/retroday/internal/fetch"
)

const (
	// DefaultEndpoint is the TMDB v3 API root.
	DefaultEndpoint = "https://api.themoviedb.org"
	// DefaultImageBase prefixes poster paths.
	DefaultImageBase = "https://image.tmdb.org/t/p/w500"
)

// ErrNoCredential is returned by every call when no API key is configured.
var ErrNoCredential = errors.New("tmdb: no API key configured")

type getter interface {
	Get(ctx context.Context, rawURL string) (fetch.Response, error)
}

// Client queries TMDB. Safe for concurrent use.
type Client struct {
	apiKey    string
	endpoint  string
	imageBase string
	http      getter
	limiter   *rate.Limiter
	backoffs  []time.Duration
}

// NewClient creates a Client. Empty endpoint/imageBase select the defaults.
func NewClient(apiKey, endpoint, imageBase string, f getter) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if imageBase == "" {
		imageBase = DefaultImageBase
	}
	return &Client{
		apiKey:    apiKey,
		endpoint:  endpoint,
		imageBase: imageBase,
		http:      f,
		// TMDB allows roughly 40 requests per 10s; one resolve issues up to 6.
		limiter:  rate.NewLimiter(rate.Every(250*time.Millisecond), 6),
		backoffs: []time.Duration{500 * time.Millisecond, time.Second},
	}
}

// Available returns true if an API key is configured.
func (c *Client) Available() bool {
	return c.apiKey != ""
}

// Movie is one discovery result.
type Movie struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	Popularity  float64 `json:"popularity"`
}

// CrewMember is one entry of a credits crew list.
type CrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

type discoverResponse struct {
	Results *[]Movie `json:"results"`
}

type creditsResponse struct {
	Crew *[]CrewMember `json:"crew"`
}

// Discover returns movies with the given primary release year, most popular first.
func (c *Client) Discover(ctx context.Context, year int) ([]Movie, error) {
	q := url.Values{}
	q.Set("primary_release_year", strconv.Itoa(year))
	q.Set("sort_by", "popularity.desc")

	body, err := c.get(ctx, "/3/discover/movie", q)
	if err != nil {
		return nil, err
	}

	var dr discoverResponse
	if err := json.Unmarshal(body, &dr); err != nil {
		return nil, fmt.Errorf("parse discover response: %w", err)
	}
	if dr.Results == nil {
		return nil, errors.New("discover response missing results")
	}
	return *dr.Results, nil
}

// Credits returns the crew list for a movie, in API order.
func (c *Client) Credits(ctx context.Context, movieID int) ([]CrewMember, error) {
	body, err := c.get(ctx, fmt.Sprintf("/3/movie/%d/credits", movieID), url.Values{})
	if err != nil {
		return nil, err
	}

	var cr creditsResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, fmt.Errorf("parse credits response: %w", err)
	}
	if cr.Crew == nil {
		return nil, errors.New("credits response missing crew")
	}
	return *cr.Crew, nil
}

// PosterURL returns the full image URL for a poster path, or "" if none.
func (c *Client) PosterURL(posterPath string) string {
	if posterPath == "" {
		return ""
	}
	return c.imageBase + posterPath
}

// get issues an authenticated GET, retrying on 429 and 5xx.
func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	if !c.Available() {
		return nil, ErrNoCredential
	}
	q.Set("api_key", c.apiKey)
	u := c.endpoint + path + "?" + q.Encode()

	var lastErr error
	for attempt := 0; attempt <= len(c.backoffs); attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := c.http.Get(ctx, u)
		if err == nil {
			return resp.Body, nil
		}
		lastErr = err

		var se *fetch.StatusError
		if !errors.As(err, &se) || (se.Code != http.StatusTooManyRequests && se.Code < 500) {
			return nil, fmt.Errorf("tmdb %s: %w", path, err)
		}

		if attempt < len(c.backoffs) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoffs[attempt]):
			}
		}
	}
	return nil, fmt.Errorf("tmdb %s failed after %d retries: %w", path, len(c.backoffs), lastErr)
}
