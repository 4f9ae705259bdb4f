// Package wiki retrieves plain-text articles from a MediaWiki API.
package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/abelbrown/retroday/internal/fetch"
)

// DefaultEndpoint is the English Wikipedia API.
const DefaultEndpoint = "https://en.wikipedia.org/w/api.php"

// ErrPageNotFound is returned when the API has no page for the key.
// Transport failures are returned as other errors so callers can tell the two apart.
var ErrPageNotFound = errors.New("page not found")

// getter is the subset of fetch.Fetcher the client needs.
type getter interface {
	Get(ctx context.Context, rawURL string) (fetch.Response, error)
}

// Client fetches article extracts.
type Client struct {
	endpoint string
	http     getter
}

// NewClient creates a Client. If endpoint is empty, DefaultEndpoint is used.
func NewClient(endpoint string, f getter) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{endpoint: endpoint, http: f}
}

type queryResponse struct {
	Query struct {
		Pages []struct {
			Title   string `json:"title"`
			Missing bool   `json:"missing"`
			Invalid bool   `json:"invalid"`
			Extract string `json:"extract"`
		} `json:"pages"`
	} `json:"query"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// Article returns the full plain-text content of the page identified by key
// (e.g. "July_20"). Returns ErrPageNotFound if the page does not exist.
func (c *Client) Article(ctx context.Context, key string) (string, error) {
	q := url.Values{}
	q.Set("action", "query")
	q.Set("format", "json")
	q.Set("formatversion", "2")
	q.Set("prop", "extracts")
	q.Set("explaintext", "1")
	q.Set("redirects", "1")
	q.Set("titles", key)

	resp, err := c.http.Get(ctx, c.endpoint+"?"+q.Encode())
	if err != nil {
		if fetch.IsStatus(err, http.StatusNotFound) {
			return "", fmt.Errorf("%s: %w", key, ErrPageNotFound)
		}
		return "", err
	}

	var qr queryResponse
	if err := json.Unmarshal(resp.Body, &qr); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if qr.Error != nil {
		return "", fmt.Errorf("api error %s: %s", qr.Error.Code, qr.Error.Info)
	}
	if len(qr.Query.Pages) == 0 {
		return "", fmt.Errorf("%s: %w", key, ErrPageNotFound)
	}

	page := qr.Query.Pages[0]
	if page.Missing || page.Invalid {
		return "", fmt.Errorf("%s: %w", key, ErrPageNotFound)
	}
	if strings.TrimSpace(page.Extract) == "" {
		return "", fmt.Errorf("%s: empty article", key)
	}
	return page.Extract, nil
}
