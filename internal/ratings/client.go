// Package ratings looks up a book's community average rating from an
// external review-counts API. The lookup is best-effort: callers treat any
// error as "no rating available" and render 0 instead of failing the page.
package ratings

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mrlokans/bookclub/internal/config"
)

// Client is the lookup contract the book detail page depends on.
type Client interface {
	AverageRating(ctx context.Context, isbn string) (float64, error)
}

// ReviewCountsClient queries a Goodreads-style review_counts endpoint.
type ReviewCountsClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewReviewCountsClient creates a rating lookup client with an explicit
// request timeout. Calls are single-attempt; there is no retry.
func NewReviewCountsClient(cfg config.Ratings) *ReviewCountsClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &ReviewCountsClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
	}
}

// AverageRating fetches the average community rating for an ISBN.
func (c *ReviewCountsClient) AverageRating(ctx context.Context, isbn string) (float64, error) {
	isbn = normalizeISBN(isbn)
	if isbn == "" {
		return 0, fmt.Errorf("invalid ISBN")
	}

	params := url.Values{}
	params.Set("isbns", isbn)
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	lookupURL := fmt.Sprintf("%s/book/review_counts.json?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "BookClub/1.0 (https://github.com/mrlokans/bookclub)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch rating: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result reviewCountsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}

	if len(result.Books) == 0 {
		return 0, fmt.Errorf("no rating data for ISBN %s", isbn)
	}

	return result.Books[0].averageRating(), nil
}

// normalizeISBN removes hyphens and spaces from an ISBN and rejects values
// that are neither ISBN-10 nor ISBN-13.
func normalizeISBN(isbn string) string {
	isbn = strings.ReplaceAll(isbn, "-", "")
	isbn = strings.ReplaceAll(isbn, " ", "")
	isbn = strings.TrimSpace(isbn)

	if len(isbn) != 10 && len(isbn) != 13 {
		return ""
	}

	return isbn
}

// review_counts API response types (internal)

type reviewCountsResponse struct {
	Books []reviewCountsBook `json:"books"`
}

type reviewCountsBook struct {
	ISBN string `json:"isbn"`
	// The upstream API serves average_rating as a quoted decimal string;
	// tolerate a bare number too.
	AverageRating any `json:"average_rating"`
}

func (b reviewCountsBook) averageRating() float64 {
	switch v := b.AverageRating.(type) {
	case string:
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return rating
	case float64:
		return v
	default:
		return 0
	}
}
