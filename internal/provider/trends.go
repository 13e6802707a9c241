package provider

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

// TrendsClient queries a Reddit-compatible search endpoint for posts that
// indicate what is currently drawing engagement around a topic.
type TrendsClient struct {
	client  *resty.Client
	baseURL string
}

// TrendsClientConfig holds configuration for the trends provider.
type TrendsClientConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// NewTrendsClient creates a new trends provider client.
func NewTrendsClient(cfg *TrendsClientConfig) *TrendsClient {
	client := resty.New()
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	client.SetTimeout(timeout)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://www.reddit.com"
	}

	return &TrendsClient{
		client:  client,
		baseURL: baseURL,
	}
}

// TrendPost is one community post returned by the trend search.
type TrendPost struct {
	Title     string
	Subreddit string
	Score     int
	Comments  int
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title       string `json:"title"`
				Subreddit   string `json:"subreddit"`
				Score       int    `json:"score"`
				NumComments int    `json:"num_comments"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Search returns the hottest posts of the past week matching the query.
func (c *TrendsClient) Search(ctx context.Context, query string, limit int) ([]TrendPost, error) {
	if limit <= 0 {
		limit = 15
	}

	var listing redditListing
	endpoint := fmt.Sprintf("%s/search.json?q=%s&sort=hot&t=week&limit=%d",
		c.baseURL, url.QueryEscape(query), limit)

	httpResp, err := c.client.R().
		SetContext(ctx).
		SetResult(&listing).
		Get(endpoint)

	if err != nil {
		return nil, fmt.Errorf("failed to call trend search: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		return nil, &StatusError{StatusCode: httpResp.StatusCode(), Body: string(httpResp.Body())}
	}

	posts := make([]TrendPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		posts = append(posts, TrendPost{
			Title:     child.Data.Title,
			Subreddit: child.Data.Subreddit,
			Score:     child.Data.Score,
			Comments:  child.Data.NumComments,
		})
	}
	return posts, nil
}
