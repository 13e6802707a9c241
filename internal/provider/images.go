package provider

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

// ImagesClient searches an Unsplash-compatible photo API for visual
// candidates matching a campaign's themes.
type ImagesClient struct {
	client  *resty.Client
	baseURL string
}

// ImagesClientConfig holds configuration for the image provider.
type ImagesClientConfig struct {
	BaseURL   string
	AccessKey string
	Timeout   time.Duration
}

// NewImagesClient creates a new image search client.
func NewImagesClient(cfg *ImagesClientConfig) *ImagesClient {
	client := resty.New()
	client.SetHeader("Authorization", "Client-ID "+cfg.AccessKey)
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	client.SetTimeout(timeout)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.unsplash.com"
	}

	return &ImagesClient{
		client:  client,
		baseURL: baseURL,
	}
}

// Photo is one search result.
type Photo struct {
	URL          string
	Description  string
	Photographer string
	Color        string
}

type unsplashSearchResponse struct {
	Results []struct {
		AltDescription string `json:"alt_description"`
		Color          string `json:"color"`
		URLs           struct {
			Regular string `json:"regular"`
		} `json:"urls"`
		User struct {
			Name string `json:"name"`
		} `json:"user"`
	} `json:"results"`
}

// SearchPhotos returns up to perPage photos matching the query.
func (c *ImagesClient) SearchPhotos(ctx context.Context, query string, perPage int) ([]Photo, error) {
	if perPage <= 0 {
		perPage = 5
	}

	var resp unsplashSearchResponse
	endpoint := fmt.Sprintf("%s/search/photos?query=%s&per_page=%d&orientation=landscape",
		c.baseURL, url.QueryEscape(query), perPage)

	httpResp, err := c.client.R().
		SetContext(ctx).
		SetResult(&resp).
		Get(endpoint)

	if err != nil {
		return nil, fmt.Errorf("failed to call image search: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		return nil, &StatusError{StatusCode: httpResp.StatusCode(), Body: string(httpResp.Body())}
	}

	photos := make([]Photo, 0, len(resp.Results))
	for _, r := range resp.Results {
		photos = append(photos, Photo{
			URL:          r.URLs.Regular,
			Description:  r.AltDescription,
			Photographer: r.User.Name,
			Color:        r.Color,
		})
	}
	return photos, nil
}
