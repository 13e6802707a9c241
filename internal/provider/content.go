package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ContentClient generates platform post copy through an OpenAI-compatible
// chat completions endpoint.
type ContentClient struct {
	client   *resty.Client
	model    string
	endpoint string
}

// ContentClientConfig holds configuration for the content provider.
type ContentClientConfig struct {
	Model   string
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// NewContentClient creates a new content generation client.
func NewContentClient(cfg *ContentClientConfig) *ContentClient {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 45 * time.Second
	}
	client.SetTimeout(timeout)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &ContentClient{
		client:   client,
		model:    cfg.Model,
		endpoint: baseURL + "/chat/completions",
	}
}

// PostPrompt describes one platform post to generate.
type PostPrompt struct {
	BusinessName   string
	Industry       string
	CampaignGoal   string
	Platform       string
	BrandVoice     string
	TargetAudience string
	TrendingTopics []string
	Keywords       []string
}

// GeneratedPost is the model's structured answer for one platform.
type GeneratedPost struct {
	Text          string   `json:"text"`
	Hashtags      []string `json:"hashtags"`
	ViralElements []string `json:"viral_elements"`
}

const contentSystemPrompt = `You are a social media copywriter. ` +
	`Answer with a single JSON object of the form ` +
	`{"text": "...", "hashtags": ["#..."], "viral_elements": ["..."]} ` +
	`and nothing else. Respect the platform's conventions and length limits.`

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// GeneratePost asks the model for one platform post.
func (c *ContentClient) GeneratePost(ctx context.Context, p *PostPrompt) (*GeneratedPost, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: contentSystemPrompt},
			{Role: "user", Content: buildPostPrompt(p)},
		},
		MaxTokens: 400,
	}

	var resp chatResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(c.endpoint)

	if err != nil {
		return nil, fmt.Errorf("failed to call content API: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		body := string(httpResp.Body())
		if resp.Error != nil {
			body = resp.Error.Message
		}
		return nil, &StatusError{StatusCode: httpResp.StatusCode(), Body: body}
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("content API error: %s", resp.Error.Message)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in content API response (status: %d)", httpResp.StatusCode())
	}

	return parseGeneratedPost(resp.Choices[0].Message.Content)
}

func buildPostPrompt(p *PostPrompt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a %s post for %s, a %s business.\n", p.Platform, p.BusinessName, p.Industry)
	fmt.Fprintf(&b, "Campaign goal: %s\n", p.CampaignGoal)
	fmt.Fprintf(&b, "Brand voice: %s\n", p.BrandVoice)
	if p.TargetAudience != "" {
		fmt.Fprintf(&b, "Target audience: %s\n", p.TargetAudience)
	}
	if len(p.TrendingTopics) > 0 {
		fmt.Fprintf(&b, "Work in these trending topics where natural: %s\n", strings.Join(p.TrendingTopics, ", "))
	}
	if len(p.Keywords) > 0 {
		fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(p.Keywords, ", "))
	}
	return b.String()
}

// parseGeneratedPost extracts the JSON object from the model answer. Models
// occasionally wrap the object in markdown fences; strip them before parsing.
func parseGeneratedPost(content string) (*GeneratedPost, error) {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	var post GeneratedPost
	if err := json.Unmarshal([]byte(trimmed), &post); err != nil {
		return nil, fmt.Errorf("malformed content response: %w", err)
	}
	if post.Text == "" {
		return nil, fmt.Errorf("malformed content response: empty text")
	}
	return &post, nil
}
