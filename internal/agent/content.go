package agent

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/vyralflow/vyralflow/internal/domain"
	"github.com/vyralflow/vyralflow/internal/provider"
)

// platformCharLimits caps post length per platform.
var platformCharLimits = map[string]int{
	"twitter":   280,
	"instagram": 2200,
	"linkedin":  3000,
	"facebook":  5000,
}

// ContentWriter generates per-platform post copy, steered by the trend
// discovery output when available.
type ContentWriter struct {
	content *provider.ContentClient
}

// NewContentWriter creates the content generation stage.
func NewContentWriter(content *provider.ContentClient) *ContentWriter {
	return &ContentWriter{content: content}
}

func (a *ContentWriter) Kind() domain.AgentKind {
	return domain.AgentContentWriter
}

// Execute generates one post per target platform. A failure on any platform
// fails the whole stage; partial content is worse than fallback content.
func (a *ContentWriter) Execute(ctx context.Context, in *Input) (*Output, error) {
	platforms := in.Brief.TargetPlatforms
	result := make(domain.ContentResult, len(platforms))

	var topicHints []string
	if in.Trends != nil {
		for _, t := range in.Trends.TrendingTopics {
			topicHints = append(topicHints, t.Topic)
		}
		if len(topicHints) > 3 {
			topicHints = topicHints[:3]
		}
	}

	for i, platform := range platforms {
		in.report(10+80*i/len(platforms), fmt.Sprintf("Writing %s post", platform))

		post, err := a.content.GeneratePost(ctx, &provider.PostPrompt{
			BusinessName:   in.Brief.BusinessName,
			Industry:       in.Brief.Industry,
			CampaignGoal:   in.Brief.CampaignGoal,
			Platform:       platform,
			BrandVoice:     in.Brief.BrandVoice,
			TargetAudience: in.Brief.TargetAudience,
			TrendingTopics: topicHints,
			Keywords:       in.Brief.Keywords,
		})
		if err != nil {
			return nil, classify(a.Kind(), err)
		}

		text := truncateForPlatform(post.Text, platform)
		hashtags := post.Hashtags
		if len(hashtags) == 0 && in.Trends != nil {
			hashtags = in.Trends.TrendingHashtags
		}

		result[platform] = domain.PlatformContent{
			Text:           text,
			Hashtags:       hashtags,
			CharacterCount: utf8.RuneCountInString(text),
			ViralElements:  post.ViralElements,
		}
	}

	return &Output{Content: result}, nil
}

// Fallback produces templated per-platform copy from the brief alone.
func (a *ContentWriter) Fallback(in *Input) *Output {
	result := make(domain.ContentResult, len(in.Brief.TargetPlatforms))

	hashtags := hashtagsFor(in.Brief.Industry, in.Brief.Keywords)
	if in.Trends != nil && len(in.Trends.TrendingHashtags) > 0 {
		hashtags = in.Trends.TrendingHashtags
	}

	for _, platform := range in.Brief.TargetPlatforms {
		text := fallbackPostText(&in.Brief, platform)
		text = truncateForPlatform(text, platform)
		result[platform] = domain.PlatformContent{
			Text:           text,
			Hashtags:       hashtags,
			CharacterCount: utf8.RuneCountInString(text),
			ViralElements:  []string{"announcement", "call to action"},
		}
	}

	return &Output{Content: result}
}

func fallbackPostText(brief *domain.CampaignBrief, platform string) string {
	switch platform {
	case "twitter":
		return fmt.Sprintf("Big news from %s! %s — stay tuned.", brief.BusinessName, brief.CampaignGoal)
	case "linkedin":
		return fmt.Sprintf("%s, a %s business, is proud to announce our latest initiative: %s. We'd love to hear your thoughts.",
			brief.BusinessName, brief.Industry, brief.CampaignGoal)
	default:
		return fmt.Sprintf("%s has something exciting for our %s community: %s. Follow along to be the first to know!",
			brief.BusinessName, brief.Industry, brief.CampaignGoal)
	}
}

func truncateForPlatform(text, platform string) string {
	limit, ok := platformCharLimits[platform]
	if !ok || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	truncated := string(runes[:limit-3])
	// Cut at the last word boundary so the ellipsis doesn't split a word.
	if idx := strings.LastIndex(truncated, " "); idx > limit/2 {
		truncated = truncated[:idx]
	}
	return truncated + "..."
}
