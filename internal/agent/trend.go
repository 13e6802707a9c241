package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vyralflow/vyralflow/internal/domain"
	"github.com/vyralflow/vyralflow/internal/provider"
)

// TrendAnalyzer discovers what is currently drawing engagement around the
// brief's industry and keywords.
type TrendAnalyzer struct {
	trends *provider.TrendsClient
}

// NewTrendAnalyzer creates the trend discovery stage.
func NewTrendAnalyzer(trends *provider.TrendsClient) *TrendAnalyzer {
	return &TrendAnalyzer{trends: trends}
}

func (a *TrendAnalyzer) Kind() domain.AgentKind {
	return domain.AgentTrendAnalyzer
}

// Execute queries the trend provider and scores the returned posts into
// trending topics.
func (a *TrendAnalyzer) Execute(ctx context.Context, in *Input) (*Output, error) {
	in.report(25, "Scanning community discussions")

	query := in.Brief.Industry
	if len(in.Brief.Keywords) > 0 {
		query += " " + strings.Join(in.Brief.Keywords, " ")
	}

	posts, err := a.trends.Search(ctx, query, 15)
	if err != nil {
		return nil, classify(a.Kind(), err)
	}
	if len(posts) == 0 {
		return nil, domain.PermanentAgentError(a.Kind(), fmt.Errorf("trend search returned no posts for %q", query))
	}

	in.report(60, "Scoring trending topics")

	sort.Slice(posts, func(i, j int) bool { return posts[i].Score > posts[j].Score })
	if len(posts) > 5 {
		posts = posts[:5]
	}

	topics := make([]domain.TrendingTopic, 0, len(posts))
	maxScore := posts[0].Score
	if maxScore == 0 {
		maxScore = 1
	}
	for i, post := range posts {
		relevance := 50 + (post.Score*50)/maxScore
		if relevance > 100 {
			relevance = 100
		}
		topics = append(topics, domain.TrendingTopic{
			Topic:          post.Title,
			RelevanceScore: relevance,
			TrendType:      trendTypeForRank(i),
		})
	}

	in.report(85, "Building hashtag recommendations")

	return &Output{Trends: &domain.TrendResult{
		TrendingTopics:   topics,
		TrendingHashtags: hashtagsFor(in.Brief.Industry, in.Brief.Keywords),
		AnalysisSummary: fmt.Sprintf("Community trend analysis for %s in %s across %d high-engagement discussions.",
			in.Brief.BusinessName, in.Brief.Industry, len(posts)),
		ConfidenceScore:      confidenceFor(len(posts)),
		DataSources:          []string{"reddit"},
		ViralProbability:     viralProbabilityFor(maxScore),
		PeakEngagementWindow: "Next 24-48 hours",
	}}, nil
}

// Fallback synthesizes an industry-keyed trend result when the provider is
// unavailable.
func (a *TrendAnalyzer) Fallback(in *Input) *Output {
	profile := fallbackTrendProfiles[strings.ToLower(in.Brief.Industry)]
	if profile.topics == nil {
		profile = fallbackTrendProfile{
			topics:   []string{"business growth", "customer engagement", "digital marketing", "brand awareness", "innovation"},
			hashtags: []string{"#business", "#growth", "#marketing", "#branding", "#innovation"},
		}
	}

	topics := make([]domain.TrendingTopic, 0, len(profile.topics))
	for i, topic := range profile.topics {
		topics = append(topics, domain.TrendingTopic{
			Topic:          topic,
			RelevanceScore: 90 - i*10,
			TrendType:      trendTypeForRank(i),
		})
	}

	return &Output{Trends: &domain.TrendResult{
		TrendingTopics:   topics,
		TrendingHashtags: profile.hashtags,
		AnalysisSummary: fmt.Sprintf("Baseline trend analysis for %s in %s. Current trends show consistent engagement with industry-relevant content.",
			in.Brief.BusinessName, in.Brief.Industry),
		ConfidenceScore:      0.3,
		DataSources:          []string{"baseline"},
		ViralProbability:     "65%",
		PeakEngagementWindow: "Weekday evenings and weekend mornings",
	}}
}

type fallbackTrendProfile struct {
	topics   []string
	hashtags []string
}

var fallbackTrendProfiles = map[string]fallbackTrendProfile{
	"food & beverage": {
		topics:   []string{"foodie culture", "healthy eating", "local dining", "food photography", "seasonal menus"},
		hashtags: []string{"#foodie", "#localeats", "#healthyfood", "#foodphotography", "#seasonalflavors"},
	},
	"technology": {
		topics:   []string{"digital transformation", "AI innovation", "remote work", "cybersecurity", "cloud computing"},
		hashtags: []string{"#tech", "#innovation", "#digitaltransformation", "#AI", "#futureofwork"},
	},
	"retail": {
		topics:   []string{"online shopping", "sustainable fashion", "customer experience", "brand loyalty", "social commerce"},
		hashtags: []string{"#retail", "#ecommerce", "#shopping", "#fashion", "#customerexperience"},
	},
}

func trendTypeForRank(rank int) string {
	switch {
	case rank < 2:
		return "rising"
	case rank < 4:
		return "trending"
	default:
		return "stable"
	}
}

func confidenceFor(postCount int) float64 {
	c := 0.4 + float64(postCount)*0.1
	if c > 0.9 {
		c = 0.9
	}
	return c
}

func viralProbabilityFor(topScore int) string {
	switch {
	case topScore >= 1000:
		return "85%"
	case topScore >= 100:
		return "70%"
	default:
		return "55%"
	}
}

func hashtagsFor(industry string, keywords []string) []string {
	tags := make([]string, 0, len(keywords)+2)
	seen := map[string]bool{}
	add := func(word string) {
		tag := "#" + strings.ReplaceAll(strings.ToLower(strings.TrimSpace(word)), " ", "")
		tag = strings.Trim(tag, "&")
		if len(tag) > 1 && !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	for _, part := range strings.Split(industry, "&") {
		add(part)
	}
	for _, kw := range keywords {
		add(kw)
	}
	add("trending")
	return tags
}
