package domain

// TrendingTopic is one topic surfaced by trend discovery.
type TrendingTopic struct {
	Topic          string `json:"topic"`
	RelevanceScore int    `json:"relevance_score"`
	TrendType      string `json:"trend_type"`
}

// TrendResult is the output of the trend discovery stage.
type TrendResult struct {
	TrendingTopics       []TrendingTopic `json:"trending_topics"`
	TrendingHashtags     []string        `json:"trending_hashtags"`
	AnalysisSummary      string          `json:"analysis_summary"`
	ConfidenceScore      float64         `json:"confidence_score"`
	DataSources          []string        `json:"data_sources"`
	ViralProbability     string          `json:"viral_probability"`
	PeakEngagementWindow string          `json:"peak_engagement_window"`
}

// PlatformContent is the generated post for one target platform.
type PlatformContent struct {
	Text           string   `json:"text"`
	Hashtags       []string `json:"hashtags"`
	CharacterCount int      `json:"character_count"`
	ViralElements  []string `json:"viral_elements,omitempty"`
}

// ContentResult maps platform name to generated content.
type ContentResult map[string]PlatformContent

// ImageSuggestion is one curated image candidate.
type ImageSuggestion struct {
	URL          string   `json:"url"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags,omitempty"`
	Photographer string   `json:"photographer,omitempty"`
	Source       string   `json:"source"`
}

// VisualResult is the output of the visual curation stage.
type VisualResult struct {
	RecommendedStyle string            `json:"recommended_style"`
	ImageSuggestions []ImageSuggestion `json:"image_suggestions"`
	ColorPalette     []string          `json:"color_palette"`
	VisualThemes     []string          `json:"visual_themes,omitempty"`
}

// PlatformSchedule holds posting recommendations for one platform.
type PlatformSchedule struct {
	OptimalTimes     []string `json:"optimal_times"`
	BestDays         []string `json:"best_days"`
	PostingFrequency string   `json:"posting_frequency"`
}

// ScheduleResult is the output of the schedule optimization stage.
type ScheduleResult struct {
	Platforms map[string]PlatformSchedule `json:"platforms"`
	Timezone  string                      `json:"timezone"`
}

// PerformancePredictions is derived from the stage outputs at finalization.
type PerformancePredictions struct {
	ViralProbability string            `json:"viral_probability"`
	EstimatedReach   string            `json:"estimated_reach"`
	EngagementRate   string            `json:"engagement_rate"`
	ROIPrediction    string            `json:"roi_prediction"`
	ConfidenceScore  float64           `json:"confidence_score"`
	MetricsBreakdown map[string]string `json:"metrics_breakdown"`
}

// CampaignResults aggregates the outputs of all four stages.
type CampaignResults struct {
	Trends                 *TrendResult            `json:"trends,omitempty"`
	Content                ContentResult           `json:"content,omitempty"`
	Visuals                *VisualResult           `json:"visuals,omitempty"`
	Schedule               *ScheduleResult         `json:"schedule,omitempty"`
	PerformancePredictions *PerformancePredictions `json:"performance_predictions,omitempty"`
}

// Empty reports whether no stage produced any result. A campaign with empty
// results is the degenerate failed case.
func (r *CampaignResults) Empty() bool {
	if r == nil {
		return true
	}
	return r.Trends == nil && len(r.Content) == 0 && r.Visuals == nil && r.Schedule == nil
}

// Clone returns a deep copy of the results.
func (r *CampaignResults) Clone() *CampaignResults {
	if r == nil {
		return nil
	}
	out := &CampaignResults{}
	if r.Trends != nil {
		t := *r.Trends
		t.TrendingTopics = append([]TrendingTopic(nil), r.Trends.TrendingTopics...)
		t.TrendingHashtags = append([]string(nil), r.Trends.TrendingHashtags...)
		t.DataSources = append([]string(nil), r.Trends.DataSources...)
		out.Trends = &t
	}
	if r.Content != nil {
		out.Content = make(ContentResult, len(r.Content))
		for platform, pc := range r.Content {
			pc.Hashtags = append([]string(nil), pc.Hashtags...)
			pc.ViralElements = append([]string(nil), pc.ViralElements...)
			out.Content[platform] = pc
		}
	}
	if r.Visuals != nil {
		v := *r.Visuals
		v.ImageSuggestions = append([]ImageSuggestion(nil), r.Visuals.ImageSuggestions...)
		for i := range v.ImageSuggestions {
			v.ImageSuggestions[i].Tags = append([]string(nil), v.ImageSuggestions[i].Tags...)
		}
		v.ColorPalette = append([]string(nil), r.Visuals.ColorPalette...)
		v.VisualThemes = append([]string(nil), r.Visuals.VisualThemes...)
		out.Visuals = &v
	}
	if r.Schedule != nil {
		s := ScheduleResult{Timezone: r.Schedule.Timezone}
		s.Platforms = make(map[string]PlatformSchedule, len(r.Schedule.Platforms))
		for platform, ps := range r.Schedule.Platforms {
			ps.OptimalTimes = append([]string(nil), ps.OptimalTimes...)
			ps.BestDays = append([]string(nil), ps.BestDays...)
			s.Platforms[platform] = ps
		}
		out.Schedule = &s
	}
	if r.PerformancePredictions != nil {
		p := *r.PerformancePredictions
		p.MetricsBreakdown = make(map[string]string, len(r.PerformancePredictions.MetricsBreakdown))
		for k, v := range r.PerformancePredictions.MetricsBreakdown {
			p.MetricsBreakdown[k] = v
		}
		out.PerformancePredictions = &p
	}
	return out
}
