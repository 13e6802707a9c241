package orchestrator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vyralflow/vyralflow/internal/domain"
)

const (
	defaultViralProbability = "65%"
	defaultEstimatedReach   = "5,000-10,000"
	defaultEngagementRate   = "3.2%"
	defaultROIPrediction    = "2.5x"
	defaultConfidence       = 75.0
)

// buildPredictions derives the headline performance estimates from the trend
// analysis. Without trend data it falls back to conservative defaults, so the
// aggregated results always carry a predictions block.
func buildPredictions(trends *domain.TrendResult) *domain.PerformancePredictions {
	viral := defaultViralProbability
	confidence := defaultConfidence

	if trends != nil {
		if trends.ViralProbability != "" {
			viral = trends.ViralProbability
		}
		if trends.ConfidenceScore > 0 {
			// Trend confidence is 0-1; average it with the baseline on
			// the 0-100 scale.
			confidence = (defaultConfidence + trends.ConfidenceScore*100) / 2
		}
	}

	pct := parsePercent(viral)
	return &domain.PerformancePredictions{
		ViralProbability: viral,
		EstimatedReach:   defaultEstimatedReach,
		EngagementRate:   defaultEngagementRate,
		ROIPrediction:    defaultROIPrediction,
		ConfidenceScore:  confidence,
		MetricsBreakdown: map[string]string{
			"likes_estimate":       fmt.Sprintf("%d+", int(pct*50)),
			"shares_estimate":      fmt.Sprintf("%d+", int(pct*10)),
			"comments_estimate":    fmt.Sprintf("%d+", int(pct*15)),
			"impressions_estimate": defaultEstimatedReach,
		},
	}
}

// parsePercent extracts the numeric value from a probability string such as
// "72%" or "High (85%)". Unparseable input yields the default baseline.
func parsePercent(s string) float64 {
	if open := strings.IndexByte(s, '('); open != -1 {
		s = s[open+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(strings.Trim(s, ")")), "%")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 65
	}
	return v
}
