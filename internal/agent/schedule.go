package agent

import (
	"context"
	"strings"

	"github.com/vyralflow/vyralflow/internal/domain"
)

// CampaignScheduler derives posting times from industry and audience
// patterns. It runs entirely on local engagement heuristics, so unlike the
// other stages it has no external collaborator to fail on.
type CampaignScheduler struct{}

// NewCampaignScheduler creates the schedule optimization stage.
func NewCampaignScheduler() *CampaignScheduler {
	return &CampaignScheduler{}
}

func (a *CampaignScheduler) Kind() domain.AgentKind {
	return domain.AgentCampaignScheduler
}

// Execute computes the posting schedule from the brief.
func (a *CampaignScheduler) Execute(ctx context.Context, in *Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, classify(a.Kind(), err)
	}
	in.report(50, "Optimizing posting schedule")
	return a.Fallback(in), nil
}

// Fallback computes the same schedule; the stage is deterministic either way.
func (a *CampaignScheduler) Fallback(in *Input) *Output {
	profile := industryTiming[strings.ToLower(in.Brief.Industry)]
	if profile.optimalTimes == nil {
		profile = timingProfile{
			optimalTimes: []string{"9:00 AM", "1:00 PM", "7:00 PM"},
			bestDays:     []string{"Tuesday", "Wednesday", "Thursday"},
			weekendBoost: false,
		}
	}

	bestDays := append([]string(nil), profile.bestDays...)
	if profile.weekendBoost || audienceIsYoung(in.Brief.TargetAudience) {
		bestDays = appendUnique(bestDays, "Saturday")
	}

	frequency := "3-4 posts per week"
	goal := strings.ToLower(in.Brief.CampaignGoal)
	if strings.Contains(goal, "sale") || strings.Contains(goal, "limited") || strings.Contains(goal, "urgent") {
		frequency = "daily during the campaign window"
	}

	platforms := make(map[string]domain.PlatformSchedule, len(in.Brief.TargetPlatforms))
	for _, platform := range in.Brief.TargetPlatforms {
		times := append([]string(nil), profile.optimalTimes...)
		if adjust, ok := platformTimeAdjustments[platform]; ok {
			times = appendUnique(times, adjust)
		}
		platforms[platform] = domain.PlatformSchedule{
			OptimalTimes:     times,
			BestDays:         bestDays,
			PostingFrequency: frequency,
		}
	}

	return &Output{Schedule: &domain.ScheduleResult{
		Platforms: platforms,
		Timezone:  "America/New_York",
	}}
}

type timingProfile struct {
	optimalTimes []string
	bestDays     []string
	weekendBoost bool
}

var industryTiming = map[string]timingProfile{
	"food & beverage": {
		optimalTimes: []string{"11:00 AM", "12:00 PM", "6:00 PM"},
		bestDays:     []string{"Thursday", "Friday", "Saturday"},
		weekendBoost: true,
	},
	"technology": {
		optimalTimes: []string{"9:00 AM", "2:00 PM", "4:00 PM"},
		bestDays:     []string{"Tuesday", "Wednesday", "Thursday"},
		weekendBoost: false,
	},
	"retail": {
		optimalTimes: []string{"10:00 AM", "3:00 PM", "8:00 PM"},
		bestDays:     []string{"Wednesday", "Friday", "Sunday"},
		weekendBoost: true,
	},
	"finance": {
		optimalTimes: []string{"8:00 AM", "12:00 PM", "5:00 PM"},
		bestDays:     []string{"Monday", "Tuesday", "Wednesday"},
		weekendBoost: false,
	},
}

// platformTimeAdjustments nudges schedules toward each platform's own
// engagement peak.
var platformTimeAdjustments = map[string]string{
	"instagram": "8:00 PM",
	"twitter":   "12:30 PM",
	"linkedin":  "7:30 AM",
	"facebook":  "1:30 PM",
}

func audienceIsYoung(audience string) bool {
	lower := strings.ToLower(audience)
	return strings.Contains(lower, "young") ||
		strings.Contains(lower, "millennial") ||
		strings.Contains(lower, "gen z")
}
