package domain

import (
	"errors"
	"strings"
	"testing"
)

func validBrief() CampaignBrief {
	return CampaignBrief{
		BusinessName:    "Cozy Coffee Shop",
		Industry:        "food & beverage",
		CampaignGoal:    "promote new fall menu",
		TargetPlatforms: []string{"instagram", "twitter"},
		BrandVoice:      "warm",
	}
}

func TestCampaignBrief_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*CampaignBrief)
		wantField string
	}{
		{
			name:   "valid brief",
			mutate: func(b *CampaignBrief) {},
		},
		{
			name:      "missing business name",
			mutate:    func(b *CampaignBrief) { b.BusinessName = "" },
			wantField: "business_name",
		},
		{
			name:      "missing industry",
			mutate:    func(b *CampaignBrief) { b.Industry = "" },
			wantField: "industry",
		},
		{
			name:      "missing campaign goal",
			mutate:    func(b *CampaignBrief) { b.CampaignGoal = "" },
			wantField: "campaign_goal",
		},
		{
			name:      "no platforms",
			mutate:    func(b *CampaignBrief) { b.TargetPlatforms = nil },
			wantField: "target_platforms",
		},
		{
			name: "too many platforms",
			mutate: func(b *CampaignBrief) {
				b.TargetPlatforms = []string{"instagram", "twitter", "linkedin", "facebook", "instagram", "twitter"}
			},
			wantField: "target_platforms",
		},
		{
			name:      "unsupported platform",
			mutate:    func(b *CampaignBrief) { b.TargetPlatforms = []string{"myspace"} },
			wantField: "target_platforms",
		},
		{
			name: "too many keywords",
			mutate: func(b *CampaignBrief) {
				b.Keywords = make([]string, 21)
				for i := range b.Keywords {
					b.Keywords[i] = "kw"
				}
			},
			wantField: "keywords",
		},
		{
			name: "keyword limit boundary",
			mutate: func(b *CampaignBrief) {
				b.Keywords = make([]string, 20)
				for i := range b.Keywords {
					b.Keywords[i] = "kw"
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			brief := validBrief()
			tt.mutate(&brief)

			err := brief.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var vErr *ValidationError
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !errors.As(err, &vErr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if vErr.Field != tt.wantField {
				t.Errorf("expected field %q, got %q", tt.wantField, vErr.Field)
			}
		})
	}
}

func TestNewCampaignID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewCampaignID()
		if !strings.HasPrefix(id, "camp_") {
			t.Fatalf("expected camp_ prefix, got %q", id)
		}
		if len(id) != len("camp_")+12 {
			t.Fatalf("expected 12 hex chars after prefix, got %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate ID generated: %q", id)
		}
		seen[id] = true
	}
}

func TestNewCampaign(t *testing.T) {
	c := NewCampaign(validBrief())

	if c.Status != CampaignStatusPending {
		t.Errorf("expected pending status, got %q", c.Status)
	}
	if len(c.AgentProgress) != 4 {
		t.Fatalf("expected 4 progress entries, got %d", len(c.AgentProgress))
	}
	for i, kind := range AgentSequence() {
		p := c.AgentProgress[i]
		if p.AgentName != kind {
			t.Errorf("entry %d: expected %q, got %q", i, kind, p.AgentName)
		}
		if p.Status != AgentStatusPending {
			t.Errorf("entry %d: expected pending, got %q", i, p.Status)
		}
	}
	if c.AllStagesTerminal() {
		t.Error("fresh campaign should not have terminal stages")
	}
}

func TestCampaign_Clone(t *testing.T) {
	c := NewCampaign(validBrief())
	c.Results = &CampaignResults{
		Trends: &TrendResult{
			TrendingTopics:   []TrendingTopic{{Topic: "pumpkin spice", RelevanceScore: 90}},
			TrendingHashtags: []string{"#fall"},
		},
		Content: ContentResult{
			"instagram": {Text: "hello", Hashtags: []string{"#a"}, CharacterCount: 5},
		},
	}

	clone := c.Clone()
	clone.AgentProgress[0].Status = AgentStatusCompleted
	clone.Brief.TargetPlatforms[0] = "facebook"
	clone.Results.Trends.TrendingTopics[0].Topic = "changed"
	pc := clone.Results.Content["instagram"]
	pc.Hashtags[0] = "#b"
	clone.Results.Content["instagram"] = pc

	if c.AgentProgress[0].Status != AgentStatusPending {
		t.Error("clone mutation leaked into original progress")
	}
	if c.Brief.TargetPlatforms[0] != "instagram" {
		t.Error("clone mutation leaked into original brief")
	}
	if c.Results.Trends.TrendingTopics[0].Topic != "pumpkin spice" {
		t.Error("clone mutation leaked into original trends")
	}
	if c.Results.Content["instagram"].Hashtags[0] != "#a" {
		t.Error("clone mutation leaked into original content")
	}
}
