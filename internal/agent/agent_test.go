package agent

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/vyralflow/vyralflow/internal/domain"
	"github.com/vyralflow/vyralflow/internal/provider"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantTransient bool
	}{
		{
			name:          "server error is transient",
			err:           &provider.StatusError{StatusCode: 503, Body: "unavailable"},
			wantTransient: true,
		},
		{
			name:          "client error is permanent",
			err:           &provider.StatusError{StatusCode: 401, Body: "bad key"},
			wantTransient: false,
		},
		{
			name:          "deadline is transient",
			err:           context.DeadlineExceeded,
			wantTransient: true,
		},
		{
			name:          "wrapped url error is transient",
			err:           &url.Error{Op: "Get", URL: "https://example.com", Err: errors.New("connection refused")},
			wantTransient: true,
		},
		{
			name:          "parse failure is permanent",
			err:           errors.New("malformed content response"),
			wantTransient: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agentErr := classify(domain.AgentTrendAnalyzer, tt.err)
			if agentErr.Transient != tt.wantTransient {
				t.Errorf("classify(%v).Transient = %v, want %v", tt.err, agentErr.Transient, tt.wantTransient)
			}
			if agentErr.Agent != domain.AgentTrendAnalyzer {
				t.Errorf("expected agent kind on error, got %q", agentErr.Agent)
			}
			if !errors.Is(agentErr, tt.err) {
				t.Error("classified error should wrap the original")
			}
			if domain.IsTransient(agentErr) != tt.wantTransient {
				t.Error("IsTransient disagrees with Transient flag")
			}
		})
	}
}

func TestOutput_MergeInto(t *testing.T) {
	in := coffeeShopInput()

	trends := &domain.TrendResult{ViralProbability: "70%"}
	(&Output{Trends: trends}).MergeInto(in)
	if in.Trends != trends {
		t.Error("trends not merged into input")
	}

	content := domain.ContentResult{"instagram": {Text: "hi"}}
	(&Output{Content: content}).MergeInto(in)
	if in.Trends != trends {
		t.Error("merge overwrote unrelated field")
	}
	if in.Content == nil {
		t.Error("content not merged into input")
	}

	var nilOut *Output
	nilOut.MergeInto(in) // must not panic
}

func TestOutput_Apply(t *testing.T) {
	res := &domain.CampaignResults{}

	(&Output{
		Trends:   &domain.TrendResult{ViralProbability: "70%"},
		Schedule: &domain.ScheduleResult{Timezone: "America/New_York"},
	}).Apply(res)

	if res.Trends == nil || res.Schedule == nil {
		t.Fatal("apply did not populate results")
	}
	if res.Empty() {
		t.Error("results should be non-empty after apply")
	}
}
