package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vyralflow/vyralflow/internal/agent"
	"github.com/vyralflow/vyralflow/internal/config"
	"github.com/vyralflow/vyralflow/internal/domain"
	"github.com/vyralflow/vyralflow/internal/logger"
	"github.com/vyralflow/vyralflow/internal/store"
)

// fakeAgent implements agent.Agent with scriptable behavior. The pipeline
// runs stages sequentially, so plain counters are safe.
type fakeAgent struct {
	kind     domain.AgentKind
	execute  func(ctx context.Context, in *agent.Input) (*agent.Output, error)
	fallback func(in *agent.Input) *agent.Output
	calls    int
}

func (f *fakeAgent) Kind() domain.AgentKind { return f.kind }

func (f *fakeAgent) Execute(ctx context.Context, in *agent.Input) (*agent.Output, error) {
	f.calls++
	if f.execute != nil {
		return f.execute(ctx, in)
	}
	return outputFor(f.kind, in, "live"), nil
}

func (f *fakeAgent) Fallback(in *agent.Input) *agent.Output {
	if f.fallback != nil {
		return f.fallback(in)
	}
	return outputFor(f.kind, in, "fallback")
}

// outputFor builds a minimal, structurally valid output for the given stage.
func outputFor(kind domain.AgentKind, in *agent.Input, origin string) *agent.Output {
	switch kind {
	case domain.AgentTrendAnalyzer:
		return &agent.Output{Trends: &domain.TrendResult{
			TrendingTopics:   []domain.TrendingTopic{{Topic: origin + " topic", RelevanceScore: 80, TrendType: "rising"}},
			TrendingHashtags: []string{"#" + origin},
			ConfidenceScore:  0.8,
			ViralProbability: "70%",
		}}
	case domain.AgentContentWriter:
		content := domain.ContentResult{}
		for _, platform := range in.Brief.TargetPlatforms {
			text := origin + " post for " + platform
			content[platform] = domain.PlatformContent{
				Text:           text,
				Hashtags:       []string{"#" + origin},
				CharacterCount: len(text),
			}
		}
		return &agent.Output{Content: content}
	case domain.AgentVisualDesigner:
		return &agent.Output{Visuals: &domain.VisualResult{
			RecommendedStyle: origin + " style",
			ImageSuggestions: []domain.ImageSuggestion{{URL: "https://example.com/" + origin, Source: "unsplash"}},
			ColorPalette:     []string{"#FFFFFF"},
		}}
	default:
		platforms := map[string]domain.PlatformSchedule{}
		for _, platform := range in.Brief.TargetPlatforms {
			platforms[platform] = domain.PlatformSchedule{
				OptimalTimes:     []string{"9:00 AM"},
				BestDays:         []string{"Tuesday"},
				PostingFrequency: "3-4 times per week",
			}
		}
		return &agent.Output{Schedule: &domain.ScheduleResult{Platforms: platforms, Timezone: "America/New_York"}}
	}
}

func newFakeAgents() []agent.Agent {
	seq := domain.AgentSequence()
	agents := make([]agent.Agent, 0, len(seq))
	for _, kind := range seq {
		agents = append(agents, &fakeAgent{kind: kind})
	}
	return agents
}

func testBrief() domain.CampaignBrief {
	return domain.CampaignBrief{
		BusinessName:    "Cozy Coffee Shop",
		Industry:        "food & beverage",
		CampaignGoal:    "promote new fall menu",
		TargetPlatforms: []string{"instagram", "twitter"},
		BrandVoice:      "warm",
	}
}

func newTestOrchestrator(t *testing.T, agents []agent.Agent) (*Orchestrator, store.CampaignStore) {
	t.Helper()
	st := store.NewMemoryStore()
	cfg := &config.PipelineConfig{
		StageTimeout:     time.Second,
		CampaignDeadline: 5 * time.Second,
		MaxConcurrent:    4,
	}
	orch, err := New(st, agents, cfg, nil, logger.NewDefault())
	if err != nil {
		t.Fatalf("orchestrator init failed: %v", err)
	}
	return orch, st
}

func waitForTerminal(t *testing.T, st store.CampaignStore, id string) *domain.Campaign {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		c, err := st.Get(context.Background(), id)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if c.Status.Terminal() {
			return c
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("campaign never reached a terminal state")
	return nil
}

func TestNew_RejectsWrongAgentOrder(t *testing.T) {
	agents := newFakeAgents()
	agents[0], agents[1] = agents[1], agents[0]

	st := store.NewMemoryStore()
	if _, err := New(st, agents, &config.PipelineConfig{}, nil, logger.NewDefault()); err == nil {
		t.Fatal("expected error for out-of-order agents")
	}
	if _, err := New(st, agents[:2], &config.PipelineConfig{}, nil, logger.NewDefault()); err == nil {
		t.Fatal("expected error for missing agents")
	}
}

func TestSubmit_RejectsInvalidBrief(t *testing.T) {
	orch, _ := newTestOrchestrator(t, newFakeAgents())

	brief := testBrief()
	brief.TargetPlatforms = nil
	_, err := orch.Submit(context.Background(), brief)

	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPipeline_CompletesAllStages(t *testing.T) {
	orch, st := newTestOrchestrator(t, newFakeAgents())

	submitted, err := orch.Submit(context.Background(), testBrief())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if submitted.Status != domain.CampaignStatusPending {
		t.Errorf("expected pending on submit, got %q", submitted.Status)
	}

	c := waitForTerminal(t, st, submitted.ID)
	if c.Status != domain.CampaignStatusCompleted {
		t.Fatalf("expected completed, got %q (%s)", c.Status, c.ErrorMessage)
	}

	for _, kind := range domain.AgentSequence() {
		p := c.Progress(kind)
		if p.Status != domain.AgentStatusCompleted {
			t.Errorf("%s: expected completed, got %q", kind, p.Status)
		}
		if !p.AIGenerated {
			t.Errorf("%s: expected ai_generated=true", kind)
		}
		if p.ProgressPercentage != 100 {
			t.Errorf("%s: expected 100%%, got %d", kind, p.ProgressPercentage)
		}
		if p.StartedAt == nil || p.CompletedAt == nil {
			t.Errorf("%s: missing timestamps", kind)
		}
	}

	res := c.Results
	if res == nil || res.Trends == nil || res.Visuals == nil || res.Schedule == nil {
		t.Fatal("missing stage results")
	}
	for _, platform := range []string{"instagram", "twitter"} {
		pc, ok := res.Content[platform]
		if !ok {
			t.Fatalf("missing content for %s", platform)
		}
		if pc.CharacterCount != len(pc.Text) {
			t.Errorf("%s: character count %d does not match text length %d", platform, pc.CharacterCount, len(pc.Text))
		}
	}

	preds := res.PerformancePredictions
	if preds == nil {
		t.Fatal("missing performance predictions")
	}
	if preds.ViralProbability != "70%" {
		t.Errorf("expected viral probability from trends, got %q", preds.ViralProbability)
	}
	if preds.ConfidenceScore != 77.5 {
		t.Errorf("expected confidence 77.5, got %v", preds.ConfidenceScore)
	}
	if c.CompletedAt == nil {
		t.Error("missing campaign completion timestamp")
	}
}

func TestPipeline_AllStagesFailStillCompletes(t *testing.T) {
	agents := newFakeAgents()
	for _, a := range agents {
		fa := a.(*fakeAgent)
		fa.execute = func(ctx context.Context, in *agent.Input) (*agent.Output, error) {
			return nil, domain.PermanentAgentError(fa.kind, errors.New("provider rejected request"))
		}
	}
	orch, st := newTestOrchestrator(t, agents)

	submitted, err := orch.Submit(context.Background(), testBrief())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	c := waitForTerminal(t, st, submitted.ID)
	if c.Status != domain.CampaignStatusCompleted {
		t.Fatalf("expected completed via fallbacks, got %q", c.Status)
	}
	for _, kind := range domain.AgentSequence() {
		p := c.Progress(kind)
		if p.Status != domain.AgentStatusCompleted {
			t.Errorf("%s: expected completed, got %q", kind, p.Status)
		}
		if p.AIGenerated {
			t.Errorf("%s: expected ai_generated=false", kind)
		}
		if p.ErrorDetails == "" {
			t.Errorf("%s: expected error details on fallback", kind)
		}
	}
	if c.Results == nil || c.Results.PerformancePredictions == nil {
		t.Fatal("fallback completion should still aggregate results")
	}
}

func TestPipeline_TransientErrorRetriedOnce(t *testing.T) {
	agents := newFakeAgents()
	trend := agents[0].(*fakeAgent)
	trend.execute = func(ctx context.Context, in *agent.Input) (*agent.Output, error) {
		if trend.calls == 1 {
			return nil, domain.TransientAgentError(trend.kind, errors.New("upstream 503"))
		}
		return outputFor(trend.kind, in, "live"), nil
	}
	orch, st := newTestOrchestrator(t, agents)

	submitted, _ := orch.Submit(context.Background(), testBrief())
	c := waitForTerminal(t, st, submitted.ID)

	if trend.calls != 2 {
		t.Errorf("expected 2 attempts, got %d", trend.calls)
	}
	p := c.Progress(domain.AgentTrendAnalyzer)
	if !p.AIGenerated {
		t.Error("retried stage should report ai_generated=true")
	}
}

func TestPipeline_PermanentErrorNotRetried(t *testing.T) {
	agents := newFakeAgents()
	trend := agents[0].(*fakeAgent)
	trend.execute = func(ctx context.Context, in *agent.Input) (*agent.Output, error) {
		return nil, domain.PermanentAgentError(trend.kind, errors.New("malformed response"))
	}
	orch, st := newTestOrchestrator(t, agents)

	submitted, _ := orch.Submit(context.Background(), testBrief())
	c := waitForTerminal(t, st, submitted.ID)

	if trend.calls != 1 {
		t.Errorf("expected 1 attempt, got %d", trend.calls)
	}
	if c.Progress(domain.AgentTrendAnalyzer).AIGenerated {
		t.Error("fallback stage should report ai_generated=false")
	}
}

func TestPipeline_StageErrorWithoutFallbackContinues(t *testing.T) {
	agents := newFakeAgents()
	trend := agents[0].(*fakeAgent)
	trend.execute = func(ctx context.Context, in *agent.Input) (*agent.Output, error) {
		return nil, domain.PermanentAgentError(trend.kind, errors.New("no data"))
	}
	trend.fallback = func(in *agent.Input) *agent.Output { return nil }
	orch, st := newTestOrchestrator(t, agents)

	submitted, _ := orch.Submit(context.Background(), testBrief())
	c := waitForTerminal(t, st, submitted.ID)

	if c.Status != domain.CampaignStatusCompleted {
		t.Fatalf("later stages still produced results, expected completed, got %q", c.Status)
	}
	if c.Progress(domain.AgentTrendAnalyzer).Status != domain.AgentStatusError {
		t.Error("stage without fallback output should be marked error")
	}
	if c.Progress(domain.AgentContentWriter).Status != domain.AgentStatusCompleted {
		t.Error("pipeline should continue past an errored stage")
	}
	if c.Results.Trends != nil {
		t.Error("errored stage should contribute no results")
	}
}

func TestPipeline_DeadlineFallsBackRemainingStages(t *testing.T) {
	agents := newFakeAgents()
	st := store.NewMemoryStore()
	cfg := &config.PipelineConfig{
		StageTimeout:     time.Second,
		CampaignDeadline: time.Nanosecond,
		MaxConcurrent:    4,
	}
	orch, err := New(st, agents, cfg, nil, logger.NewDefault())
	if err != nil {
		t.Fatalf("orchestrator init failed: %v", err)
	}

	submitted, _ := orch.Submit(context.Background(), testBrief())
	c := waitForTerminal(t, st, submitted.ID)

	if c.Status != domain.CampaignStatusCompleted {
		t.Fatalf("expected completed via fallbacks, got %q", c.Status)
	}
	for _, a := range agents {
		fa := a.(*fakeAgent)
		if fa.calls != 0 {
			t.Errorf("%s: expected no execution after deadline, got %d calls", fa.kind, fa.calls)
		}
	}
	for _, kind := range domain.AgentSequence() {
		if c.Progress(kind).AIGenerated {
			t.Errorf("%s: expected fallback after deadline", kind)
		}
	}
}

func TestGetResults(t *testing.T) {
	release := make(chan struct{})
	agents := newFakeAgents()
	trend := agents[0].(*fakeAgent)
	trend.execute = func(ctx context.Context, in *agent.Input) (*agent.Output, error) {
		in.Report(50, "Analyzing community engagement")
		select {
		case <-release:
		case <-ctx.Done():
		}
		return outputFor(trend.kind, in, "live"), nil
	}
	orch, st := newTestOrchestrator(t, agents)
	ctx := context.Background()

	if _, err := orch.GetResults(ctx, "camp_missing0000"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	submitted, _ := orch.Submit(ctx, testBrief())

	// Wait for the first stage to start reporting.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c, _ := st.Get(ctx, submitted.ID)
		if c.Progress(domain.AgentTrendAnalyzer).ProgressPercentage == 50 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	c, _ := st.Get(ctx, submitted.ID)
	p := c.Progress(domain.AgentTrendAnalyzer)
	if p.ProgressPercentage != 50 || p.Message != "Analyzing community engagement" {
		t.Errorf("progress callback not persisted: %d%% %q", p.ProgressPercentage, p.Message)
	}

	if _, err := orch.GetResults(ctx, submitted.ID); !errors.Is(err, domain.ErrNotReady) {
		t.Fatalf("expected ErrNotReady while processing, got %v", err)
	}

	close(release)
	waitForTerminal(t, st, submitted.ID)

	results, err := orch.GetResults(ctx, submitted.ID)
	if err != nil {
		t.Fatalf("results failed after completion: %v", err)
	}
	if results.Trends == nil || results.Schedule == nil {
		t.Error("incomplete aggregated results")
	}
}

func TestForceComplete(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	agents := newFakeAgents()
	trend := agents[0].(*fakeAgent)
	trend.execute = func(ctx context.Context, in *agent.Input) (*agent.Output, error) {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return outputFor(trend.kind, in, "live"), nil
	}
	orch, st := newTestOrchestrator(t, agents)
	ctx := context.Background()

	if _, err := orch.ForceComplete(ctx, "camp_missing0000"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	submitted, _ := orch.Submit(ctx, testBrief())

	forced, err := orch.ForceComplete(ctx, submitted.ID)
	if err != nil {
		t.Fatalf("force-complete failed: %v", err)
	}
	if forced.Status != domain.CampaignStatusCompleted {
		t.Fatalf("expected completed, got %q", forced.Status)
	}
	for _, kind := range domain.AgentSequence() {
		p := forced.Progress(kind)
		if p.Status != domain.AgentStatusCompleted {
			t.Errorf("%s: expected completed, got %q", kind, p.Status)
		}
		if p.AIGenerated {
			t.Errorf("%s: force-completion must use fallback content", kind)
		}
	}
	if forced.Results == nil || forced.Results.PerformancePredictions == nil {
		t.Fatal("force-completion should aggregate fallback results")
	}

	// Idempotent on terminal campaigns.
	again, err := orch.ForceComplete(ctx, submitted.ID)
	if err != nil {
		t.Fatalf("repeated force-complete failed: %v", err)
	}
	if again.CompletedAt == nil || !again.CompletedAt.Equal(*forced.CompletedAt) {
		t.Error("repeated force-complete should not rewrite the campaign")
	}

	// The background pipeline must notice and stand down without
	// overwriting the forced state.
	time.Sleep(50 * time.Millisecond)
	final, _ := st.Get(ctx, submitted.ID)
	if final.Status != domain.CampaignStatusCompleted {
		t.Errorf("background pipeline overwrote forced state: %q", final.Status)
	}
}

func TestList_FiltersByStatus(t *testing.T) {
	orch, st := newTestOrchestrator(t, newFakeAgents())
	ctx := context.Background()

	ids := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		c, err := orch.Submit(ctx, testBrief())
		if err != nil {
			t.Fatalf("submit %d failed: %v", i, err)
		}
		ids = append(ids, c.ID)
	}
	for _, id := range ids {
		waitForTerminal(t, st, id)
	}

	completed, err := orch.List(ctx, domain.CampaignStatusCompleted, 10, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(completed) != 3 {
		t.Errorf("expected 3 completed campaigns, got %d", len(completed))
	}

	pending, err := orch.List(ctx, domain.CampaignStatusPending, 10, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("expected no pending campaigns, got %d", len(pending))
	}
}

func TestShutdown_WaitsForPipelines(t *testing.T) {
	orch, st := newTestOrchestrator(t, newFakeAgents())

	submitted, _ := orch.Submit(context.Background(), testBrief())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := orch.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown did not drain: %v", err)
	}

	c, _ := st.Get(context.Background(), submitted.ID)
	if !c.Status.Terminal() {
		t.Errorf("expected terminal campaign after shutdown, got %q", c.Status)
	}
}
