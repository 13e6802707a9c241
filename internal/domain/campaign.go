package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CampaignStatus represents the lifecycle status of a campaign.
// Values include CampaignStatusPending, CampaignStatusProcessing,
// CampaignStatusCompleted, and CampaignStatusFailed.
type CampaignStatus string

const (
	CampaignStatusPending    CampaignStatus = "pending"
	CampaignStatusProcessing CampaignStatus = "processing"
	CampaignStatusCompleted  CampaignStatus = "completed"
	CampaignStatusFailed     CampaignStatus = "failed"
)

// Terminal reports whether the status is a terminal campaign state.
func (s CampaignStatus) Terminal() bool {
	return s == CampaignStatusCompleted || s == CampaignStatusFailed
}

// AgentStatus represents the execution status of a single pipeline stage.
type AgentStatus string

const (
	AgentStatusPending   AgentStatus = "pending"
	AgentStatusRunning   AgentStatus = "running"
	AgentStatusCompleted AgentStatus = "completed"
	AgentStatusError     AgentStatus = "error"
)

// Terminal reports whether the status is a terminal per-agent state.
func (s AgentStatus) Terminal() bool {
	return s == AgentStatusCompleted || s == AgentStatusError
}

// AgentKind identifies one of the four pipeline stages.
type AgentKind string

const (
	AgentTrendAnalyzer     AgentKind = "trend_analyzer"
	AgentContentWriter     AgentKind = "content_writer"
	AgentVisualDesigner    AgentKind = "visual_designer"
	AgentCampaignScheduler AgentKind = "campaign_scheduler"
)

// AgentSequence returns the fixed execution order of the four stages.
// The pipeline never reorders or resizes this sequence.
func AgentSequence() [4]AgentKind {
	return [4]AgentKind{
		AgentTrendAnalyzer,
		AgentContentWriter,
		AgentVisualDesigner,
		AgentCampaignScheduler,
	}
}

// SupportedPlatforms lists the social platforms a brief may target.
var SupportedPlatforms = []string{"instagram", "twitter", "linkedin", "facebook"}

const (
	maxPlatforms = 5
	maxKeywords  = 20
)

// CampaignBrief is the client-submitted request that seeds a campaign.
type CampaignBrief struct {
	BusinessName    string   `json:"business_name"`
	Industry        string   `json:"industry"`
	CampaignGoal    string   `json:"campaign_goal"`
	TargetPlatforms []string `json:"target_platforms"`
	BrandVoice      string   `json:"brand_voice"`
	TargetAudience  string   `json:"target_audience,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
	BudgetRange     string   `json:"budget_range,omitempty"`
}

// Validate checks the brief against submission rules. A campaign is never
// created for an invalid brief.
func (b *CampaignBrief) Validate() error {
	if b.BusinessName == "" {
		return &ValidationError{Field: "business_name", Reason: "must not be empty"}
	}
	if b.Industry == "" {
		return &ValidationError{Field: "industry", Reason: "must not be empty"}
	}
	if b.CampaignGoal == "" {
		return &ValidationError{Field: "campaign_goal", Reason: "must not be empty"}
	}
	if len(b.TargetPlatforms) == 0 {
		return &ValidationError{Field: "target_platforms", Reason: "at least one platform is required"}
	}
	if len(b.TargetPlatforms) > maxPlatforms {
		return &ValidationError{Field: "target_platforms", Reason: fmt.Sprintf("maximum %d platforms allowed", maxPlatforms)}
	}
	for _, p := range b.TargetPlatforms {
		if !platformSupported(p) {
			return &ValidationError{Field: "target_platforms", Reason: fmt.Sprintf("unsupported platform %q", p)}
		}
	}
	if len(b.Keywords) > maxKeywords {
		return &ValidationError{Field: "keywords", Reason: fmt.Sprintf("maximum %d keywords allowed", maxKeywords)}
	}
	return nil
}

func platformSupported(p string) bool {
	for _, s := range SupportedPlatforms {
		if p == s {
			return true
		}
	}
	return false
}

// AgentProgress tracks the execution state of one pipeline stage.
type AgentProgress struct {
	AgentName          AgentKind   `json:"agent_name"`
	Status             AgentStatus `json:"status"`
	ProgressPercentage int         `json:"progress_percentage"`
	Message            string      `json:"message"`
	AIGenerated        bool        `json:"ai_generated"`
	StartedAt          *time.Time  `json:"started_at,omitempty"`
	CompletedAt        *time.Time  `json:"completed_at,omitempty"`
	ErrorDetails       string      `json:"error_details,omitempty"`
}

// Campaign is one end-to-end pipeline instance, from submission through a
// terminal state. It always carries exactly 4 AgentProgress entries in the
// fixed stage order.
type Campaign struct {
	ID            string           `json:"campaign_id"`
	Brief         CampaignBrief    `json:"brief"`
	Status        CampaignStatus   `json:"status"`
	AgentProgress []AgentProgress  `json:"agent_progress"`
	Results       *CampaignResults `json:"results,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	CompletedAt   *time.Time       `json:"completed_at,omitempty"`
	ErrorMessage  string           `json:"error_message,omitempty"`
}

// NewCampaignID generates an opaque campaign identifier.
func NewCampaignID() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "camp_" + hex[:12]
}

// NewCampaign creates a pending campaign for the given brief with all four
// stages initialized to pending.
func NewCampaign(brief CampaignBrief) *Campaign {
	seq := AgentSequence()
	progress := make([]AgentProgress, 0, len(seq))
	for _, kind := range seq {
		progress = append(progress, AgentProgress{
			AgentName: kind,
			Status:    AgentStatusPending,
			Message:   "Waiting to start",
		})
	}
	return &Campaign{
		ID:            NewCampaignID(),
		Brief:         brief,
		Status:        CampaignStatusPending,
		AgentProgress: progress,
		CreatedAt:     time.Now().UTC(),
	}
}

// Progress returns the progress entry for the given stage, or nil if the
// kind is unknown.
func (c *Campaign) Progress(kind AgentKind) *AgentProgress {
	for i := range c.AgentProgress {
		if c.AgentProgress[i].AgentName == kind {
			return &c.AgentProgress[i]
		}
	}
	return nil
}

// AllStagesTerminal reports whether every stage has reached a terminal
// per-agent status.
func (c *Campaign) AllStagesTerminal() bool {
	for i := range c.AgentProgress {
		if !c.AgentProgress[i].Status.Terminal() {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the campaign. Store readers only ever see
// clones, so snapshots cannot alias live state.
func (c *Campaign) Clone() *Campaign {
	out := *c
	out.AgentProgress = make([]AgentProgress, len(c.AgentProgress))
	copy(out.AgentProgress, c.AgentProgress)
	for i := range out.AgentProgress {
		out.AgentProgress[i].StartedAt = cloneTime(c.AgentProgress[i].StartedAt)
		out.AgentProgress[i].CompletedAt = cloneTime(c.AgentProgress[i].CompletedAt)
	}
	out.CompletedAt = cloneTime(c.CompletedAt)
	out.Brief.TargetPlatforms = append([]string(nil), c.Brief.TargetPlatforms...)
	out.Brief.Keywords = append([]string(nil), c.Brief.Keywords...)
	if c.Results != nil {
		out.Results = c.Results.Clone()
	}
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
