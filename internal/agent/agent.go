// Package agent implements the four pipeline stages behind a uniform
// execute-or-error contract. Each agent validates its provider's response
// immediately after the call and carries a deterministic fallback generator
// so the pipeline can always produce a usable artifact.
package agent

import (
	"context"
	"errors"
	"net"
	"net/url"

	"github.com/vyralflow/vyralflow/internal/domain"
	"github.com/vyralflow/vyralflow/internal/provider"
)

// ProgressFunc receives granular stage progress for live polling.
type ProgressFunc func(percentage int, message string)

// Input carries the brief plus the accumulated outputs of all previously
// completed stages.
type Input struct {
	CampaignID string
	Brief      domain.CampaignBrief
	Trends     *domain.TrendResult
	Content    domain.ContentResult
	Visuals    *domain.VisualResult
	Report     ProgressFunc
}

func (in *Input) report(percentage int, message string) {
	if in.Report != nil {
		in.Report(percentage, message)
	}
}

// Output is the stage result merged into the shared context and, at
// finalization, into the aggregated campaign results.
type Output struct {
	Trends   *domain.TrendResult
	Content  domain.ContentResult
	Visuals  *domain.VisualResult
	Schedule *domain.ScheduleResult
}

// MergeInto extends the accumulated context with this output so the next
// stage sees it.
func (o *Output) MergeInto(in *Input) {
	if o == nil {
		return
	}
	if o.Trends != nil {
		in.Trends = o.Trends
	}
	if o.Content != nil {
		in.Content = o.Content
	}
	if o.Visuals != nil {
		in.Visuals = o.Visuals
	}
}

// Apply merges this output into the aggregated results.
func (o *Output) Apply(res *domain.CampaignResults) {
	if o == nil {
		return
	}
	if o.Trends != nil {
		res.Trends = o.Trends
	}
	if o.Content != nil {
		res.Content = o.Content
	}
	if o.Visuals != nil {
		res.Visuals = o.Visuals
	}
	if o.Schedule != nil {
		res.Schedule = o.Schedule
	}
}

// Agent is one pipeline stage. Execute returns a *domain.AgentError on
// failure; Fallback deterministically synthesizes a structurally complete
// result and never fails.
type Agent interface {
	Kind() domain.AgentKind
	Execute(ctx context.Context, in *Input) (*Output, error)
	Fallback(in *Input) *Output
}

// classify maps a provider failure onto the agent error taxonomy: timeouts,
// network errors and 5xx responses are transient; 4xx responses and
// malformed payloads are permanent.
func classify(kind domain.AgentKind, err error) *domain.AgentError {
	var statusErr *provider.StatusError
	if errors.As(err, &statusErr) {
		if statusErr.Retryable() {
			return domain.TransientAgentError(kind, err)
		}
		return domain.PermanentAgentError(kind, err)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.TransientAgentError(kind, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return domain.TransientAgentError(kind, err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return domain.TransientAgentError(kind, err)
	}

	return domain.PermanentAgentError(kind, err)
}
