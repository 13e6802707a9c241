package orchestrator

import (
	"context"
	"time"

	"github.com/vyralflow/vyralflow/internal/agent"
	"github.com/vyralflow/vyralflow/internal/domain"
	"github.com/vyralflow/vyralflow/internal/logger"
)

// StageRunner drives one agent invocation: per-call timeout, a single retry
// on transient failure, and fallback substitution when the external
// collaborator cannot produce a valid result.
type StageRunner struct {
	timeout time.Duration
}

// NewStageRunner creates a runner with the given per-call timeout.
func NewStageRunner(timeout time.Duration) *StageRunner {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &StageRunner{timeout: timeout}
}

// Run executes one stage under policy. The returned output came from the
// real collaborator when aiGenerated is true, from the fallback generator
// when false. cause carries the execution error that forced the fallback; a
// nil output with a non-nil cause is the degenerate case where even the
// fallback produced nothing.
func (r *StageRunner) Run(ctx context.Context, ag agent.Agent, in *agent.Input) (out *agent.Output, aiGenerated bool, cause error) {
	out, err := r.attempt(ctx, ag, in)
	if err == nil {
		return out, true, nil
	}

	if domain.IsTransient(err) && ctx.Err() == nil {
		logger.FromContext(ctx).WithFields(logger.Fields{
			logger.FieldAgent:   string(ag.Kind()),
			logger.FieldAttempt: 2,
		}).WithError(err).Warn("Transient stage failure, retrying once")

		out, err = r.attempt(ctx, ag, in)
		if err == nil {
			return out, true, nil
		}
	}

	logger.FromContext(ctx).WithField(logger.FieldAgent, string(ag.Kind())).
		WithError(err).Warn("Stage failed, substituting fallback result")

	out = ag.Fallback(in)
	return out, false, err
}

func (r *StageRunner) attempt(ctx context.Context, ag agent.Agent, in *agent.Input) (*agent.Output, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return ag.Execute(callCtx, in)
}
