// Package orchestrator runs the four-stage campaign pipeline: trend
// discovery, content generation, visual curation and schedule optimization.
// Each submitted campaign executes on its own goroutine, bounded by a
// semaphore, and every state change flows through the campaign store.
package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/vyralflow/vyralflow/internal/agent"
	"github.com/vyralflow/vyralflow/internal/config"
	"github.com/vyralflow/vyralflow/internal/domain"
	"github.com/vyralflow/vyralflow/internal/logger"
	"github.com/vyralflow/vyralflow/internal/storage"
	"github.com/vyralflow/vyralflow/internal/store"
)

// errCampaignTerminal aborts the stage loop when a campaign reached a
// terminal state behind the pipeline's back (force-completion).
var errCampaignTerminal = errors.New("campaign already terminal")

// Orchestrator owns campaign submission and background execution.
type Orchestrator struct {
	store    store.CampaignStore
	agents   []agent.Agent
	runner   *StageRunner
	deadline time.Duration
	sem      *semaphore.Weighted
	archiver storage.Archiver
	log      *logger.Logger

	wg sync.WaitGroup
}

// New creates an orchestrator. The agents must be exactly the four pipeline
// stages in execution order; archiver may be nil to disable archiving.
func New(st store.CampaignStore, agents []agent.Agent, cfg *config.PipelineConfig, archiver storage.Archiver, log *logger.Logger) (*Orchestrator, error) {
	seq := domain.AgentSequence()
	if len(agents) != len(seq) {
		return nil, fmt.Errorf("expected %d agents, got %d", len(seq), len(agents))
	}
	for i, kind := range seq {
		if agents[i].Kind() != kind {
			return nil, fmt.Errorf("agent %d: expected %s, got %s", i, kind, agents[i].Kind())
		}
	}

	deadline := cfg.CampaignDeadline
	if deadline <= 0 {
		deadline = 5 * time.Minute
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 16
	}

	return &Orchestrator{
		store:    st,
		agents:   agents,
		runner:   NewStageRunner(cfg.StageTimeout),
		deadline: deadline,
		sem:      semaphore.NewWeighted(int64(maxConcurrent)),
		archiver: archiver,
		log:      log.WithField(logger.FieldComponent, "orchestrator"),
	}, nil
}

// Submit validates the brief, registers a pending campaign and starts the
// pipeline in the background. The returned snapshot is safe to serialize.
func (o *Orchestrator) Submit(ctx context.Context, brief domain.CampaignBrief) (*domain.Campaign, error) {
	if err := brief.Validate(); err != nil {
		return nil, err
	}

	campaign := domain.NewCampaign(brief)
	if err := o.store.Create(ctx, campaign); err != nil {
		return nil, err
	}

	o.log.WithFields(logger.Fields{
		logger.FieldCampaignID: campaign.ID,
		"business_name":        brief.BusinessName,
	}).Info("Campaign submitted")

	o.wg.Add(1)
	go o.execute(campaign.ID)

	return campaign.Clone(), nil
}

// GetStatus returns a snapshot of the campaign.
func (o *Orchestrator) GetStatus(ctx context.Context, id string) (*domain.Campaign, error) {
	return o.store.Get(ctx, id)
}

// GetResults returns the aggregated results of a completed campaign. A
// campaign that has not completed yields domain.ErrNotReady.
func (o *Orchestrator) GetResults(ctx context.Context, id string) (*domain.CampaignResults, error) {
	campaign, err := o.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if campaign.Status != domain.CampaignStatusCompleted {
		return nil, domain.ErrNotReady
	}
	return campaign.Results, nil
}

// List returns campaign snapshots filtered by status, newest first.
func (o *Orchestrator) List(ctx context.Context, status domain.CampaignStatus, limit, offset int) ([]*domain.Campaign, error) {
	return o.store.List(ctx, status, limit, offset)
}

// ForceComplete synchronously finishes every non-terminal stage with
// fallback content and marks the campaign completed. Campaigns already in a
// terminal state are returned unchanged.
func (o *Orchestrator) ForceComplete(ctx context.Context, id string) (*domain.Campaign, error) {
	updated, err := o.store.Mutate(ctx, id, func(c *domain.Campaign) error {
		if c.Status.Terminal() {
			return nil
		}
		if c.Results == nil {
			c.Results = &domain.CampaignResults{}
		}

		in := &agent.Input{
			CampaignID: c.ID,
			Brief:      c.Brief,
			Trends:     c.Results.Trends,
			Content:    c.Results.Content,
			Visuals:    c.Results.Visuals,
		}

		now := time.Now().UTC()
		for _, ag := range o.agents {
			p := c.Progress(ag.Kind())
			if p == nil || p.Status.Terminal() {
				continue
			}
			out := ag.Fallback(in)
			out.MergeInto(in)
			out.Apply(c.Results)

			p.Status = domain.AgentStatusCompleted
			p.ProgressPercentage = 100
			p.AIGenerated = false
			p.Message = "Completed with fallback content"
			if p.StartedAt == nil {
				p.StartedAt = &now
			}
			completedAt := now
			p.CompletedAt = &completedAt
		}

		c.Results.PerformancePredictions = buildPredictions(c.Results.Trends)
		c.Status = domain.CampaignStatusCompleted
		completedAt := now
		c.CompletedAt = &completedAt
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.log.WithField(logger.FieldCampaignID, id).Info("Campaign force-completed")
	return updated, nil
}

// Shutdown waits for in-flight pipelines to finish or the context to expire.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// execute runs the full pipeline for one campaign in the background.
func (o *Orchestrator) execute(id string) {
	defer o.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			o.log.WithField(logger.FieldCampaignID, id).
				Errorf("Pipeline panicked: %v", r)
			o.failCampaign(id, fmt.Sprintf("internal pipeline error: %v", r))
		}
	}()

	if err := o.sem.Acquire(context.Background(), 1); err != nil {
		o.failCampaign(id, "pipeline capacity unavailable")
		return
	}
	defer o.sem.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), o.deadline)
	defer cancel()
	ctx = o.log.WithContext(ctx)
	ctx = logger.SetCampaignID(ctx, id)

	log := logger.FromContext(ctx)
	log.Info("Pipeline started")
	started := time.Now()

	snapshot, err := o.store.Get(context.WithoutCancel(ctx), id)
	if err != nil {
		log.WithError(err).Error("Failed to load campaign")
		return
	}

	in := &agent.Input{CampaignID: id, Brief: snapshot.Brief}
	for _, ag := range o.agents {
		if err := o.runStage(ctx, id, ag, in); err != nil {
			if errors.Is(err, errCampaignTerminal) {
				log.Info("Campaign reached terminal state externally, stopping pipeline")
				return
			}
			log.WithError(err).Error("Failed to persist stage state")
			o.failCampaign(id, "failed to persist pipeline state")
			return
		}
	}

	o.finalize(ctx, id)
	log.WithField(logger.FieldDurationMs, time.Since(started).Milliseconds()).
		Info("Pipeline finished")
}

// runStage marks the stage running, executes it under policy and persists
// the terminal stage state. Store errors abort the pipeline; agent failures
// never do.
func (o *Orchestrator) runStage(ctx context.Context, id string, ag agent.Agent, in *agent.Input) error {
	kind := ag.Kind()

	// Persistence must outlive the pipeline deadline: an expired campaign
	// still records its fallback completion.
	persistCtx := context.WithoutCancel(ctx)

	if _, err := o.store.Mutate(persistCtx, id, func(c *domain.Campaign) error {
		if c.Status.Terminal() {
			return errCampaignTerminal
		}
		if c.Status == domain.CampaignStatusPending {
			c.Status = domain.CampaignStatusProcessing
		}
		p := c.Progress(kind)
		now := time.Now().UTC()
		p.Status = domain.AgentStatusRunning
		p.StartedAt = &now
		p.ProgressPercentage = 0
		p.Message = "Starting execution"
		return nil
	}); err != nil {
		return err
	}

	in.Report = func(percentage int, message string) {
		_, _ = o.store.Mutate(context.Background(), id, func(c *domain.Campaign) error {
			p := c.Progress(kind)
			if p == nil || p.Status != domain.AgentStatusRunning {
				return nil
			}
			if percentage > p.ProgressPercentage && percentage < 100 {
				p.ProgressPercentage = percentage
			}
			p.Message = message
			return nil
		})
	}

	var (
		out         *agent.Output
		aiGenerated bool
		cause       error
	)
	if ctx.Err() != nil {
		// Deadline already spent; skip straight to fallback so the
		// campaign still completes.
		out, aiGenerated, cause = ag.Fallback(in), false, ctx.Err()
	} else {
		out, aiGenerated, cause = o.runner.Run(ctx, ag, in)
	}
	in.Report = nil
	out.MergeInto(in)

	_, err := o.store.Mutate(persistCtx, id, func(c *domain.Campaign) error {
		if c.Status.Terminal() {
			return errCampaignTerminal
		}
		p := c.Progress(kind)
		if p.Status.Terminal() {
			return nil
		}
		now := time.Now().UTC()
		p.CompletedAt = &now

		if out == nil {
			p.Status = domain.AgentStatusError
			p.Message = "Stage failed"
			p.ErrorDetails = cause.Error()
			return nil
		}

		if c.Results == nil {
			c.Results = &domain.CampaignResults{}
		}
		out.Apply(c.Results)
		p.Status = domain.AgentStatusCompleted
		p.ProgressPercentage = 100
		p.AIGenerated = aiGenerated
		if aiGenerated {
			p.Message = "Completed successfully"
		} else {
			p.Message = "Completed with fallback content"
			p.ErrorDetails = cause.Error()
		}
		return nil
	})
	return err
}

// finalize attaches performance predictions and moves the campaign to its
// terminal state, then archives the results if an archiver is configured.
func (o *Orchestrator) finalize(ctx context.Context, id string) {
	snapshot, err := o.store.Mutate(context.WithoutCancel(ctx), id, func(c *domain.Campaign) error {
		if c.Status.Terminal() {
			return errCampaignTerminal
		}
		now := time.Now().UTC()
		c.CompletedAt = &now

		if c.Results.Empty() {
			c.Status = domain.CampaignStatusFailed
			c.ErrorMessage = "all pipeline stages failed"
			return nil
		}
		c.Results.PerformancePredictions = buildPredictions(c.Results.Trends)
		c.Status = domain.CampaignStatusCompleted
		return nil
	})
	if err != nil {
		if !errors.Is(err, errCampaignTerminal) {
			logger.FromContext(ctx).WithError(err).Error("Failed to finalize campaign")
		}
		return
	}

	if snapshot.Status == domain.CampaignStatusCompleted {
		o.archive(id, snapshot.Results)
	}
}

// archive exports the aggregated results as a JSON document. Failures are
// logged and otherwise ignored.
func (o *Orchestrator) archive(id string, results *domain.CampaignResults) {
	if o.archiver == nil {
		return
	}

	document, err := json.Marshal(results)
	if err != nil {
		o.log.WithField(logger.FieldCampaignID, id).WithError(err).
			Warn("Failed to encode results for archiving")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	key := storage.ResultsKey(id)
	if err := o.archiver.Upload(ctx, key, bytes.NewReader(document), int64(len(document)), "application/json"); err != nil {
		o.log.WithField(logger.FieldCampaignID, id).WithError(err).
			Warn("Failed to archive campaign results")
		return
	}
	o.log.WithFields(logger.Fields{
		logger.FieldCampaignID: id,
		"archive_url":          o.archiver.GetURL(key),
	}).Info("Campaign results archived")
}

// failCampaign records a pipeline-level failure. Stages that never reached a
// terminal state are marked errored.
func (o *Orchestrator) failCampaign(id, message string) {
	_, err := o.store.Mutate(context.Background(), id, func(c *domain.Campaign) error {
		if c.Status.Terminal() {
			return nil
		}
		now := time.Now().UTC()
		for i := range c.AgentProgress {
			p := &c.AgentProgress[i]
			if p.Status.Terminal() {
				continue
			}
			p.Status = domain.AgentStatusError
			p.Message = "Aborted"
			completedAt := now
			p.CompletedAt = &completedAt
		}
		c.Status = domain.CampaignStatusFailed
		c.ErrorMessage = message
		c.CompletedAt = &now
		return nil
	})
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		o.log.WithField(logger.FieldCampaignID, id).WithError(err).
			Error("Failed to record campaign failure")
	}
}
