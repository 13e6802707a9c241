// Package store provides the durable campaign registry. All campaign
// mutation flows through Mutate, the pipeline's single synchronization
// point; reads always return deep snapshots.
package store

import (
	"context"

	"github.com/vyralflow/vyralflow/internal/domain"
)

// Mutator transforms a campaign in place. It runs under the campaign's lock
// and must not retain references to the campaign after returning.
type Mutator func(*domain.Campaign) error

// CampaignStore is the durable mapping from campaign ID to campaign record.
type CampaignStore interface {
	// Create persists a new campaign.
	Create(ctx context.Context, c *domain.Campaign) error

	// Get returns a deep snapshot, or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Campaign, error)

	// Mutate applies fn atomically and returns the updated snapshot. When
	// fn returns an error the campaign is left unchanged.
	Mutate(ctx context.Context, id string, fn Mutator) (*domain.Campaign, error)

	// List returns snapshots filtered by status (empty status matches all),
	// newest first.
	List(ctx context.Context, status domain.CampaignStatus, limit, offset int) ([]*domain.Campaign, error)
}
