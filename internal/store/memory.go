package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vyralflow/vyralflow/internal/domain"
)

// MemoryStore keeps campaigns in process memory with per-campaign locking.
// One instance is constructed at startup and injected everywhere; there is
// no package-level registry.
type MemoryStore struct {
	mu        sync.RWMutex
	campaigns map[string]*memoryEntry
}

type memoryEntry struct {
	mu       sync.Mutex
	campaign *domain.Campaign
}

// NewMemoryStore creates an empty in-memory campaign store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{campaigns: make(map[string]*memoryEntry)}
}

// Create persists a new campaign.
func (s *MemoryStore) Create(ctx context.Context, c *domain.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.campaigns[c.ID]; exists {
		return fmt.Errorf("campaign %s already exists", c.ID)
	}
	s.campaigns[c.ID] = &memoryEntry{campaign: c.Clone()}
	return nil
}

// Get returns a deep snapshot of the campaign.
func (s *MemoryStore) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	entry, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.campaign.Clone(), nil
}

// Mutate applies fn under the campaign's lock. The mutator runs against a
// working copy, so a failed mutation leaves the committed state untouched.
func (s *MemoryStore) Mutate(ctx context.Context, id string, fn Mutator) (*domain.Campaign, error) {
	entry, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	working := entry.campaign.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	entry.campaign = working
	return working.Clone(), nil
}

// List returns snapshots filtered by status, newest first.
func (s *MemoryStore) List(ctx context.Context, status domain.CampaignStatus, limit, offset int) ([]*domain.Campaign, error) {
	s.mu.RLock()
	entries := make([]*memoryEntry, 0, len(s.campaigns))
	for _, entry := range s.campaigns {
		entries = append(entries, entry)
	}
	s.mu.RUnlock()

	snapshots := make([]*domain.Campaign, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		if status == "" || entry.campaign.Status == status {
			snapshots = append(snapshots, entry.campaign.Clone())
		}
		entry.mu.Unlock()
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].CreatedAt.After(snapshots[j].CreatedAt)
	})

	if offset >= len(snapshots) {
		return []*domain.Campaign{}, nil
	}
	snapshots = snapshots[offset:]
	if limit > 0 && len(snapshots) > limit {
		snapshots = snapshots[:limit]
	}
	return snapshots, nil
}

func (s *MemoryStore) entry(id string) (*memoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.campaigns[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return entry, nil
}
