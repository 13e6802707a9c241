package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vyralflow/vyralflow/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CampaignRecord is the database row for one campaign. The full campaign is
// stored as a JSON document; status and created_at are lifted into columns
// for filtering.
type CampaignRecord struct {
	ID        string    `gorm:"type:text;primaryKey"`
	Status    string    `gorm:"type:text;not null;index"`
	Document  []byte    `gorm:"not null"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// TableName returns the database table name for CampaignRecord.
func (CampaignRecord) TableName() string {
	return "campaigns"
}

// GormStore persists campaigns through GORM (sqlite or postgres).
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a database-backed campaign store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Create persists a new campaign.
func (s *GormStore) Create(ctx context.Context, c *domain.Campaign) error {
	record, err := encodeRecord(c)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create campaign record: %w", err)
	}
	return nil
}

// Get returns a deep snapshot of the campaign.
func (s *GormStore) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	var record CampaignRecord
	err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign record: %w", err)
	}
	return decodeRecord(&record)
}

// Mutate applies fn inside a transaction holding a row lock, so concurrent
// writers to the same campaign serialize.
func (s *GormStore) Mutate(ctx context.Context, id string, fn Mutator) (*domain.Campaign, error) {
	var updated *domain.Campaign
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record CampaignRecord
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load campaign record: %w", err)
		}

		campaign, err := decodeRecord(&record)
		if err != nil {
			return err
		}
		if err := fn(campaign); err != nil {
			return err
		}

		next, err := encodeRecord(campaign)
		if err != nil {
			return err
		}
		next.CreatedAt = record.CreatedAt
		if err := tx.Save(next).Error; err != nil {
			return fmt.Errorf("failed to save campaign record: %w", err)
		}
		updated = campaign
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// List returns snapshots filtered by status, newest first.
func (s *GormStore) List(ctx context.Context, status domain.CampaignStatus, limit, offset int) ([]*domain.Campaign, error) {
	query := s.db.WithContext(ctx).Model(&CampaignRecord{}).Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var records []CampaignRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list campaign records: %w", err)
	}

	campaigns := make([]*domain.Campaign, 0, len(records))
	for i := range records {
		campaign, err := decodeRecord(&records[i])
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, campaign)
	}
	return campaigns, nil
}

func encodeRecord(c *domain.Campaign) (*CampaignRecord, error) {
	document, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode campaign %s: %w", c.ID, err)
	}
	return &CampaignRecord{
		ID:        c.ID,
		Status:    string(c.Status),
		Document:  document,
		CreatedAt: c.CreatedAt,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

func decodeRecord(record *CampaignRecord) (*domain.Campaign, error) {
	var campaign domain.Campaign
	if err := json.Unmarshal(record.Document, &campaign); err != nil {
		return nil, fmt.Errorf("failed to decode campaign %s: %w", record.ID, err)
	}
	return &campaign, nil
}
