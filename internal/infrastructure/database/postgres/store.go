// internal/infrastructure/database/postgres/store.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/your-org/storefront/internal/infrastructure/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StateEntry is one persisted client-state key
type StateEntry struct {
	StateKey  string    `gorm:"primaryKey;size:255" json:"stateKey"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name
func (StateEntry) TableName() string {
	return "state_entries"
}

// Store implements storage.Store on the state_entries table
type Store struct {
	db *gorm.DB
}

// NewStore creates a state store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Get retrieves a value by key
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var entry StateEntry
	err := s.db.WithContext(ctx).Where("state_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load state %s: %w", key, err)
	}
	return entry.Value, nil
}

// Set upserts a value
func (s *Store) Set(ctx context.Context, key, value string) error {
	entry := StateEntry{StateKey: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "state_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to save state %s: %w", key, err)
	}
	return nil
}

// Delete removes keys
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("state_key IN ?", keys).Delete(&StateEntry{}).Error; err != nil {
		return fmt.Errorf("failed to delete state: %w", err)
	}
	return nil
}
