package records

import (
	"context"
	"fmt"
	"slices"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hostel-backend/internal/apperr"
)

// Settings stores one record per natural key. Set is an idempotent upsert
// and the last write wins.
type Settings[T any] struct {
	db      *gorm.DB
	name    string
	keys    []clause.Column
	columns []string
}

// NewSettings creates a settings store keyed by the unique columns keys;
// columns are overwritten on conflict.
func NewSettings[T any](db *gorm.DB, name string, keys []string, columns ...string) *Settings[T] {
	cols := make([]clause.Column, len(keys))
	for i, k := range keys {
		cols[i] = clause.Column{Name: k}
	}
	return &Settings[T]{db: db, name: name, keys: cols, columns: columns}
}

// Get returns the record for key, NotFound when absent.
func (s *Settings[T]) Get(ctx context.Context, key map[string]any) (*T, error) {
	var rec T
	if err := s.db.WithContext(ctx).Where(key).First(&rec).Error; err != nil {
		return nil, apperr.FromDB(err, s.name)
	}
	return &rec, nil
}

// Set upserts rec under key. columns overrides the columns written on
// conflict. The stored record is returned.
func (s *Settings[T]) Set(ctx context.Context, rec *T, key map[string]any, columns ...string) (*T, error) {
	if len(columns) == 0 {
		columns = s.columns
	}
	var stored T
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   s.keys,
			DoUpdates: clause.AssignmentColumns(append(slices.Clone(columns), "updated_at")),
		}).Omit(clause.Associations).Create(rec).Error
		if err != nil {
			return fmt.Errorf("failed to save %s: %w", s.name, err)
		}
		return tx.Where(key).First(&stored).Error
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *Settings[T]) List(ctx context.Context, scopes ...Scope) ([]T, error) {
	items := []T{}
	if err := s.db.WithContext(ctx).Scopes(scopes...).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.name, err)
	}
	return items, nil
}
