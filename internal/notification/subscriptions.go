package notification

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hostel-backend/internal/model"
)

// Subscriptions stores browser push subscriptions per account.
type Subscriptions struct {
	db *gorm.DB
}

func NewSubscriptions(db *gorm.DB) *Subscriptions {
	return &Subscriptions{db: db}
}

// Save creates or replaces the subscription for sub.Endpoint. A browser that
// signs in as another account moves its endpoint to that account.
func (s *Subscriptions) Save(ctx context.Context, sub *model.PushSubscription) error {
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"account_id", "p256dh", "auth"}),
	}).Create(sub).Error
	if err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	return nil
}

// Delete removes the endpoint if it belongs to accountID.
func (s *Subscriptions) Delete(ctx context.Context, accountID uint, endpoint string) error {
	err := s.db.WithContext(ctx).
		Where("endpoint = ? AND account_id = ?", endpoint, accountID).
		Delete(&model.PushSubscription{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}

// Exists reports whether endpoint is registered for accountID.
func (s *Subscriptions) Exists(ctx context.Context, accountID uint, endpoint string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.PushSubscription{}).
		Where("endpoint = ? AND account_id = ?", endpoint, accountID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to look up subscription: %w", err)
	}
	return n > 0, nil
}
