package model

import "time"

// Base carries the identity and timestamps shared by record-keeper models.
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GetID returns the primary key.
func (b Base) GetID() uint { return b.ID }

// Tracked is the status column of a status-lifecycle record.
type Tracked struct {
	Status string `gorm:"size:16;not null;index" json:"status"`
}

func (t Tracked) GetStatus() string   { return t.Status }
func (t *Tracked) SetStatus(s string) { t.Status = s }
