package model

import "time"

const (
	HousekeepingScheduled  = "scheduled"
	HousekeepingInProgress = "in_progress"
	HousekeepingCompleted  = "completed"
	HousekeepingMissed     = "missed"
)

// ChecklistItem is one task on a cleaning round.
type ChecklistItem struct {
	Item string `json:"item"`
	Done bool   `json:"done"`
}

// HousekeepingLog is a scheduled cleaning round for a room.
type HousekeepingLog struct {
	Base
	Tracked
	RoomNumber  int             `gorm:"index;not null" json:"roomNumber"`
	Checklist   []ChecklistItem `gorm:"serializer:json" json:"checklist"`
	Remarks     string          `json:"remarks,omitempty"`
	StaffName   string          `gorm:"size:128" json:"staffName,omitempty"`
	PerformedAt *time.Time      `json:"performedAt,omitempty"`
}

const (
	InspectionScheduled = "scheduled"
	InspectionDone      = "done"
	InspectionFollowUp  = "followup"
)

// InspectionItem is one point checked during a room inspection.
type InspectionItem struct {
	Item    string `json:"item"`
	OK      bool   `json:"ok"`
	Remarks string `json:"remarks,omitempty"`
}

// InspectionLog is a room inspection on a given day.
type InspectionLog struct {
	Base
	Tracked
	RoomNumber string           `gorm:"size:32;index;not null" json:"roomNumber"`
	Date       string           `gorm:"size:10;index;not null" json:"date"`
	Checklist  []InspectionItem `gorm:"serializer:json" json:"checklist"`
	Inspector  string           `gorm:"size:128" json:"inspector,omitempty"`
	Remarks    string           `json:"remarks,omitempty"`
}

const (
	DamagePending = "pending"
	DamageBilled  = "billed"
	DamagePaid    = "paid"
	DamageWaived  = "waived"
)

// DamageCharge bills a resident, or a room, for damage found on inspection.
type DamageCharge struct {
	Base
	Tracked
	RoomNumber  string     `gorm:"size:32;index" json:"roomNumber,omitempty"`
	AccountID   *uint      `gorm:"index" json:"userId,omitempty"`
	Description string     `gorm:"not null" json:"description"`
	Amount      float64    `gorm:"not null" json:"amount"`
	SettledAt   *time.Time `json:"settledAt,omitempty"`
	Notes       string     `json:"notes,omitempty"`

	Account *Account `gorm:"foreignKey:AccountID" json:"user,omitempty"`
}
