package model

import "time"

const (
	SickLeavePending  = "pending"
	SickLeaveApproved = "approved"
	SickLeaveRejected = "rejected"
)

// EmergencyContact is a person to call for a resident.
type EmergencyContact struct {
	Name     string `json:"name"`
	Relation string `json:"relation"`
	Phone    string `json:"phone"`
}

// HealthProfile is a resident's medical record, one per account.
type HealthProfile struct {
	Base
	AccountID         uint               `gorm:"uniqueIndex;not null" json:"userId"`
	BloodGroup        string             `gorm:"size:8" json:"bloodGroup,omitempty"`
	Allergies         []string           `gorm:"serializer:json" json:"allergies"`
	Conditions        []string           `gorm:"serializer:json" json:"conditions"`
	EmergencyContacts []EmergencyContact `gorm:"serializer:json" json:"emergencyContacts"`
}

// SickLeave is a leave-of-absence request on health grounds.
type SickLeave struct {
	Base
	Tracked
	AccountID uint      `gorm:"index;not null" json:"userId"`
	From      time.Time `gorm:"not null" json:"from"`
	To        time.Time `gorm:"not null" json:"to"`
	Reason    string    `json:"reason,omitempty"`

	Account *Account `gorm:"foreignKey:AccountID" json:"user,omitempty"`
}

// EmergencyEvent is a drill or incident logged by the warden.
type EmergencyEvent struct {
	Base
	Type        string    `gorm:"size:64;not null" json:"type"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `gorm:"not null;index" json:"date"`
}

// IsolationRoom tracks a room set aside for sick residents, keyed by room number.
type IsolationRoom struct {
	Base
	RoomNumber   string     `gorm:"uniqueIndex;size:16;not null" json:"roomNumber"`
	OccupiedByID *uint      `json:"occupiedBy,omitempty"`
	From         *time.Time `json:"from,omitempty"`
	To           *time.Time `json:"to,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}
