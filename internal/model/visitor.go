package model

import "time"

const (
	VisitorRequested  = "requested"
	VisitorApproved   = "approved"
	VisitorDenied     = "denied"
	VisitorCheckedIn  = "checked_in"
	VisitorCheckedOut = "checked_out"
)

// VisitorPurposes are the accepted visit purposes.
var VisitorPurposes = []string{"personal", "delivery", "maintenance", "other"}

// Visitor is a guest visit requested by a resident.
type Visitor struct {
	Base
	Tracked
	Name            string     `gorm:"size:128;not null" json:"name"`
	Phone           string     `gorm:"size:32" json:"phone,omitempty"`
	Email           string     `gorm:"size:256" json:"email,omitempty"`
	Purpose         string     `gorm:"size:16;not null;default:other" json:"purpose"`
	ResidentID      uint       `gorm:"index;not null" json:"residentId"`
	PreApprovedByID *uint      `json:"preApprovedBy,omitempty"`
	CheckInAt       *time.Time `json:"checkInAt,omitempty"`
	CheckOutAt      *time.Time `json:"checkOutAt,omitempty"`
	Notes           string     `json:"notes,omitempty"`

	Resident *Account `gorm:"foreignKey:ResidentID" json:"resident,omitempty"`
}
