package model

import "time"

// BookingStatus is the state of a booking request.
type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingApproved   BookingStatus = "approved"
	BookingRejected   BookingStatus = "rejected"
	BookingWaitlisted BookingStatus = "waitlisted"
)

// Terminal reports whether s is a final admin decision.
func (s BookingStatus) Terminal() bool {
	return s == BookingApproved || s == BookingRejected || s == BookingWaitlisted
}

// BookingPreferences are soft preferences; they never block approval.
type BookingPreferences struct {
	QuietHours   bool `gorm:"not null;default:false" json:"quietHours"`
	ACRequired   bool `gorm:"column:ac_required;not null;default:false" json:"acRequired"`
	NearWashroom bool `gorm:"not null;default:false" json:"nearWashroom"`
}

// BookingRequest is a student's request for a specific room.
type BookingRequest struct {
	ID                  uint               `gorm:"primaryKey" json:"id"`
	StudentID           uint               `gorm:"index;not null" json:"studentId"`
	DesiredRoomNumber   int                `gorm:"index;not null" json:"desiredRoomNumber"`
	RoommateRollNumbers []string           `gorm:"serializer:json" json:"roommatesRollNumbers"`
	Preferences         BookingPreferences `gorm:"embedded;embeddedPrefix:pref_" json:"preferences"`
	Status              BookingStatus      `gorm:"size:16;not null;default:pending;index" json:"status"`
	Remarks             string             `json:"remarks,omitempty"`
	DecidedByID         *uint              `json:"decidedBy,omitempty"`
	DecidedAt           *time.Time         `json:"decidedAt,omitempty"`
	CreatedAt           time.Time          `gorm:"index" json:"createdAt"`
	UpdatedAt           time.Time          `json:"updatedAt"`

	// Associations
	Student *Account `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}
