package model

const (
	ComplaintOpen       = "open"
	ComplaintInProgress = "in_progress"
	ComplaintResolved   = "resolved"
)

// ComplaintCategories are the accepted complaint categories.
var ComplaintCategories = []string{"electricity", "plumbing", "cleaning", "internet", "other"}

// Complaint is a maintenance or service complaint raised by a resident.
type Complaint struct {
	Base
	Tracked
	StudentID   uint     `gorm:"index;not null" json:"studentId"`
	Category    string   `gorm:"size:32;not null;default:other;index" json:"category"`
	Description string   `gorm:"not null" json:"description"`
	Assignee    string   `gorm:"size:128" json:"assignee,omitempty"`
	RoomNumber  *int     `json:"roomNumber,omitempty"`
	Attachments []string `gorm:"serializer:json" json:"attachments"`

	Student *Account `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}
