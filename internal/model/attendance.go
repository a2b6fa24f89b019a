package model

import "time"

// AttendanceLog is one resident's check-in/out for a day.
type AttendanceLog struct {
	Base
	AccountID      uint       `gorm:"uniqueIndex:idx_attendance_account_date;not null" json:"userId"`
	Date           string     `gorm:"uniqueIndex:idx_attendance_account_date;size:10;not null;index" json:"date"`
	CheckInAt      *time.Time `json:"checkInAt,omitempty"`
	CheckOutAt     *time.Time `json:"checkOutAt,omitempty"`
	CurfewBreached bool       `gorm:"not null;default:false" json:"curfewBreached"`
	Notes          string     `json:"notes,omitempty"`
}
