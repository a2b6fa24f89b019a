package model

import "time"

const (
	GatePassRequested = "requested"
	GatePassApproved  = "approved"
	GatePassDenied    = "denied"
	GatePassUsed      = "used"
	GatePassExpired   = "expired"
)

// GatePass authorises a resident to leave the hostel for a period.
type GatePass struct {
	Base
	Tracked
	AccountID  uint       `gorm:"index;not null" json:"userId"`
	Reason     string     `gorm:"not null" json:"reason"`
	From       time.Time  `gorm:"not null" json:"from"`
	To         time.Time  `gorm:"not null;index" json:"to"`
	Code       string     `gorm:"size:64;index" json:"code,omitempty"`
	VerifiedAt *time.Time `json:"verifiedAt,omitempty"`
	Notes      string     `json:"notes,omitempty"`

	Account *Account `gorm:"foreignKey:AccountID" json:"user,omitempty"`
}
