package model

import "time"

const (
	PackageLogged   = "logged"
	PackageNotified = "notified"
	PackagePicked   = "picked"
)

// Package is a parcel held at the front desk for a resident.
type Package struct {
	Base
	Tracked
	RecipientID uint       `gorm:"index;not null" json:"recipientId"`
	Carrier     string     `gorm:"size:64" json:"carrier,omitempty"`
	TrackingID  string     `gorm:"size:128" json:"trackingId,omitempty"`
	LoggedAt    time.Time  `gorm:"not null" json:"loggedAt"`
	PickedUpAt  *time.Time `json:"pickedUpAt,omitempty"`
	PickedBy    string     `gorm:"size:128" json:"pickedBy,omitempty"`
	Notes       string     `json:"notes,omitempty"`

	Recipient *Account `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`
}
