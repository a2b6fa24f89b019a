package model

// VehicleTypes are the accepted vehicle types.
var VehicleTypes = []string{"two_wheeler", "four_wheeler", "other"}

// Vehicle is a resident's registered vehicle.
type Vehicle struct {
	Base
	AccountID uint   `gorm:"index;not null" json:"userId"`
	Plate     string `gorm:"uniqueIndex;size:32;not null" json:"plate"`
	Model     string `gorm:"size:64" json:"model,omitempty"`
	Color     string `gorm:"size:32" json:"color,omitempty"`
	Type      string `gorm:"size:16;not null;default:two_wheeler" json:"type"`

	Account *Account `gorm:"foreignKey:AccountID" json:"user,omitempty"`
}

// ParkingSlot is a numbered parking space.
type ParkingSlot struct {
	Base
	Slot          string `gorm:"uniqueIndex;size:32;not null" json:"slot"`
	AllocatedToID *uint  `json:"allocatedTo,omitempty"`
	VehiclePlate  string `gorm:"size:32" json:"vehiclePlate,omitempty"`
	Active        bool   `gorm:"not null" json:"active"`
}

// AccessBadge is a resident's gate access card.
type AccessBadge struct {
	Base
	AccountID uint   `gorm:"uniqueIndex;not null" json:"userId"`
	BadgeID   string `gorm:"uniqueIndex;size:64;not null" json:"badgeId"`
	Active    bool   `gorm:"not null" json:"active"`
}
