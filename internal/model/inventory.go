package model

import "time"

// AssetStatuses are the accepted asset statuses.
var AssetStatuses = []string{"in_use", "in_store", "repair", "retired"}

// Asset is a tagged, durable inventory item.
type Asset struct {
	Base
	Tracked
	Tag              string     `gorm:"uniqueIndex;size:64;not null" json:"tag"`
	Name             string     `gorm:"size:128;not null" json:"name"`
	Category         string     `gorm:"size:64;index" json:"category,omitempty"`
	Location         string     `gorm:"size:128;index" json:"location,omitempty"`
	PurchaseDate     *time.Time `json:"purchaseDate,omitempty"`
	WarrantyUntil    *time.Time `gorm:"index" json:"warrantyUntil,omitempty"`
	AssignedToRoom   string     `gorm:"size:16" json:"assignedToRoom,omitempty"`
	AssignedToUserID *uint      `json:"assignedToUser,omitempty"`
}

// Consumable is a stocked item issued in quantities.
type Consumable struct {
	Base
	SKU          string `gorm:"column:sku;uniqueIndex;size:64;not null" json:"sku"`
	Name         string `gorm:"size:128;not null" json:"name"`
	Stock        int    `gorm:"not null;default:0" json:"stock"`
	Unit         string `gorm:"size:16;not null;default:pcs" json:"unit"`
	ReorderLevel int    `gorm:"not null;default:0" json:"reorderLevel"`
}

// ConsumableIssue records stock handed out.
type ConsumableIssue struct {
	Base
	ConsumableID uint      `gorm:"index;not null" json:"item"`
	Qty          int       `gorm:"not null" json:"qty"`
	IssuedTo     string    `gorm:"size:128;not null" json:"issuedTo"`
	Purpose      string    `json:"purpose,omitempty"`
	Date         time.Time `gorm:"not null" json:"date"`
}
