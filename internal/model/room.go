package model

import "time"

// RoomStatus is the administrative status of a room.
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomMaintenance RoomStatus = "maintenance"
)

// Room is a bookable hostel room.
type Room struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Number     int        `gorm:"uniqueIndex;not null" json:"roomNumber"`
	Floor      int        `gorm:"index;not null" json:"floor"`
	HostelName string     `gorm:"size:128;not null" json:"hostelName"`
	Capacity   int        `gorm:"not null;default:2" json:"capacity"`
	Status     RoomStatus `gorm:"size:16;not null;default:available;index" json:"status"`
	// Version is bumped on every occupancy change and checked on write.
	Version   int       `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Associations
	Occupants []RoomOccupant `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"occupants"`
}

// RoomOccupant is one seat held by an account. An account holds at most one seat.
type RoomOccupant struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	RoomID    uint      `gorm:"index;not null" json:"-"`
	AccountID uint      `gorm:"uniqueIndex;not null" json:"accountId"`
	CreatedAt time.Time `json:"since"`
}

// OccupantIDs returns the occupant account ids in seat order.
func (r Room) OccupantIDs() []uint {
	ids := make([]uint, len(r.Occupants))
	for i, o := range r.Occupants {
		ids[i] = o.AccountID
	}
	return ids
}

// IsAvailable reports whether the room has a free seat.
func (r Room) IsAvailable() bool {
	return r.Status != RoomMaintenance && len(r.Occupants) < r.Capacity
}
