package model

import "time"

// PushSubscription holds the information for a browser push subscription.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	AccountID uint      `gorm:"index;not null"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// All returns every model for migration.
func All() []any {
	return []any{
		&Account{},
		&Room{},
		&RoomOccupant{},
		&BookingRequest{},
		&Complaint{},
		&Notice{},
		&GatePass{},
		&Visitor{},
		&Package{},
		&Asset{},
		&Consumable{},
		&ConsumableIssue{},
		&HealthProfile{},
		&SickLeave{},
		&EmergencyEvent{},
		&IsolationRoom{},
		&MealPlan{},
		&MealRSVP{},
		&AttendanceLog{},
		&ChatMessage{},
		&ContactMessage{},
		&Vehicle{},
		&ParkingSlot{},
		&AccessBadge{},
		&HousekeepingLog{},
		&InspectionLog{},
		&DamageCharge{},
		&PushSubscription{},
	}
}
