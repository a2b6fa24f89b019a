package store

import "hostel-backend/internal/model"

// AccountFilter narrows ListAccounts. Query matches name, email or roll number.
type AccountFilter struct {
	Role  model.Role
	Query string
	Limit int
}

// BookingFilter narrows ListBookings. A zero StudentID lists every request.
type BookingFilter struct {
	StudentID uint
	Status    model.BookingStatus
}

// SeedPlan describes the default room set created by SeedRooms.
type SeedPlan struct {
	Threshold  int
	Floors     int
	PerFloor   int
	Capacity   int
	HostelName string
}

// Approval is the outcome of a successful allocation.
type Approval struct {
	Request  model.BookingRequest `json:"request"`
	Room     model.Room           `json:"room"`
	Admitted []model.AccountRef   `json:"admitted"`
	// Unresolved lists roommate roll numbers that matched no account.
	Unresolved []string `json:"unresolvedRoommates"`
}

const (
	defaultAccountLimit = 20
	maxAccountLimit     = 100
)
