package model

import "time"

// Role is the closed set of account roles.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleAdmin
}

// Account is a registered user of the hostel system.
type Account struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:128;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:256;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         Role      `gorm:"size:16;not null;default:student;index" json:"role"`
	RollNumber   string    `gorm:"size:64;index" json:"rollNumber,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AccountRef is the public projection of an account used when a record
// resolves its owner.
type AccountRef struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	RollNumber string `json:"rollNumber,omitempty"`
}

// Ref returns the public projection of a.
func (a Account) Ref() AccountRef {
	return AccountRef{ID: a.ID, Name: a.Name, Email: a.Email, RollNumber: a.RollNumber}
}
