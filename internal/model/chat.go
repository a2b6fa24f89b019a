package model

import "time"

const (
	ContactUnread = "unread"
	ContactRead   = "read"
)

// ChatMessage is a persisted message in a chat room.
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Room      string    `gorm:"size:128;not null;index:idx_chat_room_created" json:"room"`
	Text      string    `gorm:"not null" json:"text"`
	From      string    `gorm:"size:128;not null" json:"from"`
	AccountID *uint     `json:"userId,omitempty"`
	CreatedAt time.Time `gorm:"index:idx_chat_room_created" json:"createdAt"`
}

// ContactMessage is a message submitted through the public contact form.
type ContactMessage struct {
	Base
	Tracked
	Name      string `gorm:"size:128;not null" json:"name"`
	Email     string `gorm:"size:256;not null;index" json:"email"`
	Message   string `gorm:"not null" json:"message"`
	AccountID *uint  `json:"userId,omitempty"`
}
