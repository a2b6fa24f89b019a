package model

// NoticeAudiences are the accepted notice audiences.
var NoticeAudiences = []string{"all", "students", "admins"}

// Notice is a message pinned to the hostel notice board.
type Notice struct {
	Base
	Title       string `gorm:"size:256;not null" json:"title"`
	Content     string `gorm:"not null" json:"content"`
	Audience    string `gorm:"size:16;not null;default:all;index" json:"audience"`
	Pinned      bool   `gorm:"not null;default:false" json:"pinned"`
	CreatedByID *uint  `json:"createdBy,omitempty"`
}
