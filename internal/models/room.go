package models

import (
	"gorm.io/gorm"
)

// Room 表示一個討論房間
type Room struct {
	gorm.Model
	HostID       uint   `gorm:"not null;index" json:"host_id"`
	Host         User   `json:"host"`
	TopicID      uint   `gorm:"not null;index" json:"topic_id"`
	Topic        Topic  `json:"topic"`
	Name         string `gorm:"size:200;not null" json:"name"`
	Description  string `gorm:"type:text" json:"description"`
	Participants []User `gorm:"many2many:room_participants;" json:"participants,omitempty"`
}

// IsHost 判斷用戶是否為房主
func (r *Room) IsHost(user *User) bool {
	return user != nil && r.HostID == user.ID
}
