package models

import (
	"gorm.io/gorm"
)

// Message 是房間內的一則發言
type Message struct {
	gorm.Model
	RoomID uint   `gorm:"not null;index" json:"room_id"`
	Room   Room   `json:"-"`
	UserID uint   `gorm:"not null;index" json:"user_id"`
	User   User   `json:"user"`
	Body   string `gorm:"type:text;not null" json:"body"`
}

// IsAuthor 判斷用戶是否為發言者
func (m *Message) IsAuthor(user *User) bool {
	return user != nil && m.UserID == user.ID
}

// All 回傳需要遷移的模型
func All() []interface{} {
	return []interface{}{&User{}, &Topic{}, &Room{}, &Message{}}
}
