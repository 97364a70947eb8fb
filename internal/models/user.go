package models

import (
	"gorm.io/gorm"
)

// User 表示系統中的用戶
type User struct {
	gorm.Model        // 內嵌 gorm.Model，提供 ID、CreatedAt、UpdatedAt 和 DeletedAt 字段
	Username   string `gorm:"uniqueIndex;size:150;not null" json:"username"` // 一律以小寫儲存
	Email      string `gorm:"size:254" json:"-"`
	Password   string `gorm:"not null" json:"-"` // bcrypt 雜湊，json 序列化時會被忽略
}
