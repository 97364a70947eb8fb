package models

import (
	"gorm.io/gorm"
)

// Topic 是房間的分類標籤，名稱唯一且區分大小寫
type Topic struct {
	gorm.Model
	Name string `gorm:"uniqueIndex;size:200;not null" json:"name"`
}

// TopicWithCount 附帶該主題底下的房間數
type TopicWithCount struct {
	Topic
	RoomCount int64 `json:"room_count"`
}
