package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Specification 是可組合的查詢條件
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}

// RoomSearch 以不分大小寫的子字串比對主題名稱、房間名稱或描述（三者取 OR）。
// 需要 JOIN topics；Query 為空時不加任何條件。
type RoomSearch struct {
	Query string
}

func (s RoomSearch) Apply(db *gorm.DB) *gorm.DB {
	if s.Query == "" {
		return db
	}
	pattern := containsPattern(s.Query)
	return db.Joins("JOIN topics ON topics.id = rooms.topic_id").
		Where("LOWER(topics.name) LIKE ? ESCAPE '\\' OR LOWER(rooms.name) LIKE ? ESCAPE '\\' OR LOWER(rooms.description) LIKE ? ESCAPE '\\'",
			pattern, pattern, pattern)
}

// TopicNameContains 篩選名稱包含 Query 的主題
type TopicNameContains struct {
	Query string
}

func (s TopicNameContains) Apply(db *gorm.DB) *gorm.DB {
	if s.Query == "" {
		return db
	}
	return db.Where("LOWER(topics.name) LIKE ? ESCAPE '\\'", containsPattern(s.Query))
}

// MessageRoomTopicContains 篩選所屬房間的主題名稱包含 Query 的訊息
type MessageRoomTopicContains struct {
	Query string
}

func (s MessageRoomTopicContains) Apply(db *gorm.DB) *gorm.DB {
	if s.Query == "" {
		return db
	}
	return db.Joins("JOIN rooms ON rooms.id = messages.room_id").
		Joins("JOIN topics ON topics.id = rooms.topic_id").
		Where("LOWER(topics.name) LIKE ? ESCAPE '\\'", containsPattern(s.Query))
}

type ByHost struct {
	UserID uint
}

func (s ByHost) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("rooms.host_id = ?", s.UserID)
}

type ByAuthor struct {
	UserID uint
}

func (s ByAuthor) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("messages.user_id = ?", s.UserID)
}

type ByRoom struct {
	RoomID uint
}

func (s ByRoom) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("messages.room_id = ?", s.RoomID)
}

// OrderBy 欄位請帶上資料表名稱，避免 JOIN 後欄位名稱衝突
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", s.Field, direction))
}

type Limit struct {
	N int
}

func (s Limit) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.N)
}

func applySpecifications(db *gorm.DB, specs ...Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern 產生 LIKE 子字串樣式，萬用字元會被跳脫
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
}
