// Package testutil 提供測試用的 sqlite 資料庫與種子資料
package testutil

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/logger"

	"studybud/internal/models"
	"studybud/internal/storage"
	"studybud/pkg/config"
)

// NewTestDB 建立已遷移的 in-memory sqlite 資料庫
func NewTestDB(t *testing.T) *storage.Database {
	t.Helper()

	db, err := storage.NewDatabase(config.DBConfig{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.DB.Logger = logger.Default.LogMode(logger.Silent)

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// CreateUser 直接寫入一位用戶，密碼以最低成本雜湊
func CreateUser(t *testing.T, db *storage.Database, username, password string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{Username: username, Password: string(hash)}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// CreateRoom 建立房間，主題不存在時一併建立
func CreateRoom(t *testing.T, db *storage.Database, host *models.User, topicName, name, description string) *models.Room {
	t.Helper()

	var topic models.Topic
	if err := db.Where(models.Topic{Name: topicName}).FirstOrCreate(&topic).Error; err != nil {
		t.Fatalf("failed to create topic: %v", err)
	}
	room := &models.Room{HostID: host.ID, TopicID: topic.ID, Name: name, Description: description}
	if err := db.Omit("Host", "Topic", "Participants").Create(room).Error; err != nil {
		t.Fatalf("failed to create room: %v", err)
	}
	room.Topic = topic
	room.Host = *host
	return room
}

// CreateMessage 建立訊息並把作者加入參與者
func CreateMessage(t *testing.T, db *storage.Database, room *models.Room, author *models.User, body string) *models.Message {
	t.Helper()

	msg := &models.Message{RoomID: room.ID, UserID: author.ID, Body: body}
	if err := db.Omit("Room", "User").Create(msg).Error; err != nil {
		t.Fatalf("failed to create message: %v", err)
	}
	if err := db.Exec("INSERT INTO room_participants (room_id, user_id) VALUES (?, ?) ON CONFLICT DO NOTHING", room.ID, author.ID).Error; err != nil {
		t.Fatalf("failed to add participant: %v", err)
	}
	return msg
}
