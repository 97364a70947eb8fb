package repository

import (
	"context"

	"gorm.io/gorm"

	"studybud/internal/models"
	"studybud/internal/storage"
)

type RoomRepository interface {
	Create(ctx context.Context, room *models.Room) error
	FindByID(ctx context.Context, id uint) (*models.Room, error)
	Update(ctx context.Context, room *models.Room) error
	// Delete 在同一個交易中刪除房間、房間內的訊息與參與者關聯
	Delete(ctx context.Context, id uint) error
	FindAll(ctx context.Context, specs ...Specification) ([]models.Room, error)
	Count(ctx context.Context, specs ...Specification) (int64, error)
	// PostMessage 建立訊息並把作者加入參與者（已存在則略過）
	PostMessage(ctx context.Context, message *models.Message) error
	Participants(ctx context.Context, roomID uint) ([]models.User, error)
}

type roomRepository struct {
	baseRepository[models.Room]
}

func NewRoomRepository(db *storage.Database) RoomRepository {
	return &roomRepository{baseRepository[models.Room]{db: db}}
}

func (r *roomRepository) Create(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Omit("Host", "Topic", "Participants").Create(room).Error
}

func (r *roomRepository) FindByID(ctx context.Context, id uint) (*models.Room, error) {
	return r.findByID(ctx, id, "Host", "Topic", "Participants")
}

func (r *roomRepository) Update(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Omit("Host", "Topic", "Participants").Save(room).Error
}

func (r *roomRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("room_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM room_participants WHERE room_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Unscoped().Delete(&models.Room{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// FindAll 依最近更新排序
func (r *roomRepository) FindAll(ctx context.Context, specs ...Specification) ([]models.Room, error) {
	specs = append(specs, OrderBy{Field: "rooms.updated_at", Desc: true}, OrderBy{Field: "rooms.id", Desc: true})
	return r.findAll(ctx, []string{"Host", "Topic", "Participants"}, specs...)
}

func (r *roomRepository) Count(ctx context.Context, specs ...Specification) (int64, error) {
	return r.count(ctx, specs...)
}

func (r *roomRepository) PostMessage(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Room", "User").Create(message).Error; err != nil {
			return err
		}
		if err := tx.Exec("INSERT INTO room_participants (room_id, user_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
			message.RoomID, message.UserID).Error; err != nil {
			return err
		}
		// 更新房間時間，讓有新訊息的房間排在前面
		return tx.Model(&models.Room{}).Where("id = ?", message.RoomID).Update("updated_at", message.CreatedAt).Error
	})
}

func (r *roomRepository) Participants(ctx context.Context, roomID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN room_participants ON room_participants.user_id = users.id").
		Where("room_participants.room_id = ?", roomID).
		Order("users.username ASC").
		Find(&users).Error
	return users, err
}
