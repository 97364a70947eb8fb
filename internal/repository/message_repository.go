package repository

import (
	"context"

	"studybud/internal/models"
	"studybud/internal/storage"
)

type MessageRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Message, error)
	Delete(ctx context.Context, id uint) error
	FindAll(ctx context.Context, specs ...Specification) ([]models.Message, error)
	Count(ctx context.Context, specs ...Specification) (int64, error)
}

type messageRepository struct {
	baseRepository[models.Message]
}

func NewMessageRepository(db *storage.Database) MessageRepository {
	return &messageRepository{baseRepository[models.Message]{db: db}}
}

func (r *messageRepository) FindByID(ctx context.Context, id uint) (*models.Message, error) {
	return r.findByID(ctx, id, "User", "Room")
}

func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Unscoped().Delete(&models.Message{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindAll 不帶排序，由呼叫端以 OrderBy 指定
func (r *messageRepository) FindAll(ctx context.Context, specs ...Specification) ([]models.Message, error) {
	return r.findAll(ctx, []string{"User", "Room", "Room.Topic"}, specs...)
}

func (r *messageRepository) Count(ctx context.Context, specs ...Specification) (int64, error) {
	return r.count(ctx, specs...)
}
