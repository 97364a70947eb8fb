package repository

import (
	"context"

	"studybud/internal/models"
	"studybud/internal/storage"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error)
	Update(ctx context.Context, user *models.User) error
}

type userRepository struct {
	baseRepository[models.User]
}

func NewUserRepository(db *storage.Database) UserRepository {
	return &userRepository{baseRepository[models.User]{db: db}}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.create(ctx, user)
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return r.findByID(ctx, id)
}

// FindByUsername 精確比對；用戶名稱在寫入時已轉為小寫
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// UsernameTaken 不分大小寫檢查名稱是否已被其他用戶使用
func (r *userRepository) UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error) {
	var n int64
	query := r.db.WithContext(ctx).Model(&models.User{}).Where("LOWER(username) = LOWER(?)", username)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.update(ctx, user)
}
