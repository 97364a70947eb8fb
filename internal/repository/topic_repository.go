package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"studybud/internal/models"
	"studybud/internal/storage"
)

type TopicRepository interface {
	// GetOrCreate 依名稱精確查找主題，不存在時建立；created 表示是否新建
	GetOrCreate(ctx context.Context, name string) (topic *models.Topic, created bool, err error)
	FindAll(ctx context.Context, specs ...Specification) ([]models.Topic, error)
	FindAllWithCounts(ctx context.Context, specs ...Specification) ([]models.TopicWithCount, error)
	Count(ctx context.Context, specs ...Specification) (int64, error)
}

type topicRepository struct {
	baseRepository[models.Topic]
}

func NewTopicRepository(db *storage.Database) TopicRepository {
	return &topicRepository{baseRepository[models.Topic]{db: db}}
}

func (r *topicRepository) GetOrCreate(ctx context.Context, name string) (*models.Topic, bool, error) {
	var topic models.Topic
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&topic).Error
	if err == nil {
		return &topic, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	topic = models.Topic{Name: name}
	if err := r.create(ctx, &topic); err != nil {
		// 並發建立同名主題時唯一索引會擋下，改為讀取已存在的那一筆
		var existing models.Topic
		if findErr := r.db.WithContext(ctx).Where("name = ?", name).First(&existing).Error; findErr == nil {
			return &existing, false, nil
		}
		return nil, false, err
	}
	return &topic, true, nil
}

func (r *topicRepository) FindAll(ctx context.Context, specs ...Specification) ([]models.Topic, error) {
	return r.findAll(ctx, nil, specs...)
}

func (r *topicRepository) FindAllWithCounts(ctx context.Context, specs ...Specification) ([]models.TopicWithCount, error) {
	var topics []models.TopicWithCount
	query := r.db.WithContext(ctx).Model(&models.Topic{}).
		Select("topics.*, COUNT(rooms.id) AS room_count").
		Joins("LEFT JOIN rooms ON rooms.topic_id = topics.id AND rooms.deleted_at IS NULL").
		Group("topics.id")
	err := applySpecifications(query, specs...).Scan(&topics).Error
	return topics, err
}

func (r *topicRepository) Count(ctx context.Context, specs ...Specification) (int64, error) {
	return r.count(ctx, specs...)
}
