package repository

import (
	"context"

	"studybud/internal/storage"
)

// baseRepository 提供各實體共用的 CRUD，嵌入在各個 repository 中
type baseRepository[T any] struct {
	db *storage.Database
}

func (r *baseRepository[T]) create(ctx context.Context, model *T) error {
	return r.db.WithContext(ctx).Create(model).Error
}

func (r *baseRepository[T]) findByID(ctx context.Context, id uint, preloads ...string) (*T, error) {
	var model T
	query := r.db.WithContext(ctx)
	for _, p := range preloads {
		query = query.Preload(p)
	}
	if err := query.First(&model, id).Error; err != nil {
		return nil, translate(err)
	}
	return &model, nil
}

func (r *baseRepository[T]) update(ctx context.Context, model *T) error {
	return r.db.WithContext(ctx).Save(model).Error
}

func (r *baseRepository[T]) findAll(ctx context.Context, preloads []string, specs ...Specification) ([]T, error) {
	var models []T
	query := r.db.WithContext(ctx).Model(new(T))
	for _, p := range preloads {
		query = query.Preload(p)
	}
	err := applySpecifications(query, specs...).Find(&models).Error
	return models, err
}

func (r *baseRepository[T]) count(ctx context.Context, specs ...Specification) (int64, error) {
	var n int64
	err := applySpecifications(r.db.WithContext(ctx).Model(new(T)), specs...).Count(&n).Error
	return n, err
}
