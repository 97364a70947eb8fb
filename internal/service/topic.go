package service

import (
	"context"

	"studybud/internal/models"
	"studybud/internal/repository"
)

type TopicService struct {
	repos *repository.Repositories
}

func NewTopicService(repos *repository.Repositories) *TopicService {
	return &TopicService{repos: repos}
}

// Search 回傳名稱包含 q（不分大小寫）的主題與其房間數
func (s *TopicService) Search(ctx context.Context, q string) ([]models.TopicWithCount, int64, error) {
	topics, err := s.repos.Topic.FindAllWithCounts(ctx,
		repository.TopicNameContains{Query: q},
		repository.OrderBy{Field: "topics.name"},
	)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.repos.Room.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return topics, total, nil
}
