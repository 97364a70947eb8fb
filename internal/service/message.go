package service

import (
	"context"

	"studybud/internal/models"
	"studybud/internal/repository"
	"studybud/pkg/logger"
)

type MessageService struct {
	repos *repository.Repositories
	feed  Publisher
	log   logger.Logger
}

func NewMessageService(repos *repository.Repositories, feed Publisher, log logger.Logger) *MessageService {
	return &MessageService{repos: repos, feed: feed, log: log}
}

// GetMessageForAuthor 取得訊息並確認 actor 是發言者
func (s *MessageService) GetMessageForAuthor(ctx context.Context, actor *models.User, id uint) (*models.Message, error) {
	message, err := s.repos.Message.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !message.IsAuthor(actor) {
		return nil, ErrForbidden
	}
	return message, nil
}

// DeleteMessage 只有發言者可以刪除，回傳被刪除的訊息以便導回所屬房間
func (s *MessageService) DeleteMessage(ctx context.Context, actor *models.User, id uint) (*models.Message, error) {
	message, err := s.GetMessageForAuthor(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Message.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.log.Info("message", "message deleted", map[string]interface{}{"message_id": id, "room_id": message.RoomID, "user_id": actor.ID})
	s.feed.Publish(message.RoomID, FeedEvent{Type: EventMessageDeleted, RoomID: message.RoomID, Message: message})
	return message, nil
}

// Activity 回傳全站訊息，最新的在前
func (s *MessageService) Activity(ctx context.Context) ([]models.Message, error) {
	return s.repos.Message.FindAll(ctx,
		repository.OrderBy{Field: "messages.created_at", Desc: true},
		repository.OrderBy{Field: "messages.id", Desc: true},
	)
}
