package service

import (
	"studybud/internal/repository"
	"studybud/internal/utils"
	"studybud/pkg/logger"
)

type Services struct {
	User    *UserService
	Room    *RoomService
	Message *MessageService
	Topic   *TopicService
	Feed    *RoomFeed
}

func NewServices(repos *repository.Repositories, hasher *utils.PasswordHasher, log logger.Logger) *Services {
	feed := NewRoomFeed(log)

	return &Services{
		User:    NewUserService(repos, hasher, log),
		Room:    NewRoomService(repos, feed, log),
		Message: NewMessageService(repos, feed, log),
		Topic:   NewTopicService(repos),
		Feed:    feed,
	}
}
