package repository

import "studybud/internal/storage"

type Repositories struct {
	User    UserRepository
	Topic   TopicRepository
	Room    RoomRepository
	Message MessageRepository
}

func NewRepositories(db *storage.Database) *Repositories {
	return &Repositories{
		User:    NewUserRepository(db),
		Topic:   NewTopicRepository(db),
		Room:    NewRoomRepository(db),
		Message: NewMessageRepository(db),
	}
}
