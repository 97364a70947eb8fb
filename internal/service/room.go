package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"studybud/internal/models"
	"studybud/internal/repository"
	"studybud/pkg/logger"
)

// 首頁側欄顯示的主題數量上限
const homeTopicLimit = 5

// RoomInput 對應建立/編輯房間的表單
type RoomInput struct {
	Topic       string `form:"topic" validate:"notblank,max=200"`
	Name        string `form:"name" validate:"notblank,max=200"`
	Description string `form:"description"`
}

// HomePage 是首頁搜尋結果
type HomePage struct {
	Rooms      []models.Room
	Topics     []models.TopicWithCount
	RoomCount  int64
	TotalRooms int64
	Messages   []models.Message
}

// RoomDetail 是房間頁面需要的資料
type RoomDetail struct {
	Room         *models.Room
	Messages     []models.Message
	Participants []models.User
}

type RoomService struct {
	repos    *repository.Repositories
	feed     Publisher
	validate *validator.Validate
	log      logger.Logger
}

func NewRoomService(repos *repository.Repositories, feed Publisher, log logger.Logger) *RoomService {
	return &RoomService{repos: repos, feed: feed, validate: newValidator(), log: log}
}

// Home 以不分大小寫的子字串搜尋房間（主題名稱、房間名稱或描述），
// 並回傳最多五個主題與主題名稱符合的訊息
func (s *RoomService) Home(ctx context.Context, q string) (*HomePage, error) {
	search := repository.RoomSearch{Query: q}

	rooms, err := s.repos.Room.FindAll(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("search rooms: %w", err)
	}

	count, err := s.repos.Room.Count(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("count rooms: %w", err)
	}

	total, err := s.repos.Room.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count rooms: %w", err)
	}

	topics, err := s.repos.Topic.FindAllWithCounts(ctx, repository.Limit{N: homeTopicLimit})
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}

	messages, err := s.repos.Message.FindAll(ctx,
		repository.MessageRoomTopicContains{Query: q},
		repository.OrderBy{Field: "messages.created_at", Desc: true},
		repository.OrderBy{Field: "messages.id", Desc: true},
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	return &HomePage{
		Rooms:      rooms,
		Topics:     topics,
		RoomCount:  count,
		TotalRooms: total,
		Messages:   messages,
	}, nil
}

func (s *RoomService) GetRoom(ctx context.Context, id uint) (*models.Room, error) {
	return s.repos.Room.FindByID(ctx, id)
}

// Detail 取得房間、依時間排序的訊息與參與者
func (s *RoomService) Detail(ctx context.Context, id uint) (*RoomDetail, error) {
	room, err := s.repos.Room.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	messages, err := s.repos.Message.FindAll(ctx,
		repository.ByRoom{RoomID: id},
		repository.OrderBy{Field: "messages.created_at"},
		repository.OrderBy{Field: "messages.id"},
	)
	if err != nil {
		return nil, fmt.Errorf("list room messages: %w", err)
	}

	participants, err := s.repos.Room.Participants(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	return &RoomDetail{Room: room, Messages: messages, Participants: participants}, nil
}

// PostMessage 以 actor 身分在房間留言，並把 actor 加入參與者
func (s *RoomService) PostMessage(ctx context.Context, actor *models.User, roomID uint, body string) (*models.Message, error) {
	if actor == nil {
		return nil, ErrForbidden
	}

	if strings.TrimSpace(body) == "" {
		return nil, &ValidationError{Fields: map[string]string{"body": fieldMessages["required"]}}
	}

	if _, err := s.repos.Room.FindByID(ctx, roomID); err != nil {
		return nil, err
	}

	message := &models.Message{RoomID: roomID, UserID: actor.ID, Body: body}
	if err := s.repos.Room.PostMessage(ctx, message); err != nil {
		return nil, fmt.Errorf("post message: %w", err)
	}
	message.User = *actor

	s.log.Info("room", "message posted", map[string]interface{}{"room_id": roomID, "message_id": message.ID, "user_id": actor.ID})
	s.feed.Publish(roomID, FeedEvent{Type: EventMessageCreated, RoomID: roomID, Message: message})
	return message, nil
}

// Topics 回傳所有主題，供表單的主題清單使用
func (s *RoomService) Topics(ctx context.Context) ([]models.Topic, error) {
	return s.repos.Topic.FindAll(ctx, repository.OrderBy{Field: "topics.name"})
}

// CreateRoom 建立房間，主題不存在時自動建立
func (s *RoomService) CreateRoom(ctx context.Context, actor *models.User, input RoomInput) (*models.Room, error) {
	if actor == nil {
		return nil, ErrForbidden
	}
	if err := validateStruct(s.validate, input).orNil(); err != nil {
		return nil, err
	}

	topic, created, err := s.repos.Topic.GetOrCreate(ctx, input.Topic)
	if err != nil {
		return nil, fmt.Errorf("resolve topic: %w", err)
	}

	room := &models.Room{
		HostID:      actor.ID,
		TopicID:     topic.ID,
		Name:        input.Name,
		Description: input.Description,
	}
	if err := s.repos.Room.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	room.Host = *actor
	room.Topic = *topic

	s.log.Info("room", "room created", map[string]interface{}{"room_id": room.ID, "host_id": actor.ID, "topic": topic.Name, "topic_created": created})
	return room, nil
}

// GetRoomForHost 取得房間並確認 actor 是房主
func (s *RoomService) GetRoomForHost(ctx context.Context, actor *models.User, id uint) (*models.Room, error) {
	room, err := s.repos.Room.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !room.IsHost(actor) {
		return nil, ErrForbidden
	}
	return room, nil
}

// UpdateRoom 只有房主可以修改
func (s *RoomService) UpdateRoom(ctx context.Context, actor *models.User, id uint, input RoomInput) (*models.Room, error) {
	room, err := s.GetRoomForHost(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(s.validate, input).orNil(); err != nil {
		return nil, err
	}

	topic, _, err := s.repos.Topic.GetOrCreate(ctx, input.Topic)
	if err != nil {
		return nil, fmt.Errorf("resolve topic: %w", err)
	}

	room.Name = input.Name
	room.TopicID = topic.ID
	room.Topic = *topic
	room.Description = input.Description
	if err := s.repos.Room.Update(ctx, room); err != nil {
		return nil, fmt.Errorf("update room: %w", err)
	}

	s.log.Info("room", "room updated", map[string]interface{}{"room_id": room.ID})
	return room, nil
}

// DeleteRoom 只有房主可以刪除；訊息與參與者一併移除
func (s *RoomService) DeleteRoom(ctx context.Context, actor *models.User, id uint) error {
	if _, err := s.GetRoomForHost(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repos.Room.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("room", "room deleted", map[string]interface{}{"room_id": id, "host_id": actor.ID})
	return nil
}
