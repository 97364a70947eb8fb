package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"studybud/internal/models"
	"studybud/internal/repository"
	"studybud/internal/utils"
	"studybud/pkg/logger"
)

// RegisterInput 對應註冊表單
type RegisterInput struct {
	Username  string `form:"username" validate:"required,max=150,username"`
	Password1 string `form:"password1" validate:"required,min=8,bcryptlen,notnumeric"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`
}

// UpdateUserInput 對應個人資料表單
type UpdateUserInput struct {
	Username string `form:"username" validate:"required,max=150,username"`
	Email    string `form:"email" validate:"omitempty,max=254,email"`
}

// Profile 是個人頁面需要的資料
type Profile struct {
	User       *models.User
	Rooms      []models.Room
	Messages   []models.Message
	Topics     []models.TopicWithCount
	TotalRooms int64
}

type UserService struct {
	repos    *repository.Repositories
	hasher   *utils.PasswordHasher
	validate *validator.Validate
	log      logger.Logger
}

func NewUserService(repos *repository.Repositories, hasher *utils.PasswordHasher, log logger.Logger) *UserService {
	return &UserService{repos: repos, hasher: hasher, validate: newValidator(), log: log}
}

// Register 驗證表單、以小寫儲存用戶名稱並建立用戶
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	verr := validateStruct(s.validate, input)

	username := strings.ToLower(input.Username)
	if _, failed := verr.Fields["username"]; !failed {
		taken, err := s.repos.User.UsernameTaken(ctx, username, 0)
		if err != nil {
			return nil, err
		}
		if taken {
			verr.add("username", "A user with that username already exists.")
		}
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password1)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Username: username, Password: hash}
	if err := s.repos.User.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("user", "user registered", map[string]interface{}{"user_id": user.ID, "username": user.Username})
	return user, nil
}

// UserExists 以小寫名稱查詢用戶是否存在
func (s *UserService) UserExists(ctx context.Context, username string) (bool, error) {
	_, err := s.repos.User.FindByUsername(ctx, strings.ToLower(username))
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Authenticate 驗證帳號密碼，用戶名稱不分大小寫
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repos.User.FindByUsername(ctx, strings.ToLower(username))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !s.hasher.Verify(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.repos.User.FindByID(ctx, id)
}

// UpdateUser 只能修改目前登入的用戶
func (s *UserService) UpdateUser(ctx context.Context, actor *models.User, input UpdateUserInput) (*models.User, error) {
	if actor == nil {
		return nil, ErrForbidden
	}

	verr := validateStruct(s.validate, input)

	username := strings.ToLower(input.Username)
	if _, failed := verr.Fields["username"]; !failed {
		taken, err := s.repos.User.UsernameTaken(ctx, username, actor.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			verr.add("username", "A user with that username already exists.")
		}
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	user, err := s.repos.User.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	user.Username = username
	user.Email = input.Email
	if err := s.repos.User.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.log.Info("user", "user updated", map[string]interface{}{"user_id": user.ID})
	return user, nil
}

// Profile 取得用戶、其房間、其訊息與所有主題
func (s *UserService) Profile(ctx context.Context, id uint) (*Profile, error) {
	user, err := s.repos.User.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rooms, err := s.repos.Room.FindAll(ctx, repository.ByHost{UserID: id})
	if err != nil {
		return nil, err
	}

	messages, err := s.repos.Message.FindAll(ctx,
		repository.ByAuthor{UserID: id},
		repository.OrderBy{Field: "messages.created_at", Desc: true},
		repository.OrderBy{Field: "messages.id", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	topics, err := s.repos.Topic.FindAllWithCounts(ctx, repository.OrderBy{Field: "topics.name"})
	if err != nil {
		return nil, err
	}

	total, err := s.repos.Room.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &Profile{User: user, Rooms: rooms, Messages: messages, Topics: topics, TotalRooms: total}, nil
}
