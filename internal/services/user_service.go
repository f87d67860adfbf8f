package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/weatherhelper/weatherbot/internal/database"
	"github.com/weatherhelper/weatherbot/internal/repository"
)

type UserService struct {
	users *repository.UserRepository
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{users: repository.NewUserRepository(db)}
}

func (s *UserService) RegisterUser(ctx context.Context, telegramID int64, username, firstName, lastName, language string) (*database.User, error) {
	return s.users.GetOrCreate(ctx, telegramID, username, firstName, lastName, language)
}

func (s *UserService) SetVerbosity(ctx context.Context, userID uint, verbosity string) error {
	return s.users.SetVerbosity(ctx, userID, verbosity)
}
