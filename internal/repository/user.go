package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/weatherhelper/weatherbot/internal/apperrors"
	"github.com/weatherhelper/weatherbot/internal/database"
)

// UserRepository handles user rows.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetOrCreate returns the user for a Telegram id, creating the row on
// first contact and refreshing identity fields on later ones.
func (r *UserRepository) GetOrCreate(ctx context.Context, telegramID int64, username, firstName, lastName, language string) (*database.User, error) {
	var user database.User
	result := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user)
	if result.Error == nil {
		updates := map[string]any{}
		if username != "" && username != user.Username {
			updates["username"] = username
		}
		if language != "" && language != user.Language {
			updates["language"] = language
		}
		if len(updates) > 0 {
			if err := r.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
				return nil, apperrors.Wrap(err, apperrors.KindStore, "failed to update user")
			}
		}
		return &user, nil
	}

	if result.Error != gorm.ErrRecordNotFound {
		return nil, apperrors.Wrap(result.Error, apperrors.KindStore, "failed to look up user")
	}

	user = database.User{
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
		Language:   language,
		Verbosity:  database.VerbosityFull,
	}
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindStore, "failed to create user")
	}
	return &user, nil
}

// SetVerbosity updates the user's forecast rendering density.
func (r *UserRepository) SetVerbosity(ctx context.Context, userID uint, verbosity string) error {
	err := r.db.WithContext(ctx).Model(&database.User{}).
		Where("id = ?", userID).
		Update("verbosity", verbosity).Error
	if err != nil {
		return apperrors.Wrap(err, apperrors.KindStore, "failed to update verbosity")
	}
	return nil
}
