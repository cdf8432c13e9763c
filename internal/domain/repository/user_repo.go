package repository

import (
	"context"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
)

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	// Create создает пользователя; дубликат username возвращает apperrors.ErrConflict
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uint) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	// UpdateProfile обновляет только переданные поля профиля, пароль не затрагивается
	UpdateProfile(ctx context.Context, userID uint, updates map[string]interface{}) error
}
