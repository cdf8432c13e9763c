package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
)

// UserRepo реализует repository.UserRepository
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo создает новый репозиторий пользователей
func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create создает нового пользователя. Пароль должен быть захеширован через SetPassword.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	return mapError(r.db.WithContext(ctx).Create(user).Error)
}

// GetByID возвращает пользователя по ID
func (r *UserRepo) GetByID(ctx context.Context, id uint) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

// GetByUsername возвращает пользователя по имени пользователя
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

// UpdateProfile обновляет профиль пользователя без изменения пароля
func (r *UserRepo) UpdateProfile(ctx context.Context, userID uint, updates map[string]interface{}) error {
	delete(updates, "password")
	updates["updated_at"] = time.Now()

	result := r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", userID).Updates(updates)
	if result.Error != nil {
		return mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return mapError(gorm.ErrRecordNotFound)
	}
	return nil
}
