package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
)

// CleanupResult описывает результат очистки достижений пользователя
type CleanupResult struct {
	DuplicatesRemoved int64 `json:"duplicates_removed"`
	TypesRepaired     int64 `json:"types_repaired"`
	InvalidRemoved    int64 `json:"invalid_removed"`
}

// AchievementRepository определяет методы для работы с достижениями
type AchievementRepository interface {
	// ListByUser возвращает достижения пользователя, новые первыми
	ListByUser(ctx context.Context, userID uint) ([]entity.Achievement, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	// EarnedTypes возвращает множество уже полученных типов
	EarnedTypes(ctx context.Context, tx *gorm.DB, userID uint) (map[string]struct{}, error)
	// InsertIfAbsent вставляет достижение; false, если такой тип у пользователя уже есть
	InsertIfAbsent(ctx context.Context, tx *gorm.DB, achievement *entity.Achievement) (bool, error)
	// Cleanup чинит пустые типы по имени и удаляет дубликаты, оставляя самую раннюю запись
	Cleanup(ctx context.Context, userID uint, typeByName map[string]string) (CleanupResult, error)
}
