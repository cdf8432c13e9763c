package service

import (
	"context"

	"github.com/yourusername/mathquiz-api/internal/handler/dto"
)

// Notifier доставляет пользователю события о новых достижениях
type Notifier interface {
	AchievementsEarned(ctx context.Context, userID uint, achievements []dto.AchievementDTO)
}

// NoopNotifier ничего не отправляет
type NoopNotifier struct{}

// AchievementsEarned ничего не делает
func (NoopNotifier) AchievementsEarned(ctx context.Context, userID uint, achievements []dto.AchievementDTO) {
}
