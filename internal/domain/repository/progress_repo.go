package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
)

// DailyCount — количество ответов за календарный день
type DailyCount struct {
	Date    time.Time `json:"date"`
	Solved  int64     `json:"solved"`
	Correct int64     `json:"correct"`
}

// TopicCount — количество ответов по теме
type TopicCount struct {
	Topic   string `json:"topic"`
	Total   int64  `json:"total"`
	Correct int64  `json:"correct"`
}

// ProgressRepository определяет методы для истории ответов пользователя
type ProgressRepository interface {
	// Create сохраняет ответ; повтор (user, session, question) возвращает apperrors.ErrConflict
	Create(ctx context.Context, progress *entity.UserProgress) error
	Exists(ctx context.Context, userID uint, sessionID string, questionID uint) (bool, error)
	// CorrectQuestionIDs возвращает вопросы, на которые пользователь уже ответил верно
	CorrectQuestionIDs(ctx context.Context, userID uint) ([]uint, error)
	// ActivityStats считает агрегаты для правил достижений; now задает "сегодня"
	ActivityStats(ctx context.Context, tx *gorm.DB, userID uint, now time.Time) (entity.ActivityStats, error)
	// DailyCounts возвращает статистику по дням начиная с since, по возрастанию даты
	DailyCounts(ctx context.Context, userID uint, since time.Time) ([]DailyCount, error)
	// RecentDays возвращает последние limit дней с активностью, по убыванию даты
	RecentDays(ctx context.Context, userID uint, limit int) ([]DailyCount, error)
	TopicCounts(ctx context.Context, userID uint) ([]TopicCount, error)
	// WrongAnswers возвращает последние неверные ответы вместе с вопросом
	WrongAnswers(ctx context.Context, userID uint, limit int) ([]entity.UserProgress, error)
	// History возвращает последние ответы вместе с вопросом (для экспорта)
	History(ctx context.Context, userID uint, limit int) ([]entity.UserProgress, error)
	// ActiveUserIDsSince возвращает пользователей, отвечавших после since
	ActiveUserIDsSince(ctx context.Context, since time.Time) ([]uint, error)
}
