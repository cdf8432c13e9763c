package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
)

// QuizSessionRepository определяет методы для работы с сессиями викторин.
// Методы с параметром tx работают внутри переданной транзакции; nil означает обычное подключение.
type QuizSessionRepository interface {
	Create(ctx context.Context, session *entity.QuizSession) error
	// GetForUpdate читает сессию с блокировкой строки (SELECT ... FOR UPDATE внутри tx)
	GetForUpdate(ctx context.Context, tx *gorm.DB, id string) (*entity.QuizSession, error)
	GetByID(ctx context.Context, id string) (*entity.QuizSession, error)
	Complete(ctx context.Context, tx *gorm.DB, id string, correct, total int, score decimal.Decimal, completedAt time.Time) error
}
