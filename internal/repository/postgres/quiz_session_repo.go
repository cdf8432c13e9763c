package postgres

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
)

// QuizSessionRepo реализует repository.QuizSessionRepository
type QuizSessionRepo struct {
	db *gorm.DB
}

// NewQuizSessionRepo создает новый репозиторий сессий
func NewQuizSessionRepo(db *gorm.DB) *QuizSessionRepo {
	return &QuizSessionRepo{db: db}
}

// Create сохраняет новую сессию
func (r *QuizSessionRepo) Create(ctx context.Context, session *entity.QuizSession) error {
	return mapError(r.db.WithContext(ctx).Create(session).Error)
}

// GetByID возвращает сессию по ID
func (r *QuizSessionRepo) GetByID(ctx context.Context, id string) (*entity.QuizSession, error) {
	var session entity.QuizSession
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, mapError(err)
	}
	return &session, nil
}

// GetForUpdate читает сессию с блокировкой строки до конца транзакции
func (r *QuizSessionRepo) GetForUpdate(ctx context.Context, tx *gorm.DB, id string) (*entity.QuizSession, error) {
	var session entity.QuizSession
	err := conn(ctx, r.db, tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&session).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &session, nil
}

// Complete фиксирует итог сессии
func (r *QuizSessionRepo) Complete(ctx context.Context, tx *gorm.DB, id string, correct, total int, score decimal.Decimal, completedAt time.Time) error {
	result := conn(ctx, r.db, tx).Model(&entity.QuizSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"correct_answers":  correct,
			"total_questions":  total,
			"score_percentage": score,
			"completed_at":     completedAt,
		})
	if result.Error != nil {
		return mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return mapError(gorm.ErrRecordNotFound)
	}
	return nil
}
