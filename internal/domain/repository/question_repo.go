package repository

import (
	"context"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
)

// QuestionRepository определяет методы для работы с банком вопросов
type QuestionRepository interface {
	GetByID(ctx context.Context, id uint) (*entity.Question, error)
	// Topics возвращает отсортированный список тем для класса
	Topics(ctx context.Context, grade int) ([]string, error)
	// RandomByGradeAndTopic возвращает до limit случайных вопросов темы
	RandomByGradeAndTopic(ctx context.Context, grade int, topic string, limit int) ([]entity.Question, error)
	// RandomByGrade возвращает до limit случайных вопросов класса
	RandomByGrade(ctx context.Context, grade int, limit int) ([]entity.Question, error)
	// CreateBatch сохраняет вопросы пачками, возвращает количество вставленных
	CreateBatch(ctx context.Context, questions []entity.Question) (int, error)
	CountByGrade(ctx context.Context) (map[int]int64, error)
}
