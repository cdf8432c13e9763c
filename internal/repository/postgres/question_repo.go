package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
)

// questionBatchSize — размер пачки при массовой загрузке вопросов
const questionBatchSize = 200

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// GetByID возвращает вопрос по ID
func (r *QuestionRepo) GetByID(ctx context.Context, id uint) (*entity.Question, error) {
	var question entity.Question
	if err := r.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, mapError(err)
	}
	return &question, nil
}

// Topics возвращает темы класса в алфавитном порядке
func (r *QuestionRepo) Topics(ctx context.Context, grade int) ([]string, error) {
	var topics []string
	err := r.db.WithContext(ctx).Model(&entity.Question{}).
		Where("grade = ?", grade).
		Distinct("topic").
		Order("topic").
		Pluck("topic", &topics).Error
	return topics, err
}

// RandomByGradeAndTopic возвращает случайные вопросы одной темы
func (r *QuestionRepo) RandomByGradeAndTopic(ctx context.Context, grade int, topic string, limit int) ([]entity.Question, error) {
	var questions []entity.Question
	err := r.db.WithContext(ctx).
		Where("grade = ? AND topic = ?", grade, topic).
		Order("RANDOM()").
		Limit(limit).
		Find(&questions).Error
	return questions, err
}

// RandomByGrade возвращает случайные вопросы класса
func (r *QuestionRepo) RandomByGrade(ctx context.Context, grade int, limit int) ([]entity.Question, error) {
	var questions []entity.Question
	err := r.db.WithContext(ctx).
		Where("grade = ?", grade).
		Order("RANDOM()").
		Limit(limit).
		Find(&questions).Error
	return questions, err
}

// CreateBatch сохраняет вопросы пачками в одной транзакции
func (r *QuestionRepo) CreateBatch(ctx context.Context, questions []entity.Question) (int, error) {
	if len(questions) == 0 {
		return 0, nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&questions, questionBatchSize).Error
	})
	if err != nil {
		return 0, mapError(err)
	}
	return len(questions), nil
}

// CountByGrade возвращает количество вопросов по классам
func (r *QuestionRepo) CountByGrade(ctx context.Context) (map[int]int64, error) {
	var rows []struct {
		Grade int
		Count int64
	}
	err := r.db.WithContext(ctx).Model(&entity.Question{}).
		Select("grade, COUNT(*) AS count").
		Group("grade").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[int]int64, len(rows))
	for _, row := range rows {
		counts[row.Grade] = row.Count
	}
	return counts, nil
}
