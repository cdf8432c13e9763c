package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultSessionQuestions — количество вопросов в сессии по умолчанию
const DefaultSessionQuestions = 20

// QuizSession — одна попытка прохождения викторины
type QuizSession struct {
	ID              string          `gorm:"primaryKey;size:100" json:"id"`
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	Grade           int             `gorm:"not null" json:"grade"`
	TotalQuestions  int             `gorm:"not null;default:20" json:"total_questions"`
	CorrectAnswers  int             `gorm:"not null;default:0" json:"correct_answers"`
	ScorePercentage decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"score_percentage"`
	StartedAt       time.Time       `gorm:"not null" json:"started_at"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
}

// TableName определяет имя таблицы для GORM
func (QuizSession) TableName() string {
	return "quiz_sessions"
}

// IsCompleted сообщает, завершена ли сессия
func (s *QuizSession) IsCompleted() bool {
	return s.CompletedAt != nil
}

// ScorePercentage вычисляет процент правильных ответов с точностью до 0.01.
// Для total <= 0 возвращает ноль.
func ScorePercentage(correct, total int) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(correct)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(2)
}
