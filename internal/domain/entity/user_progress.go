package entity

import (
	"time"
)

// UserProgress — ответ пользователя на один вопрос в рамках одной сессии
type UserProgress struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:uq_progress_user_session_question" json:"user_id"`
	QuestionID    uint      `gorm:"not null;uniqueIndex:uq_progress_user_session_question" json:"question_id"`
	UserAnswer    string    `gorm:"size:1" json:"user_answer"`
	IsCorrect     bool      `gorm:"not null;default:false" json:"is_correct"`
	QuizSessionID string    `gorm:"size:100;uniqueIndex:uq_progress_user_session_question" json:"quiz_session_id"`
	AnsweredAt    time.Time `gorm:"not null" json:"answered_at"`
	CreatedAt     time.Time `json:"created_at"`

	Question *Question `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
}

// TableName определяет имя таблицы для GORM
func (UserProgress) TableName() string {
	return "user_progress"
}
