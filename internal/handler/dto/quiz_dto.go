package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuestionDTO — вопрос с перемешанными вариантами ответа
type QuestionDTO struct {
	ID            uint              `json:"id"`
	Number        int               `json:"number"`
	Grade         int               `json:"grade"`
	Topic         string            `json:"topic"`
	QuestionText  string            `json:"question_text"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
	Difficulty    string            `json:"difficulty_level"`
}

// QuestionsResponse — набор вопросов для викторины
type QuestionsResponse struct {
	Questions         []QuestionDTO `json:"questions"`
	Total             int           `json:"total"`
	Grade             int           `json:"grade"`
	Topics            []string      `json:"topics"`
	ExcludedQuestions int           `json:"excluded_questions"`
}

// StartSessionResponse — ответ на создание сессии
type StartSessionResponse struct {
	SessionID      string    `json:"session_id"`
	Grade          int       `json:"grade"`
	TotalQuestions int       `json:"total_questions"`
	StartedAt      time.Time `json:"started_at"`
}

// SubmitAnswerRequest — ответ пользователя на вопрос
type SubmitAnswerRequest struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	UserAnswer string `json:"user_answer" binding:"required,oneof=A B C D"`
	IsCorrect  *bool  `json:"is_correct" binding:"required"`
	SessionID  string `json:"session_id" binding:"required"`
}

// CompleteSessionRequest — итог сессии
type CompleteSessionRequest struct {
	SessionID      string `json:"session_id" binding:"required"`
	CorrectAnswers *int   `json:"correct_answers" binding:"required,min=0"`
	TotalQuestions int    `json:"total_questions" binding:"omitempty,min=1"`
}

// CompleteSessionResponse — результат завершения сессии
type CompleteSessionResponse struct {
	SessionID         string           `json:"session_id"`
	ScorePercentage   decimal.Decimal  `json:"score_percentage"`
	CorrectAnswers    int              `json:"correct_answers"`
	TotalQuestions    int              `json:"total_questions"`
	AchievementEarned *AchievementDTO  `json:"achievement_earned"`
	NewAchievements   []AchievementDTO `json:"new_achievements"`
}
