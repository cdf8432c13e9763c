package dto

import "github.com/yourusername/mathquiz-api/internal/domain/entity"

// RegisterRequest — запрос на регистрацию
type RegisterRequest struct {
	Username        string `json:"username" binding:"required,min=3,max=50"`
	Password        string `json:"password" binding:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirm_password" binding:"omitempty"`
	FirstName       string `json:"first_name" binding:"required,max=50"`
	LastName        string `json:"last_name" binding:"required,max=50"`
	Grade           int    `json:"grade" binding:"required,min=1,max=4"`
}

// LoginRequest — запрос на вход
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest — запрос на обновление профиля
type UpdateProfileRequest struct {
	FirstName string `json:"first_name" binding:"required,max=50"`
	LastName  string `json:"last_name" binding:"required,max=50"`
	Grade     int    `json:"grade" binding:"required,min=1,max=4"`
}

// UserProfile — публичные данные пользователя
type UserProfile struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Grade     int    `json:"grade"`
}

// NewUserProfile строит профиль из сущности
func NewUserProfile(u *entity.User) UserProfile {
	return UserProfile{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Grade:     u.Grade,
	}
}

// LoginResponse — ответ на успешный вход
type LoginResponse struct {
	User     UserProfile `json:"user"`
	Redirect string      `json:"redirect"`
}

// UserStats — сводная статистика пользователя
type UserStats struct {
	TotalQuestions    int64   `json:"total_questions"`
	CorrectAnswers    int64   `json:"correct_answers"`
	IncorrectAnswers  int64   `json:"incorrect_answers"`
	TotalPoints       int64   `json:"total_points"`
	TotalAchievements int64   `json:"total_achievements"`
	CompletedQuizzes  int64   `json:"completed_quizzes"`
	SuccessPercentage float64 `json:"success_percentage"`
}

// ContactRequest — сообщение с формы обратной связи
type ContactRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required,max=5000"`
}
