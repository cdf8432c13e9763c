package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/mathquiz-api/internal/handler/dto"
	"github.com/yourusername/mathquiz-api/internal/handler/helper"
	"github.com/yourusername/mathquiz-api/internal/middleware"
	"github.com/yourusername/mathquiz-api/internal/service"
)

// LimitContextKey — ключ контекста для параметра limit
const LimitContextKey = "limit"

// QuizHandler обрабатывает запросы, связанные с викторинами
type QuizHandler struct {
	quizService *service.QuizService
}

// NewQuizHandler создает новый обработчик викторин
func NewQuizHandler(quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// GetQuestions возвращает вопросы для класса из сессии
// GET /api/quiz/questions?limit=20
func (h *QuizHandler) GetQuestions(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		helper.Error(c, http.StatusUnauthorized, "Giriş yapmanız gerekiyor", "unauthorized")
		return
	}
	limit := c.GetInt(LimitContextKey)

	resp, err := h.quizService.GetQuestions(c.Request.Context(), claims.UserID, claims.Grade, limit)
	if err != nil {
		handleServiceError(c, "QuizHandler.GetQuestions", err)
		return
	}
	helper.Success(c, http.StatusOK, resp)
}

// Start создает новую сессию викторины
// POST /api/quiz/start
func (h *QuizHandler) Start(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		helper.Error(c, http.StatusUnauthorized, "Giriş yapmanız gerekiyor", "unauthorized")
		return
	}

	resp, err := h.quizService.StartSession(c.Request.Context(), claims.UserID, claims.Grade)
	if err != nil {
		handleServiceError(c, "QuizHandler.Start", err)
		return
	}
	helper.Success(c, http.StatusOK, resp)
}

// Submit сохраняет ответ на вопрос
// POST /api/quiz/submit
func (h *QuizHandler) Submit(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		helper.Error(c, http.StatusUnauthorized, "Giriş yapmanız gerekiyor", "unauthorized")
		return
	}

	var req dto.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helper.ValidationError(c, err)
		return
	}

	if err := h.quizService.SubmitAnswer(c.Request.Context(), userID, req); err != nil {
		handleServiceError(c, "QuizHandler.Submit", err)
		return
	}
	helper.Message(c, http.StatusOK, "Cevap kaydedildi")
}

// Complete завершает сессию и проверяет достижения
// POST /api/quiz/complete
func (h *QuizHandler) Complete(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		helper.Error(c, http.StatusUnauthorized, "Giriş yapmanız gerekiyor", "unauthorized")
		return
	}

	var req dto.CompleteSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helper.ValidationError(c, err)
		return
	}

	resp, err := h.quizService.CompleteSession(c.Request.Context(), userID, req)
	if err != nil {
		handleServiceError(c, "QuizHandler.Complete", err)
		return
	}
	helper.Success(c, http.StatusOK, resp)
}
