package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/mathquiz-api/internal/handler/dto"
	"github.com/yourusername/mathquiz-api/internal/handler/helper"
	"github.com/yourusername/mathquiz-api/internal/service"
)

// AIHandler обрабатывает запросы к помощнику MatchCatAI.
// Успешные ответы возвращаются как {success, message} без обертки data.
type AIHandler struct {
	aiService *service.AIService
}

// NewAIHandler создает обработчик помощника
func NewAIHandler(aiService *service.AIService) *AIHandler {
	return &AIHandler{aiService: aiService}
}

// Chat — POST /api/ai/chat
func (h *AIHandler) Chat(c *gin.Context) {
	var req dto.AIChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helper.ValidationError(c, err)
		return
	}
	resp, err := h.aiService.Chat(c.Request.Context(), req)
	h.respond(c, "AIHandler.Chat", resp, err)
}

// QuizHelp — POST /api/ai/quiz-help
func (h *AIHandler) QuizHelp(c *gin.Context) {
	var req dto.AIQuizHelpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helper.ValidationError(c, err)
		return
	}
	resp, err := h.aiService.QuizHelp(c.Request.Context(), req)
	h.respond(c, "AIHandler.QuizHelp", resp, err)
}

// GeneralHelp — POST /api/ai/general-help. Пустое тело допустимо.
func (h *AIHandler) GeneralHelp(c *gin.Context) {
	var req dto.AIGeneralHelpRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			helper.ValidationError(c, err)
			return
		}
	}
	resp, err := h.aiService.GeneralHelp(c.Request.Context(), req)
	h.respond(c, "AIHandler.GeneralHelp", resp, err)
}

// Motivation — POST /api/ai/motivation
func (h *AIHandler) Motivation(c *gin.Context) {
	var req dto.AIMotivationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helper.ValidationError(c, err)
		return
	}
	resp, err := h.aiService.Motivation(c.Request.Context(), req)
	h.respond(c, "AIHandler.Motivation", resp, err)
}

func (h *AIHandler) respond(c *gin.Context, op string, resp *dto.AIResponse, err error) {
	if err != nil {
		handleServiceError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
