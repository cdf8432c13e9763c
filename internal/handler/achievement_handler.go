package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/mathquiz-api/internal/handler/helper"
	"github.com/yourusername/mathquiz-api/internal/middleware"
	"github.com/yourusername/mathquiz-api/internal/service"
)

// AchievementHandler обрабатывает запросы достижений
type AchievementHandler struct {
	achievementService *service.AchievementService
}

// NewAchievementHandler создает обработчик достижений
func NewAchievementHandler(achievementService *service.AchievementService) *AchievementHandler {
	return &AchievementHandler{achievementService: achievementService}
}

// List — GET /api/achievements
func (h *AchievementHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	resp, err := h.achievementService.List(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, "AchievementHandler.List", err)
		return
	}
	helper.Success(c, http.StatusOK, resp)
}

// Check — POST /api/achievements/check
func (h *AchievementHandler) Check(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	resp, err := h.achievementService.Check(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, "AchievementHandler.Check", err)
		return
	}
	helper.Success(c, http.StatusOK, resp)
}

// Catalog — GET /api/achievements/all
func (h *AchievementHandler) Catalog(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	resp, err := h.achievementService.Catalog(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, "AchievementHandler.Catalog", err)
		return
	}
	helper.Success(c, http.StatusOK, resp)
}

// Unearned — GET /api/achievements/unearned
func (h *AchievementHandler) Unearned(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	resp, err := h.achievementService.Unearned(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, "AchievementHandler.Unearned", err)
		return
	}
	helper.Success(c, http.StatusOK, resp)
}

// Cleanup — POST /api/achievements/cleanup
func (h *AchievementHandler) Cleanup(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	resp, err := h.achievementService.Cleanup(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, "AchievementHandler.Cleanup", err)
		return
	}
	helper.Success(c, http.StatusOK, resp)
}

// requireUserID достает ID пользователя из контекста или отвечает 401
func requireUserID(c *gin.Context) (uint, bool) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		helper.Error(c, http.StatusUnauthorized, "Giriş yapmanız gerekiyor", "unauthorized")
		return 0, false
	}
	return userID, true
}
