package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/mathquiz-api/internal/handler/dto"
	"github.com/yourusername/mathquiz-api/internal/handler/helper"
	"github.com/yourusername/mathquiz-api/internal/middleware"
	"github.com/yourusername/mathquiz-api/internal/service"
	"github.com/yourusername/mathquiz-api/pkg/auth"
)

// AuthHandler обрабатывает регистрацию, вход, выход и профиль
type AuthHandler struct {
	authService *service.AuthService
	sessions    *auth.SessionManager
}

// NewAuthHandler создает новый обработчик аутентификации
func NewAuthHandler(authService *service.AuthService, sessions *auth.SessionManager) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
	}
}

// Register обрабатывает запрос на регистрацию
// POST /api/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helper.ValidationError(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, "AuthHandler.Register", err)
		return
	}

	log.Printf("[AuthHandler] Пользователь ID=%d (%s) зарегистрирован", user.ID, user.Username)
	helper.Success(c, http.StatusCreated, gin.H{
		"user":     dto.NewUserProfile(user),
		"redirect": "/login",
	})
}

// Login проверяет учетные данные и выставляет cookie сессии
// POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helper.ValidationError(c, err)
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		handleServiceError(c, "AuthHandler.Login", err)
		return
	}

	h.sessions.SetCookie(c.Writer, token)
	helper.Success(c, http.StatusOK, dto.LoginResponse{
		User:     dto.NewUserProfile(user),
		Redirect: "/",
	})
}

// Logout отзывает сессию и удаляет cookie
// POST /api/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, _ := middleware.ClaimsFromContext(c)
	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		// Cookie удаляется в любом случае, отзыв лишь дополнительная защита
		log.Printf("[AuthHandler.Logout] Ошибка отзыва сессии: %v", err)
	}
	h.sessions.ClearCookie(c.Writer)
	helper.Message(c, http.StatusOK, "Çıkış yapıldı")
}

// UpdateProfile обновляет имя, фамилию и класс и перевыпускает сессию
// POST /api/profile/update
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		helper.Error(c, http.StatusUnauthorized, "Giriş yapmanız gerekiyor", "unauthorized")
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helper.ValidationError(c, err)
		return
	}

	user, token, err := h.authService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		handleServiceError(c, "AuthHandler.UpdateProfile", err)
		return
	}

	h.sessions.SetCookie(c.Writer, token)
	helper.Success(c, http.StatusOK, dto.NewUserProfile(user))
}

// SessionUser возвращает данные пользователя из сессии
// GET /api/session/user
func (h *AuthHandler) SessionUser(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		helper.Error(c, http.StatusUnauthorized, "Giriş yapmanız gerekiyor", "unauthorized")
		return
	}
	helper.Success(c, http.StatusOK, dto.UserProfile{
		ID:        claims.UserID,
		Username:  claims.Username,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
		Grade:     claims.Grade,
	})
}
