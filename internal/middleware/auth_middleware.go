package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yourusername/mathquiz-api/internal/pkg/errors"
	"github.com/yourusername/mathquiz-api/pkg/auth"
)

// Ключи контекста Gin, которые заполняет middleware сессии
const (
	ContextUserID = "user_id"
	ContextClaims = "claims"
)

// SessionAuthenticator проверяет токен сессии (реализуется service.AuthService)
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.SessionClaims, error)
}

// AuthMiddleware обеспечивает аутентификацию по cookie сессии
type AuthMiddleware struct {
	authenticator SessionAuthenticator
	sessions      *auth.SessionManager
}

// NewAuthMiddleware создает новый middleware сессии
func NewAuthMiddleware(authenticator SessionAuthenticator, sessions *auth.SessionManager) *AuthMiddleware {
	return &AuthMiddleware{
		authenticator: authenticator,
		sessions:      sessions,
	}
}

// tokenFromRequest берет токен из cookie, а для не-браузерных клиентов из заголовка Bearer
func (m *AuthMiddleware) tokenFromRequest(c *gin.Context) string {
	if token := m.sessions.TokenFromRequest(c.Request); token != "" {
		return token
	}
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// authenticate возвращает claims текущего запроса или ошибку
func (m *AuthMiddleware) authenticate(c *gin.Context) (*auth.SessionClaims, error) {
	token := m.tokenFromRequest(c)
	if token == "" {
		return nil, apperrors.ErrUnauthorized
	}
	return m.authenticator.Authenticate(c.Request.Context(), token)
}

func setClaims(c *gin.Context, claims *auth.SessionClaims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextClaims, claims)
}

// RequireSession защищает JSON API: без действительной сессии возвращает 401
func (m *AuthMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := m.authenticate(c)
		if err != nil {
			errorType := "token_invalid"
			message := "Oturum geçersiz, lütfen tekrar giriş yapın"
			switch {
			case m.tokenFromRequest(c) == "":
				errorType = "token_missing"
				message = "Giriş yapmanız gerekiyor"
			case errors.Is(err, apperrors.ErrExpiredToken):
				errorType = "token_expired"
				message = "Oturum süresi doldu, lütfen tekrar giriş yapın"
			}
			if errorType != "token_missing" {
				m.sessions.ClearCookie(c.Writer)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success":    false,
				"message":    message,
				"error_type": errorType,
			})
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// RequirePage защищает HTML-страницы: без сессии перенаправляет на /login
func (m *AuthMiddleware) RequirePage() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := m.authenticate(c)
		if err != nil {
			if m.tokenFromRequest(c) != "" {
				m.sessions.ClearCookie(c.Writer)
			}
			c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.Path))
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalSession заполняет контекст, если сессия действительна, и никогда не прерывает запрос
func (m *AuthMiddleware) OptionalSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.tokenFromRequest(c) != "" {
			claims, err := m.authenticate(c)
			if err == nil {
				setClaims(c, claims)
			} else {
				log.Printf("[AuthMiddleware.OptionalSession] Недействительная сессия: %v", err)
			}
		}
		c.Next()
	}
}

// ClaimsFromContext возвращает claims, установленные middleware
func ClaimsFromContext(c *gin.Context) (*auth.SessionClaims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.SessionClaims)
	return claims, ok && claims != nil
}

// UserIDFromContext возвращает ID пользователя текущей сессии
func UserIDFromContext(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id > 0
}
