package auth

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
	apperrors "github.com/yourusername/mathquiz-api/internal/pkg/errors"
)

// MinSecretLength — минимальная длина секрета подписи в байтах
const MinSecretLength = 32

// SessionClaims содержит данные пользователя, зашитые в сессионный токен
type SessionClaims struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Grade     int    `json:"grade"`
	jwt.RegisteredClaims
}

// SessionManager выпускает и проверяет подписанные сессии и управляет cookie
type SessionManager struct {
	secret     []byte
	issuer     string
	ttl        time.Duration
	cookieName string
	secure     bool
	now        func() time.Time
}

// NewSessionManager создает менеджер сессий. secure включает флаг Secure у cookie.
func NewSessionManager(secret, issuer, cookieName string, ttl time.Duration, secure bool) (*SessionManager, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("session secret must be at least %d bytes", MinSecretLength)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if cookieName == "" {
		cookieName = "mq_session"
	}
	return &SessionManager{
		secret:     []byte(secret),
		issuer:     issuer,
		ttl:        ttl,
		cookieName: cookieName,
		secure:     secure,
		now:        time.Now,
	}, nil
}

// TTL возвращает время жизни сессии
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// CookieName возвращает имя сессионной cookie
func (m *SessionManager) CookieName() string {
	return m.cookieName
}

// Issue подписывает новую сессию для пользователя
func (m *SessionManager) Issue(user *entity.User) (string, *SessionClaims, error) {
	now := m.now()
	claims := &SessionClaims{
		UserID:    user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Grade:     user.Grade,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.issuer,
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		log.Printf("[SessionManager.Issue] Ошибка подписи токена для пользователя ID=%d: %v", user.ID, err)
		return "", nil, err
	}
	return signed, claims, nil
}

// Parse проверяет подпись и срок действия сессии.
// Истекший токен возвращает apperrors.ErrExpiredToken, остальные ошибки apperrors.ErrUnauthorized.
func (m *SessionManager) Parse(tokenString string) (*SessionClaims, error) {
	if tokenString == "" {
		return nil, apperrors.ErrUnauthorized
	}

	claims := &SessionClaims{}
	// Сроки проверяются ниже относительно m.now
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, err)
	}

	now := m.now()
	if !claims.VerifyExpiresAt(now, true) {
		return nil, apperrors.ErrExpiredToken
	}
	if !claims.VerifyNotBefore(now, false) {
		return nil, fmt.Errorf("%w: token not valid yet", apperrors.ErrUnauthorized)
	}
	if m.issuer != "" && !claims.VerifyIssuer(m.issuer, true) {
		return nil, fmt.Errorf("%w: unexpected issuer", apperrors.ErrUnauthorized)
	}
	return claims, nil
}

// SetCookie записывает сессию в HttpOnly cookie
func (m *SessionManager) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.ttl.Seconds()),
	})
}

// ClearCookie удаляет сессионную cookie
func (m *SessionManager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// TokenFromRequest достает сессионный токен из cookie запроса
func (m *SessionManager) TokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// RemainingTTL возвращает оставшееся время жизни сессии (для хранения отзыва в Redis)
func (m *SessionManager) RemainingTTL(claims *SessionClaims) time.Duration {
	if claims == nil || claims.ExpiresAt == nil {
		return m.ttl
	}
	left := claims.ExpiresAt.Time.Sub(m.now())
	if left <= 0 {
		return time.Second
	}
	return left
}
