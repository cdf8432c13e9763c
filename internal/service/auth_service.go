package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
	"github.com/yourusername/mathquiz-api/internal/domain/repository"
	"github.com/yourusername/mathquiz-api/internal/handler/dto"
	apperrors "github.com/yourusername/mathquiz-api/internal/pkg/errors"
	"github.com/yourusername/mathquiz-api/pkg/auth"
)

// revokedKeyPrefix — префикс ключей отозванных сессий в Redis
const revokedKeyPrefix = "session:revoked:"

// AuthService предоставляет регистрацию, вход, выход и работу с профилем
type AuthService struct {
	userRepo  repository.UserRepository
	cacheRepo repository.CacheRepository
	sessions  *auth.SessionManager
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(userRepo repository.UserRepository, cacheRepo repository.CacheRepository, sessions *auth.SessionManager) (*AuthService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("UserRepository is required for AuthService")
	}
	if sessions == nil {
		return nil, fmt.Errorf("SessionManager is required for AuthService")
	}
	return &AuthService{
		userRepo:  userRepo,
		cacheRepo: cacheRepo,
		sessions:  sessions,
	}, nil
}

// Register создает пользователя. Пароль хешируется до передачи в репозиторий.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*entity.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", apperrors.ErrValidation)
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		return nil, ErrPasswordMismatch
	}
	if !entity.ValidGrade(req.Grade) {
		return nil, ErrInvalidGrade
	}

	user := &entity.User{
		Username:  username,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Grade:     req.Grade,
	}
	if err := user.SetPassword(req.Password); err != nil {
		if errors.Is(err, entity.ErrPasswordTooLong) {
			return nil, ErrPasswordTooLong
		}
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, ErrUsernameTaken
		}
		log.Printf("[AuthService.Register] Ошибка создания пользователя username=%s: %v", username, err)
		return nil, err
	}

	log.Printf("[AuthService.Register] Пользователь ID=%d (%s) зарегистрирован", user.ID, user.Username)
	return user, nil
}

// Login проверяет учетные данные и выпускает сессию.
// Неизвестный пользователь и неверный пароль дают одну и ту же ошибку.
func (s *AuthService) Login(ctx context.Context, username, password string) (*entity.User, string, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !user.CheckPassword(password) {
		log.Printf("[AuthService.Login] Неверный пароль для пользователя ID=%d", user.ID)
		return nil, "", ErrInvalidCredentials
	}

	token, _, err := s.sessions.Issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Authenticate проверяет токен сессии и его отзыв
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.SessionClaims, error) {
	claims, err := s.sessions.Parse(token)
	if err != nil {
		return nil, err
	}
	if s.cacheRepo != nil && claims.ID != "" {
		revoked, err := s.cacheRepo.Exists(ctx, revokedKeyPrefix+claims.ID)
		if err != nil {
			// Redis недоступен: сессия остается действительной до истечения срока
			log.Printf("[AuthService.Authenticate] Ошибка проверки отзыва jti=%s: %v", claims.ID, err)
		} else if revoked {
			return nil, fmt.Errorf("%w: session revoked", apperrors.ErrUnauthorized)
		}
	}
	return claims, nil
}

// Logout отзывает сессию до конца ее срока действия
func (s *AuthService) Logout(ctx context.Context, claims *auth.SessionClaims) error {
	if claims == nil || claims.ID == "" || s.cacheRepo == nil {
		return nil
	}
	ttl := s.sessions.RemainingTTL(claims)
	if err := s.cacheRepo.Set(ctx, revokedKeyPrefix+claims.ID, "1", ttl); err != nil {
		log.Printf("[AuthService.Logout] Не удалось отозвать сессию jti=%s: %v", claims.ID, err)
		return err
	}
	return nil
}

// GetUser возвращает пользователя по ID
func (s *AuthService) GetUser(ctx context.Context, userID uint) (*entity.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateProfile обновляет имя, фамилию и класс и выпускает новую сессию с актуальными данными
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, req dto.UpdateProfileRequest) (*entity.User, string, error) {
	if !entity.ValidGrade(req.Grade) {
		return nil, "", ErrInvalidGrade
	}

	updates := map[string]interface{}{
		"first_name": strings.TrimSpace(req.FirstName),
		"last_name":  strings.TrimSpace(req.LastName),
		"grade":      req.Grade,
	}
	if err := s.userRepo.UpdateProfile(ctx, userID, updates); err != nil {
		return nil, "", err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	token, _, err := s.sessions.Issue(user)
	if err != nil {
		return nil, "", err
	}
	log.Printf("[AuthService.UpdateProfile] Профиль пользователя ID=%d обновлен (grade=%d)", userID, user.Grade)
	return user, token, nil
}
