package service

import (
	"fmt"

	apperrors "github.com/yourusername/mathquiz-api/internal/pkg/errors"
)

// Ошибки сервисов. Все оборачивают общие ошибки приложения, чтобы обработчики
// сопоставляли их со статусами через errors.Is.
var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", apperrors.ErrUnauthorized)
	ErrPasswordMismatch   = fmt.Errorf("%w: passwords do not match", apperrors.ErrValidation)
	ErrPasswordTooLong    = fmt.Errorf("%w: password must be at most 72 bytes", apperrors.ErrValidation)
	ErrUsernameTaken      = fmt.Errorf("%w: username already exists", apperrors.ErrConflict)
	ErrInvalidGrade       = fmt.Errorf("%w: grade must be between 1 and 4", apperrors.ErrValidation)
	ErrSessionNotFound    = fmt.Errorf("%w: quiz session not found", apperrors.ErrNotFound)
	ErrSessionForbidden   = fmt.Errorf("%w: quiz session belongs to another user", apperrors.ErrForbidden)
	ErrAlreadyAnswered    = fmt.Errorf("%w: question already answered in this session", apperrors.ErrConflict)
	ErrNoQuestions        = fmt.Errorf("%w: no questions for this grade", apperrors.ErrNotFound)
	ErrAllAnswered        = fmt.Errorf("%w: all questions already answered correctly", apperrors.ErrNotFound)
	ErrAIDisabled         = fmt.Errorf("%w: ai helper is not configured", apperrors.ErrUnavailable)
)
