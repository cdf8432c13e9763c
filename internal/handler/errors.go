package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/mathquiz-api/internal/handler/helper"
	apperrors "github.com/yourusername/mathquiz-api/internal/pkg/errors"
	"github.com/yourusername/mathquiz-api/internal/service"
)

// handleServiceError переводит ошибку сервиса в HTTP-ответ.
// op попадает в лог, текст внутренних ошибок клиенту не отдается.
func handleServiceError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		helper.Error(c, http.StatusUnauthorized, "Kullanıcı adı veya şifre hatalı", "invalid_credentials")
	case errors.Is(err, service.ErrPasswordMismatch):
		helper.Error(c, http.StatusBadRequest, "Şifreler eşleşmiyor", "password_mismatch")
	case errors.Is(err, service.ErrUsernameTaken):
		helper.Error(c, http.StatusConflict, "Bu kullanıcı adı zaten kullanılıyor", "username_taken")
	case errors.Is(err, service.ErrAlreadyAnswered):
		helper.Error(c, http.StatusConflict, "Bu soru bu oturumda zaten cevaplandı", "already_answered")
	case errors.Is(err, service.ErrAIDisabled):
		helper.Error(c, http.StatusServiceUnavailable, "AI asistanı şu anda kullanılamıyor", "ai_disabled")
	case errors.Is(err, apperrors.ErrValidation):
		helper.Error(c, http.StatusBadRequest, validationMessage(err), "validation_error")
	case errors.Is(err, apperrors.ErrExpiredToken):
		helper.Error(c, http.StatusUnauthorized, "Oturum süresi doldu", "token_expired")
	case errors.Is(err, apperrors.ErrUnauthorized):
		helper.Error(c, http.StatusUnauthorized, "Giriş yapmanız gerekiyor", "unauthorized")
	case errors.Is(err, apperrors.ErrForbidden):
		helper.Error(c, http.StatusForbidden, "Bu işlem için yetkiniz yok", "forbidden")
	case errors.Is(err, apperrors.ErrNotFound):
		helper.Error(c, http.StatusNotFound, notFoundMessage(err), "not_found")
	case errors.Is(err, apperrors.ErrConflict):
		helper.Error(c, http.StatusConflict, "Veri çakışması", "conflict")
	case errors.Is(err, apperrors.ErrUpstream):
		log.Printf("[%s] Ошибка внешнего сервиса: %v", op, err)
		helper.Error(c, http.StatusBadGateway, "Harici servis yanıt vermedi, lütfen tekrar deneyin", "upstream_error")
	case errors.Is(err, apperrors.ErrUnavailable):
		helper.Error(c, http.StatusServiceUnavailable, "Servis şu anda kullanılamıyor", "unavailable")
	default:
		log.Printf("[%s] Внутренняя ошибка: %v", op, err)
		helper.Error(c, http.StatusInternalServerError, "Sunucu hatası", "internal_server_error")
	}
}

// validationMessage отдает клиенту текст ошибки валидации: он формируется сервисом и не содержит внутренних деталей
func validationMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidGrade):
		return "Sınıf 1 ile 4 arasında olmalıdır"
	case errors.Is(err, service.ErrPasswordTooLong):
		return "Şifre çok uzun"
	default:
		return err.Error()
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return "Quiz oturumu bulunamadı"
	case errors.Is(err, service.ErrNoQuestions):
		return "Bu sınıf için soru bulunamadı"
	case errors.Is(err, service.ErrAllAnswered):
		return "Tüm soruları doğru cevapladınız! Tebrikler 🎉"
	default:
		return "Kayıt bulunamadı"
	}
}
