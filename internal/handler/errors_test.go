package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/yourusername/mathquiz-api/internal/pkg/errors"
	"github.com/yourusername/mathquiz-api/internal/service"
)

func ginTestContext(w *httptest.ResponseRecorder, req *http.Request) (*gin.Context, *gin.Engine) {
	c, engine := gin.CreateTestContext(w)
	c.Request = req
	return c, engine
}

func TestHandleServiceError(t *testing.T) {
	testCases := []struct {
		name         string
		err          error
		expectedCode int
		expectedType string
	}{
		{"неверные учетные данные", service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{"пароли не совпадают", service.ErrPasswordMismatch, http.StatusBadRequest, "password_mismatch"},
		{"username занят", service.ErrUsernameTaken, http.StatusConflict, "username_taken"},
		{"повторный ответ", service.ErrAlreadyAnswered, http.StatusConflict, "already_answered"},
		{"неверный класс", service.ErrInvalidGrade, http.StatusBadRequest, "validation_error"},
		{"сессия не найдена", service.ErrSessionNotFound, http.StatusNotFound, "not_found"},
		{"чужая сессия", service.ErrSessionForbidden, http.StatusForbidden, "forbidden"},
		{"помощник выключен", service.ErrAIDisabled, http.StatusServiceUnavailable, "ai_disabled"},
		{"токен истек", apperrors.ErrExpiredToken, http.StatusUnauthorized, "token_expired"},
		{"ошибка Gemini", fmt.Errorf("%w: timeout", apperrors.ErrUpstream), http.StatusBadGateway, "upstream_error"},
		{"сервис недоступен", apperrors.ErrUnavailable, http.StatusServiceUnavailable, "unavailable"},
		{"конфликт", apperrors.ErrConflict, http.StatusConflict, "conflict"},
		{"неизвестная ошибка", errors.New("db is on fire"), http.StatusInternalServerError, "internal_server_error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			w := httptest.NewRecorder()
			c, _ := ginTestContext(w, httptest.NewRequest(http.MethodGet, "/", nil))

			// Act
			handleServiceError(c, "Test", tc.err)

			// Assert
			assert.Equal(t, tc.expectedCode, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tc.expectedType, body["error_type"])
			assert.NotContains(t, w.Body.String(), "db is on fire", "Текст внутренней ошибки не должен уходить клиенту")
		})
	}
}

func TestHandleServiceError_NotFoundMessages(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := ginTestContext(w, httptest.NewRequest(http.MethodGet, "/", nil))

	handleServiceError(c, "Test", service.ErrAllAnswered)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, decodeBody(t, w)["message"], "Tebrikler")
}
