package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/mathquiz-api/internal/handler/dto"
	"github.com/yourusername/mathquiz-api/internal/service"
)

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendContactMessage(ctx context.Context, msg dto.ContactRequest) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func setupContactRouter(email service.EmailService) *gin.Engine {
	h := NewContactHandler(service.NewContactService(email))
	router := gin.New()
	router.POST("/api/contact", h.Submit)
	return router
}

func TestContactHandler_Submit(t *testing.T) {
	// Arrange
	email := new(MockEmailService)
	email.On("SendContactMessage", mock.Anything, dto.ContactRequest{
		Name:    "Veli",
		Email:   "veli@example.com",
		Message: "Uygulama çok güzel",
	}).Return(nil).Once()
	router := setupContactRouter(email)

	// Act
	w := performJSON(router, http.MethodPost, "/api/contact", map[string]string{
		"name":    " Veli ",
		"email":   "veli@example.com",
		"message": "Uygulama çok güzel",
	})

	// Assert
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decodeBody(t, w)["success"])
	email.AssertExpectations(t)
}

func TestContactHandler_Submit_Validation(t *testing.T) {
	testCases := []struct {
		name string
		body map[string]string
	}{
		{"нет имени", map[string]string{"email": "a@b.com", "message": "x"}},
		{"неверный email", map[string]string{"name": "A", "email": "not-an-email", "message": "x"}},
		{"нет сообщения", map[string]string{"name": "A", "email": "a@b.com"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			email := new(MockEmailService)
			router := setupContactRouter(email)

			w := performJSON(router, http.MethodPost, "/api/contact", tc.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			email.AssertNotCalled(t, "SendContactMessage", mock.Anything, mock.Anything)
		})
	}
}

func TestContactHandler_Submit_SendError(t *testing.T) {
	email := new(MockEmailService)
	email.On("SendContactMessage", mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	router := setupContactRouter(email)

	w := performJSON(router, http.MethodPost, "/api/contact", map[string]string{
		"name":    "Veli",
		"email":   "veli@example.com",
		"message": "Merhaba",
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "smtp down", "Внутренняя ошибка не должна попадать клиенту")
}
