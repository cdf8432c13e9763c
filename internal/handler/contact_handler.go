package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/mathquiz-api/internal/handler/dto"
	"github.com/yourusername/mathquiz-api/internal/handler/helper"
	"github.com/yourusername/mathquiz-api/internal/service"
)

// ContactHandler принимает сообщения с формы обратной связи
type ContactHandler struct {
	contactService *service.ContactService
}

// NewContactHandler создает обработчик обратной связи
func NewContactHandler(contactService *service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// Submit — POST /api/contact
func (h *ContactHandler) Submit(c *gin.Context) {
	var req dto.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helper.ValidationError(c, err)
		return
	}
	if err := h.contactService.Submit(c.Request.Context(), req); err != nil {
		handleServiceError(c, "ContactHandler.Submit", err)
		return
	}
	helper.Message(c, http.StatusOK, "Mesajınız gönderildi. Teşekkürler!")
}
