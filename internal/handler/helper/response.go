// Package helper содержит функции формирования JSON-ответов API.
package helper

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Success отправляет {"success": true, "data": data}
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// Message отправляет {"success": true, "message": message}
func Message(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": true, "message": message})
}

// Error отправляет {"success": false, "message": message, "error_type": errorType}
func Error(c *gin.Context, status int, message, errorType string) {
	c.JSON(status, gin.H{"success": false, "message": message, "error_type": errorType})
}

// ValidationError отвечает 400 с описанием первой ошибки биндинга
func ValidationError(c *gin.Context, err error) {
	Error(c, http.StatusBadRequest, DescribeBindingError(err), "validation_error")
}

// DescribeBindingError переводит ошибку валидатора gin в короткое сообщение вида "field: rule"
func DescribeBindingError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			field := toSnakeCase(fe.Field())
			if fe.Param() != "" {
				parts = append(parts, fmt.Sprintf("%s: %s=%s", field, fe.Tag(), fe.Param()))
			} else {
				parts = append(parts, fmt.Sprintf("%s: %s", field, fe.Tag()))
			}
		}
		return strings.Join(parts, "; ")
	}
	return "Geçersiz istek verisi"
}

// toSnakeCase переводит имя поля Go (FirstName) в имя JSON (first_name)
func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
