package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ExtractIntQuery создает middleware для извлечения и валидации числового query-параметра.
// Отсутствующий параметр заменяется на def.
// contextKey - ключ, под которым значение будет сохранено в контексте Gin.
func ExtractIntQuery(paramName, contextKey string, def int) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := c.GetQuery(paramName)
		if !ok || raw == "" {
			c.Set(contextKey, def)
			c.Next()
			return
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success":    false,
				"message":    fmt.Sprintf("Invalid %s", paramName),
				"error_type": "validation_error",
			})
			return
		}
		c.Set(contextKey, value)
		c.Next()
	}
}
