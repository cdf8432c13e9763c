package handler

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/mathquiz-api/internal/middleware"
	"github.com/yourusername/mathquiz-api/internal/service"
	"github.com/yourusername/mathquiz-api/pkg/auth"
)

// PageHandler отдает HTML-страницы приложения
type PageHandler struct {
	authService *service.AuthService
	sessions    *auth.SessionManager
}

// NewPageHandler создает обработчик страниц
func NewPageHandler(authService *service.AuthService, sessions *auth.SessionManager) *PageHandler {
	return &PageHandler{
		authService: authService,
		sessions:    sessions,
	}
}

// pageData собирает общие данные шаблона
func pageData(c *gin.Context, title string) gin.H {
	data := gin.H{"title": title}
	if claims, ok := middleware.ClaimsFromContext(c); ok {
		data["user"] = claims
	}
	return data
}

// render возвращает обработчик, рендерящий шаблон с заголовком страницы
func (h *PageHandler) render(template, title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, template, pageData(c, title))
	}
}

// Index — главная страница
func (h *PageHandler) Index() gin.HandlerFunc { return h.render("index.html", "Ana Sayfa") }

// About — страница "О проекте"
func (h *PageHandler) About() gin.HandlerFunc { return h.render("about.html", "Hakkımızda") }

// Contact — форма обратной связи
func (h *PageHandler) Contact() gin.HandlerFunc { return h.render("contact.html", "İletişim") }

// Quiz — страница викторины (требует сессию)
func (h *PageHandler) Quiz() gin.HandlerFunc { return h.render("quiz.html", "Quiz") }

// Profile — профиль (требует сессию)
func (h *PageHandler) Profile() gin.HandlerFunc { return h.render("profile.html", "Profilim") }

// Progress — прогресс (требует сессию)
func (h *PageHandler) Progress() gin.HandlerFunc { return h.render("progress.html", "İlerlemem") }

// LessonNotes — конспекты уроков (требует сессию)
func (h *PageHandler) LessonNotes() gin.HandlerFunc {
	return h.render("lesson_notes.html", "Ders Notları")
}

// Login показывает форму входа; авторизованного пользователя отправляет на главную
func (h *PageHandler) Login(c *gin.Context) {
	if _, ok := middleware.ClaimsFromContext(c); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	data := pageData(c, "Giriş Yap")
	data["next"] = safeNext(c.Query("next"))
	c.HTML(http.StatusOK, "login.html", data)
}

// Register показывает форму регистрации; авторизованного пользователя отправляет на главную
func (h *PageHandler) Register(c *gin.Context) {
	if _, ok := middleware.ClaimsFromContext(c); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "register.html", pageData(c, "Kayıt Ol"))
}

// Logout отзывает сессию, удаляет cookie и перенаправляет на главную
func (h *PageHandler) Logout(c *gin.Context) {
	if claims, ok := middleware.ClaimsFromContext(c); ok {
		if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
			log.Printf("[PageHandler.Logout] Ошибка отзыва сессии пользователя ID=%d: %v", claims.UserID, err)
		}
	}
	h.sessions.ClearCookie(c.Writer)
	c.Redirect(http.StatusFound, "/")
}

// safeNext допускает только локальные пути, чтобы не было открытого редиректа
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
