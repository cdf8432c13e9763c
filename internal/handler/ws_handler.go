package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"

	"github.com/yourusername/mathquiz-api/internal/websocket"
)

// WSHandler обрабатывает WebSocket соединения для уведомлений
type WSHandler struct {
	hub      *websocket.Hub
	upgrader gorillaws.Upgrader
}

// NewWSHandler создает обработчик WebSocket.
// allowedOrigins должен совпадать со списком CORS.
func NewWSHandler(hub *websocket.Hub, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:    1024,
			WriteBufferSize:   1024,
			CheckOrigin:       originChecker(allowedOrigins),
			EnableCompression: true,
		},
	}
}

// originChecker разрешает пустой Origin (не браузерный клиент), тот же хост и origin из списка
func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if origin == "http://"+r.Host || origin == "https://"+r.Host {
			return true
		}
		if _, ok := allowed[origin]; ok {
			return true
		}
		log.Printf("[WSHandler] Отклонен неразрешенный origin: %s", origin)
		return false
	}
}

// HandleConnection — GET /api/ws. Сессия проверяется middleware до апгрейда.
func (h *WSHandler) HandleConnection(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже записал ответ клиенту
		log.Printf("[WSHandler] Ошибка апгрейда соединения для пользователя ID=%d: %v", userID, err)
		return
	}

	client := websocket.NewClient(h.hub, conn, userID)
	log.Printf("[WSHandler] Пользователь ID=%d подключен (connection=%s)", userID, client.ConnectionID)
	client.StartPumps()
}
