package websocket

import (
	"encoding/json"
	"time"
)

// Типы событий, которые сервер отправляет клиентам
const (
	// ACHIEVEMENT_EARNED сообщает о новых достижениях пользователя
	ACHIEVEMENT_EARNED = "achievement_earned"

	// PONG — ответ на {"type":"ping"} от клиента
	PONG = "pong"

	// BUFFER_WARNING предупреждает клиента о переполнении очереди сообщений
	BUFFER_WARNING = "server:buffer_warning"
)

// Event — конверт события, отправляемого клиенту
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent собирает событие и сериализует его
func NewEvent(eventType string, data interface{}) ([]byte, error) {
	return json.Marshal(Event{Type: eventType, Data: data, Timestamp: time.Now().UTC()})
}

// messageTypeFromBytes достает поле type из сообщения (для логов)
func messageTypeFromBytes(message []byte) string {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(message, &envelope); err != nil {
		return "unknown"
	}
	return envelope.Type
}
