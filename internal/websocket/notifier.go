package websocket

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/mathquiz-api/internal/handler/dto"
)

// DefaultNotificationChannel — канал Redis для доставки событий между экземплярами
const DefaultNotificationChannel = "mathquiz:ws:direct"

// ClusterMessage — событие для пользователя, пересылаемое между экземплярами
type ClusterMessage struct {
	RecipientID uint            `json:"recipient_id"`
	InstanceID  string          `json:"instance_id"`
	Payload     json.RawMessage `json:"payload"`
	Timestamp   time.Time       `json:"timestamp"`
}

// Notifier доставляет события пользователям: локально через Hub
// и на другие экземпляры через PubSubProvider.
type Notifier struct {
	hub        *Hub
	provider   PubSubProvider
	channel    string
	instanceID string
}

// NewNotifier создает доставщик событий. nil provider означает одиночный режим.
func NewNotifier(hub *Hub, provider PubSubProvider, channel string) *Notifier {
	if provider == nil {
		provider = &NoOpPubSub{}
	}
	if channel == "" {
		channel = DefaultNotificationChannel
	}
	return &Notifier{
		hub:        hub,
		provider:   provider,
		channel:    channel,
		instanceID: uuid.New().String(),
	}
}

// InstanceID возвращает идентификатор этого экземпляра
func (n *Notifier) InstanceID() string {
	return n.instanceID
}

// SendEventToUser отправляет событие во все соединения пользователя во всем кластере
func (n *Notifier) SendEventToUser(ctx context.Context, userID uint, eventType string, data interface{}) error {
	payload, err := NewEvent(eventType, data)
	if err != nil {
		return err
	}

	n.hub.SendToUser(userID, payload)

	msg, err := json.Marshal(ClusterMessage{
		RecipientID: userID,
		InstanceID:  n.instanceID,
		Payload:     payload,
		Timestamp:   time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return n.provider.Publish(ctx, n.channel, msg)
}

// AchievementsEarned уведомляет пользователя о новых достижениях
func (n *Notifier) AchievementsEarned(ctx context.Context, userID uint, achievements []dto.AchievementDTO) {
	if len(achievements) == 0 {
		return
	}
	data := map[string]interface{}{
		"achievements": achievements,
		"total_new":    len(achievements),
	}
	if err := n.SendEventToUser(ctx, userID, ACHIEVEMENT_EARNED, data); err != nil {
		log.Printf("[Notifier.AchievementsEarned] Ошибка отправки события пользователю ID=%d: %v", userID, err)
	}
}

// Run принимает события других экземпляров до отмены ctx
func (n *Notifier) Run(ctx context.Context) error {
	msgCh, err := n.provider.Subscribe(ctx, n.channel)
	if err != nil {
		return err
	}
	for raw := range msgCh {
		n.handleClusterMessage(raw)
	}
	return nil
}

func (n *Notifier) handleClusterMessage(raw []byte) {
	var msg ClusterMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Printf("[Notifier] Некорректное сообщение кластера: %v", err)
		return
	}
	if msg.InstanceID == n.instanceID || msg.RecipientID == 0 {
		return
	}
	n.hub.metrics.AddClusterReceived()
	n.hub.SendToUser(msg.RecipientID, msg.Payload)
}
