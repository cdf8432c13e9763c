package websocket

import (
	"sync"
	"time"
)

// HubMetrics содержит счетчики хаба уведомлений
type HubMetrics struct {
	totalConnections  int64
	activeConnections int64
	messagesSent      int64
	messagesDropped   int64
	messagesReceived  int64
	clusterReceived   int64
	startTime         time.Time

	mu sync.RWMutex
}

// NewHubMetrics создает новый экземпляр метрик
func NewHubMetrics() *HubMetrics {
	return &HubMetrics{startTime: time.Now()}
}

// IncrementTotalConnections увеличивает счетчики подключений
func (m *HubMetrics) IncrementTotalConnections() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalConnections++
	m.activeConnections++
}

// DecrementActiveConnections уменьшает счетчик активных подключений
func (m *HubMetrics) DecrementActiveConnections() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.activeConnections > 0 {
		m.activeConnections--
	}
}

// AddMessageSent учитывает сообщение, поставленное в очередь клиента
func (m *HubMetrics) AddMessageSent() {
	m.mu.Lock()
	m.messagesSent++
	m.mu.Unlock()
}

// AddMessageDropped учитывает сообщение, не поместившееся в буфер
func (m *HubMetrics) AddMessageDropped() {
	m.mu.Lock()
	m.messagesDropped++
	m.mu.Unlock()
}

// AddMessageReceived учитывает сообщение от клиента
func (m *HubMetrics) AddMessageReceived() {
	m.mu.Lock()
	m.messagesReceived++
	m.mu.Unlock()
}

// AddClusterReceived учитывает сообщение, пришедшее от другого экземпляра
func (m *HubMetrics) AddClusterReceived() {
	m.mu.Lock()
	m.clusterReceived++
	m.mu.Unlock()
}

// Snapshot возвращает текущие значения
func (m *HubMetrics) Snapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return map[string]interface{}{
		"total_connections":  m.totalConnections,
		"active_connections": m.activeConnections,
		"messages_sent":      m.messagesSent,
		"messages_dropped":   m.messagesDropped,
		"messages_received":  m.messagesReceived,
		"cluster_received":   m.clusterReceived,
		"uptime_seconds":     int64(time.Since(m.startTime).Seconds()),
	}
}
