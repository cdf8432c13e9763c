package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
)

// hubOp — операция регистрации или удаления клиента
type hubOp struct {
	client   *Client
	register bool
}

// Hub хранит соединения пользователей и доставляет им события.
// Регистрация и удаление идут через один канал, поэтому Run видит их в порядке вызова.
type Hub struct {
	ops chan hubOp

	mu      sync.RWMutex
	clients map[uint]map[*Client]struct{}

	metrics *HubMetrics
	done    chan struct{}
}

// NewHub создает хаб. Run должен быть запущен отдельно.
func NewHub() *Hub {
	return &Hub{
		ops:     make(chan hubOp, 128),
		clients: make(map[uint]map[*Client]struct{}),
		metrics: NewHubMetrics(),
		done:    make(chan struct{}),
	}
}

// Run обрабатывает регистрацию клиентов до отмены ctx
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case op := <-h.ops:
			if op.register {
				h.handleRegister(op.client)
			} else {
				h.handleUnregister(op.client)
			}
		case <-ctx.Done():
			h.closeAll()
			log.Println("[Hub] Stopped")
			return
		}
	}
}

// Done закрывается после остановки Run
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Register ставит клиента в очередь на регистрацию.
// После остановки хаба очередь клиента сразу закрывается.
func (h *Hub) Register(client *Client) {
	select {
	case h.ops <- hubOp{client: client, register: true}:
	case <-h.done:
		client.CloseSend()
	}
}

// Unregister ставит клиента в очередь на удаление
func (h *Hub) Unregister(client *Client) {
	select {
	case h.ops <- hubOp{client: client}:
	case <-h.done:
	}
}

func (h *Hub) handleRegister(client *Client) {
	// Клиент уже закрыт (например, удален как медленный), в карту он не попадает
	if client.sendClosed.Load() {
		return
	}
	h.mu.Lock()
	conns, ok := h.clients[client.UserID]
	if !ok {
		conns = make(map[*Client]struct{})
		h.clients[client.UserID] = conns
	}
	conns[client] = struct{}{}
	h.mu.Unlock()

	h.metrics.IncrementTotalConnections()
	log.Printf("[Hub] Client registered UserID=%d ConnID=%s", client.UserID, client.ConnectionID)
}

func (h *Hub) handleUnregister(client *Client) {
	if h.remove(client) {
		log.Printf("[Hub] Client unregistered UserID=%d ConnID=%s", client.UserID, client.ConnectionID)
	}
}

// remove удаляет клиента и закрывает его очередь; false, если клиент уже удален
func (h *Hub) remove(client *Client) bool {
	h.mu.Lock()
	conns, ok := h.clients[client.UserID]
	if ok {
		if _, found := conns[client]; found {
			delete(conns, client)
			if len(conns) == 0 {
				delete(h.clients, client.UserID)
			}
		} else {
			ok = false
		}
	}
	h.mu.Unlock()

	if !ok {
		return false
	}
	client.CloseSend()
	h.metrics.DecrementActiveConnections()
	return true
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	all := make([]*Client, 0)
	for _, conns := range h.clients {
		for c := range conns {
			all = append(all, c)
		}
	}
	h.clients = make(map[uint]map[*Client]struct{})
	h.mu.Unlock()

	for _, c := range all {
		c.CloseSend()
		h.metrics.DecrementActiveConnections()
	}
}

// SendToUser отправляет сообщение во все соединения пользователя на этом экземпляре.
// Возвращает количество соединений, получивших сообщение.
func (h *Hub) SendToUser(userID uint, message []byte) int {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, client := range targets {
		if client.enqueue(message) {
			h.metrics.AddMessageSent()
			delivered++
			continue
		}

		h.metrics.AddMessageDropped()
		warnings := client.bufferWarnings.Add(1)
		log.Printf("[Hub] Client buffer full UserID=%d ConnID=%s warnings=%d/%d",
			userID, client.ConnectionID, warnings, maxBufferWarnings)
		if warnings >= maxBufferWarnings {
			// Медленный клиент отключается, чтобы не копить сообщения
			if h.remove(client) && client.conn != nil {
				client.conn.Close()
			}
		}
	}
	return delivered
}

// ClientCount возвращает количество активных соединений
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, conns := range h.clients {
		n += len(conns)
	}
	return n
}

// UserCount возвращает количество подключенных пользователей
func (h *Hub) UserCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetMetrics возвращает метрики хаба
func (h *Hub) GetMetrics() map[string]interface{} {
	m := h.metrics.Snapshot()
	m["connected_users"] = h.UserCount()
	return m
}

// handleMessage обрабатывает входящее сообщение клиента. Поддерживается только ping.
func (h *Hub) handleMessage(message []byte, client *Client) error {
	if len(message) == 0 {
		return nil
	}
	var msg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(message, &msg); err != nil {
		// Некорректный JSON не разрывает соединение
		return nil
	}
	if msg.Type == "ping" {
		pong, err := NewEvent(PONG, nil)
		if err != nil {
			return err
		}
		client.enqueue(pong)
	}
	return nil
}
