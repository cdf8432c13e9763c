package websocket

import (
	"bytes"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Время, которое разрешено писать сообщение клиенту.
	writeWait = 10 * time.Second

	// Время, которое разрешено клиенту читать следующее сообщение.
	pongWait = 60 * time.Second

	// Периодичность отправки ping-сообщений клиенту.
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер входящего сообщения. Клиент присылает только ping.
	maxMessageSize = 512

	// Размер буфера канала исходящих сообщений
	defaultClientBufferSize = 32

	// Максимальное количество переполнений буфера до отключения
	maxBufferWarnings = 3
)

var (
	newline = []byte{'\n'}
	space   = []byte{' '}
)

// Client является посредником между WebSocket соединением и hub.
// У одного пользователя может быть несколько соединений (вкладок).
type Client struct {
	UserID       uint
	ConnectionID string

	hub  *Hub
	conn *websocket.Conn

	// Буферизованный канал для исходящих сообщений
	send chan []byte

	// sendMu защищает отправку в send от одновременного закрытия
	sendMu     sync.Mutex
	sendClosed atomic.Bool

	bufferWarnings atomic.Int32
}

// NewClient создает нового клиента
func NewClient(hub *Hub, conn *websocket.Conn, userID uint) *Client {
	return &Client{
		UserID:       userID,
		ConnectionID: uuid.New().String(),
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, defaultClientBufferSize),
	}
}

// CloseSend безопасно закрывает канал отправки
func (c *Client) CloseSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed.CompareAndSwap(false, true) {
		close(c.send)
	}
}

// enqueue ставит сообщение в очередь клиента без блокировки.
// Возвращает false, если буфер переполнен.
func (c *Client) enqueue(message []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed.Load() {
		return false
	}
	select {
	case c.send <- message:
		c.bufferWarnings.Store(0)
		return true
	default:
		return false
	}
}

// readPump читает сообщения клиента до закрытия соединения
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
		log.Printf("[WS Client] Read pump stopped UserID=%d ConnID=%s", c.UserID, c.ConnectionID)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Printf("[WS Client] Read error UserID=%d ConnID=%s: %v", c.UserID, c.ConnectionID, err)
			}
			return
		}
		c.hub.metrics.AddMessageReceived()

		if err := safeHandleMessage(message, c); err != nil {
			log.Printf("[WS Client] Handler error UserID=%d ConnID=%s: %v. Closing connection.", c.UserID, c.ConnectionID, err)
			return
		}
	}
}

// safeHandleMessage вызывает обработчик хаба с recover
func safeHandleMessage(message []byte, client *Client) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[WS Client] PANIC recovered UserID=%d ConnID=%s: %v\n%s",
				client.UserID, client.ConnectionID, r, string(debug.Stack()))
			err = fmt.Errorf("panic recovered: %v", r)
		}
	}()
	message = bytes.TrimSpace(bytes.Replace(message, newline, space, -1))
	return client.hub.handleMessage(message, client)
}

// writePump отправляет сообщения клиенту из канала send
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				// Хаб закрыл канал
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			if _, err := w.Write(message); err != nil {
				log.Printf("[WS Client] Write error UserID=%d ConnID=%s type=%s: %v",
					c.UserID, c.ConnectionID, messageTypeFromBytes(message), err)
			}
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// StartPumps регистрирует клиента в хабе и запускает горутины чтения и записи
func (c *Client) StartPumps() {
	if c.UserID == 0 {
		log.Printf("[WS Client] client has no UserID, closing")
		c.conn.Close()
		return
	}
	c.hub.Register(c)

	go c.writePump()
	go c.readPump()
}
