package websocket

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/go-redis/redis/v8"
)

// PubSubProvider определяет интерфейс для провайдеров публикации/подписки
type PubSubProvider interface {
	// Publish публикует сообщение в указанный канал
	Publish(ctx context.Context, channel string, message []byte) error

	// Subscribe подписывается на канал; канал сообщений закрывается при отмене ctx
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)

	// Close освобождает ресурсы провайдера
	Close() error
}

// NoOpPubSub используется, когда работает один экземпляр сервера
type NoOpPubSub struct{}

// Publish ничего не делает
func (p *NoOpPubSub) Publish(ctx context.Context, channel string, message []byte) error {
	return nil
}

// Subscribe возвращает канал, который закрывается вместе с ctx
func (p *NoOpPubSub) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	msgCh := make(chan []byte)
	go func() {
		<-ctx.Done()
		close(msgCh)
	}()
	return msgCh, nil
}

// Close ничего не делает
func (p *NoOpPubSub) Close() error {
	return nil
}

// RedisPubSub реализует PubSubProvider поверх Redis Pub/Sub.
// Клиент Redis принадлежит вызывающему и не закрывается в Close.
type RedisPubSub struct {
	client redis.UniversalClient

	mu     sync.Mutex
	subs   map[*redis.PubSub]struct{}
	closed bool
}

// NewRedisPubSub создает провайдер на существующем клиенте
func NewRedisPubSub(client redis.UniversalClient) (*RedisPubSub, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil for RedisPubSub")
	}
	return &RedisPubSub{
		client: client,
		subs:   make(map[*redis.PubSub]struct{}),
	}, nil
}

// Publish публикует сообщение в канал Redis
func (p *RedisPubSub) Publish(ctx context.Context, channel string, message []byte) error {
	if err := p.client.Publish(ctx, channel, message).Err(); err != nil {
		return fmt.Errorf("failed to publish to Redis channel %s: %w", channel, err)
	}
	return nil
}

// Subscribe подписывается на канал Redis и пересылает полезную нагрузку в возвращаемый канал
func (p *RedisPubSub) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, errors.New("redis pubsub is closed")
	}
	p.mu.Unlock()

	pubsub := p.client.Subscribe(ctx, channel)
	// Ждем подтверждения подписки
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to Redis channel %s: %w", channel, err)
	}

	p.mu.Lock()
	p.subs[pubsub] = struct{}{}
	p.mu.Unlock()
	log.Printf("[RedisPubSub] Subscribed to channel '%s'", channel)

	msgCh := make(chan []byte, 100)
	go func() {
		defer func() {
			p.mu.Lock()
			delete(p.subs, pubsub)
			p.mu.Unlock()
			pubsub.Close()
			close(msgCh)
			log.Printf("[RedisPubSub] Unsubscribed from channel '%s'", channel)
		}()

		redisCh := pubsub.Channel()
		for {
			select {
			case msg, ok := <-redisCh:
				if !ok {
					return
				}
				select {
				case msgCh <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return msgCh, nil
}

// Close закрывает активные подписки
func (p *RedisPubSub) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true

	var lastErr error
	for sub := range p.subs {
		if err := sub.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
