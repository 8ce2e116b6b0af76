package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"athani_mart/internal/models"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss is returned when a requested key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

type Client struct {
	rdb *redis.Client
}

// OrderEvent is the payload published on a viewer's order-event channel.
// The sync controller treats it purely as an invalidation trigger.
type OrderEvent struct {
	OrderID string             `json:"order_id"`
	Status  models.OrderStatus `json:"status"`
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Cart persistence mirror

func (c *Client) SaveLines(sessionKey string, lines []models.CartLine) error {
	ctx := context.Background()
	if len(lines) == 0 {
		return c.rdb.Del(ctx, "cart:"+sessionKey).Err()
	}
	jsonData, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to marshal cart lines: %w", err)
	}
	return c.rdb.Set(ctx, "cart:"+sessionKey, jsonData, 0).Err()
}

func (c *Client) LoadLines(sessionKey string) ([]models.CartLine, error) {
	ctx := context.Background()
	val, err := c.rdb.Get(ctx, "cart:"+sessionKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get cart lines: %w", err)
	}

	var lines []models.CartLine
	if err := json.Unmarshal([]byte(val), &lines); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart lines: %w", err)
	}
	return lines, nil
}

func (c *Client) ClearLines(sessionKey string) error {
	ctx := context.Background()
	return c.rdb.Del(ctx, "cart:"+sessionKey).Err()
}

// Single-order snapshot cache

func (c *Client) SetOrderSnapshot(order *models.OrderSummary, ttl time.Duration) error {
	ctx := context.Background()
	jsonData, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order snapshot: %w", err)
	}
	return c.rdb.Set(ctx, "order:"+order.ID, jsonData, ttl).Err()
}

func (c *Client) GetOrderSnapshot(orderID string) (*models.OrderSummary, error) {
	ctx := context.Background()
	val, err := c.rdb.Get(ctx, "order:"+orderID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get order snapshot: %w", err)
	}

	var order models.OrderSummary
	if err := json.Unmarshal([]byte(val), &order); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order snapshot: %w", err)
	}
	return &order, nil
}

func (c *Client) InvalidateOrder(orderID string) error {
	ctx := context.Background()
	return c.rdb.Del(ctx, "order:"+orderID).Err()
}

// Order list cache, keyed per viewer

func (c *Client) SetOrderList(viewerID string, orders []models.OrderSummary, ttl time.Duration) error {
	ctx := context.Background()
	jsonData, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("failed to marshal order list: %w", err)
	}
	return c.rdb.Set(ctx, "orders:list:"+viewerID, jsonData, ttl).Err()
}

func (c *Client) GetOrderList(viewerID string) ([]models.OrderSummary, error) {
	ctx := context.Background()
	val, err := c.rdb.Get(ctx, "orders:list:"+viewerID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get order list: %w", err)
	}

	var orders []models.OrderSummary
	if err := json.Unmarshal([]byte(val), &orders); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order list: %w", err)
	}
	return orders, nil
}

func (c *Client) InvalidateOrderList(viewerID string) error {
	ctx := context.Background()
	return c.rdb.Del(ctx, "orders:list:"+viewerID).Err()
}

// Order event pub/sub

func eventChannel(viewerID string) string {
	return "orders:events:" + viewerID
}

func (c *Client) PublishOrderEvent(viewerID string, event OrderEvent) error {
	ctx := context.Background()
	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}
	return c.rdb.Publish(ctx, eventChannel(viewerID), jsonData).Err()
}

// SubscribeOrderEvents opens a pub/sub subscription for one viewer and
// delivers events as discrete messages. The returned cancel func closes the
// subscription and is safe to call more than once.
func (c *Client) SubscribeOrderEvents(ctx context.Context, viewerID string) (<-chan OrderEvent, func(), error) {
	sub := c.rdb.Subscribe(ctx, eventChannel(viewerID))

	// Confirm the subscription before handing out the channel
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to order events: %w", err)
	}

	events := make(chan OrderEvent)
	done := make(chan struct{})

	go func() {
		defer close(events)
		ch := sub.Channel()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event OrderEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("Dropping malformed order event: %v", err)
					continue
				}
				select {
				case events <- event:
				case <-done:
					return
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			sub.Close()
		})
	}
	return events, cancel, nil
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
