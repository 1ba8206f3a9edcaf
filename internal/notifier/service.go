// Package notifier consumes order lifecycle events and keeps the Redis
// status cache warm, so status polls do not hit the database for orders
// that just moved.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"hotel-system/internal/events"
	kafkax "hotel-system/internal/kafka"
	"hotel-system/internal/redisx"
)

// Store is the notifier's slice of Redis: dedup bookkeeping plus the
// order-status cache.
type Store interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	MarkSeen(ctx context.Context, eventID string) error
	CacheStatus(ctx context.Context, orderID string, body []byte) error
}

type RedisStore struct {
	C *redis.Client
}

func (s *RedisStore) Seen(ctx context.Context, eventID string) (bool, error) {
	return redisx.Exists(ctx, s.C, fmt.Sprintf(redisx.KeyDedup, "notifier", eventID))
}

func (s *RedisStore) MarkSeen(ctx context.Context, eventID string) error {
	return s.C.Set(ctx, fmt.Sprintf(redisx.KeyDedup, "notifier", eventID), "1", redisx.TTLDedup).Err()
}

func (s *RedisStore) CacheStatus(ctx context.Context, orderID string, body []byte) error {
	return s.C.Set(ctx, fmt.Sprintf(redisx.KeyOrderStatus, orderID), body, redisx.TTLStatusCache).Err()
}

type Service struct {
	Store Store
}

// HandleOrderStatusChanged is wired as the consumer handler for the
// order.status.changed topic. The event is marked seen only after the
// cache write lands: a failed write returns the error, the redelivery
// retries the write instead of being dropped by the dedup check.
func (s *Service) HandleOrderStatusChanged(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != events.EventOrderStatusChanged {
		return nil
	}

	if seen, _ := s.Store.Seen(ctx, env.EventID); seen {
		return nil
	}

	p, err := kafkax.UnwrapPayload[events.OrderStatusChangedPayload](env.Payload)
	if err != nil {
		return err
	}

	b, _ := json.Marshal(map[string]any{"status": p.Status})
	if err := s.Store.CacheStatus(ctx, p.OrderID, b); err != nil {
		return err
	}
	if err := s.Store.MarkSeen(ctx, env.EventID); err != nil {
		// redelivery just rewrites the same status; log and move on
		log.Printf("mark event %s seen: %v", env.EventID, err)
	}

	log.Printf("order %s is now %s", p.OrderID, p.Status)
	return nil
}
