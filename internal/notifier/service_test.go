package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	kafkago "github.com/segmentio/kafka-go"

	"hotel-system/internal/events"
)

type memStore struct {
	seen     map[string]bool
	statuses map[string]string

	failCache  bool
	cacheCalls int
}

func newMemStore() *memStore {
	return &memStore{seen: map[string]bool{}, statuses: map[string]string{}}
}

func (s *memStore) Seen(ctx context.Context, eventID string) (bool, error) {
	return s.seen[eventID], nil
}

func (s *memStore) MarkSeen(ctx context.Context, eventID string) error {
	s.seen[eventID] = true
	return nil
}

func (s *memStore) CacheStatus(ctx context.Context, orderID string, body []byte) error {
	s.cacheCalls++
	if s.failCache {
		return errors.New("redis down")
	}
	var v struct {
		Status string `json:"status"`
	}
	_ = json.Unmarshal(body, &v)
	s.statuses[orderID] = v.Status
	return nil
}

func statusChangedMsg(t *testing.T, eventID, orderID, status string) kafkago.Message {
	t.Helper()
	payload, _ := json.Marshal(events.OrderStatusChangedPayload{OrderID: orderID, Status: status})
	env := events.Envelope{
		EventID:   eventID,
		EventType: events.EventOrderStatusChanged,
		Payload:   payload,
	}
	b, _ := json.Marshal(env)
	return kafkago.Message{Value: b}
}

func TestHandleCachesStatusAndDedups(t *testing.T) {
	store := newMemStore()
	svc := &Service{Store: store}
	ctx := context.Background()

	m := statusChangedMsg(t, "ev-1", "order-1", "shipped")
	if err := svc.HandleOrderStatusChanged(ctx, m); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if store.statuses["order-1"] != "shipped" {
		t.Fatalf("cached status = %q; want shipped", store.statuses["order-1"])
	}
	if !store.seen["ev-1"] {
		t.Fatal("event not marked seen after success")
	}

	// redelivery of a processed event is a no-op
	if err := svc.HandleOrderStatusChanged(ctx, m); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if store.cacheCalls != 1 {
		t.Fatalf("cache writes = %d; want 1", store.cacheCalls)
	}
}

func TestFailedCacheWriteStaysRetryable(t *testing.T) {
	store := newMemStore()
	svc := &Service{Store: store}
	ctx := context.Background()

	m := statusChangedMsg(t, "ev-1", "order-1", "delivered")

	store.failCache = true
	if err := svc.HandleOrderStatusChanged(ctx, m); err == nil {
		t.Fatal("expected error when the cache write fails")
	}
	if store.seen["ev-1"] {
		t.Fatal("failed event marked seen; redelivery would be dropped")
	}

	// redelivery after the store recovers must apply the update
	store.failCache = false
	if err := svc.HandleOrderStatusChanged(ctx, m); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if store.statuses["order-1"] != "delivered" {
		t.Fatalf("cached status = %q; want delivered", store.statuses["order-1"])
	}
	if !store.seen["ev-1"] {
		t.Fatal("event not marked seen after successful retry")
	}
}

func TestIgnoresOtherEventTypes(t *testing.T) {
	store := newMemStore()
	svc := &Service{Store: store}

	env := events.Envelope{EventID: "ev-9", EventType: events.EventOrderCreated, Payload: json.RawMessage(`{}`)}
	b, _ := json.Marshal(env)
	if err := svc.HandleOrderStatusChanged(context.Background(), kafkago.Message{Value: b}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if store.cacheCalls != 0 || len(store.seen) != 0 {
		t.Fatal("unrelated event touched the store")
	}
}
