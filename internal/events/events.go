// Package events defines the lifecycle events published to Kafka. Events
// are notifications after the fact: the conditional write in the store is
// the source of truth, consumers only react to outcomes.
package events

import (
	"encoding/json"
	"time"
)

const (
	EventGiftReserved       = "GiftReserved"
	EventGiftReleased       = "GiftReleased"
	EventGiftPurchased      = "GiftPurchased"
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type GiftLifecyclePayload struct {
	GiftID   string `json:"gift_id"`
	Status   string `json:"status"`
	Claimant string `json:"claimant,omitempty"`
}

type OrderCreatedPayload struct {
	OrderID    string `json:"order_id"`
	Kind       string `json:"kind"`
	User       string `json:"user,omitempty"`
	TotalCents int    `json:"total_cents"`
}

type OrderStatusChangedPayload struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}
