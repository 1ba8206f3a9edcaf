package gifts

import (
	"time"

	"hotel-system/internal/reservation"
)

type Gift struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	PriceCents  int                `json:"price_cents"`
	Image       string             `json:"image,omitempty"`
	Category    string             `json:"category"`
	Description string             `json:"description"`
	Status      reservation.Status `json:"status"`
	ReservedBy  string             `json:"reservedBy,omitempty"`
	ReservedAt  *time.Time         `json:"reservedAt,omitempty"`
	Sold        bool               `json:"sold"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

type Input struct {
	Name        string
	PriceCents  int
	Image       string
	Category    string
	Description string
}
