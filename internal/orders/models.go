package orders

import (
	"encoding/json"
	"time"

	"hotel-system/internal/reservation"
)

type Kind string

const (
	KindFood Kind = "food"
	KindGift Kind = "gift"
)

func ValidKind(k Kind) bool { return k == KindFood || k == KindGift }

type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
	Country string `json:"country,omitempty"`
}

// GiftRef is the resolved detail of a referenced gift. Line items reference
// gifts weakly: a nil ref means the gift was deleted after the order was
// placed, which is valid, not an error.
type GiftRef struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int    `json:"price_cents"`
}

type FoodRef struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int    `json:"price_cents"`
}

type Item struct {
	GiftID       string   `json:"gift_id,omitempty"`
	FoodID       string   `json:"food_id,omitempty"`
	Quantity     int      `json:"quantity"`
	GiftType     string   `json:"giftType,omitempty"` // individual | group
	GroupSize    int      `json:"groupSize,omitempty"`
	Contributors []string `json:"contributors,omitempty"`

	Gift *GiftRef `json:"gift,omitempty"`
	Food *FoodRef `json:"food,omitempty"`
}

type Order struct {
	ID     string `json:"id"`
	Kind   Kind   `json:"orderType"`
	Status Status `json:"status"`

	// User is the canonical payer identity string, empty for rows without
	// one. Payer carries the tagged representation for reconciliation.
	User  string               `json:"user,omitempty"`
	Payer reservation.Identity `json:"-"`

	Items      []Item `json:"items"`
	TotalCents int    `json:"totalAmount"`

	PaymentMethod   string   `json:"paymentMethod,omitempty"`
	CardLast4       string   `json:"cardLast4,omitempty"`
	CardBrand       string   `json:"cardBrand,omitempty"`
	DeliveryAddress *Address `json:"deliveryAddress,omitempty"`

	// food order fields
	TableNo         *int            `json:"tableNo,omitempty"`
	CustomerName    string          `json:"customerName,omitempty"`
	ContactNumber   string          `json:"contactNumber,omitempty"`
	Email           string          `json:"email,omitempty"`
	CartItems       json.RawMessage `json:"cartItems,omitempty"`
	SubTotalCents   int             `json:"subTotal,omitempty"`
	TaxCents        int             `json:"tax,omitempty"`
	GrandTotalCents int             `json:"grandTotal,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
