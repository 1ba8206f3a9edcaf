package rooms

import (
	"time"

	"hotel-system/internal/reservation"
)

var roomTypes = map[string]bool{
	"Single": true, "Double": true, "VIP": true, "King": true, "Flex": true,
}

var bedTypes = map[string]bool{
	"Single Bed": true, "Double Bed": true,
}

func ValidRoomType(t string) bool { return roomTypes[t] }
func ValidBedType(t string) bool  { return bedTypes[t] }

type Room struct {
	ID         string             `json:"id"`
	RoomType   string             `json:"roomType"`
	PriceCents int                `json:"price_cents"`
	RoomNumber int                `json:"roomNumber"`
	Facilities string             `json:"facilities"`
	BedType    string             `json:"bedType"`
	Status     reservation.Status `json:"status"`
	ReservedBy string             `json:"reservedBy,omitempty"`
	ReservedAt *time.Time         `json:"reservedAt,omitempty"`
	Images     []string           `json:"images"`
	CreatedAt  time.Time          `json:"createdAt"`
}

type Input struct {
	RoomType   string
	PriceCents int
	RoomNumber int
	Facilities string
	BedType    string
}
