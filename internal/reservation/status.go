package reservation

type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusReserved  Status = "RESERVED"
	StatusPurchased Status = "PURCHASED" // rooms read this as "booked"
)

var validNext = map[Status]map[Status]bool{
	StatusAvailable: {StatusReserved: true},
	StatusReserved:  {StatusAvailable: true, StatusPurchased: true},
	StatusPurchased: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func ValidStatus(s Status) bool {
	_, ok := validNext[s]
	return ok
}
