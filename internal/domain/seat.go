package domain

import "strings"

type SeatClass string

const (
	SeatClassEconomy  SeatClass = "Economy"
	SeatClassBusiness SeatClass = "Business"
)

// ParseSeatClass accepts any casing of the two cabin classes.
func ParseSeatClass(raw string) (SeatClass, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "economy":
		return SeatClassEconomy, true
	case "business":
		return SeatClassBusiness, true
	default:
		return "", false
	}
}

type SeatStatus string

const (
	SeatStatusAvailable SeatStatus = "available"
	SeatStatusHeld      SeatStatus = "held"
	SeatStatusBooked    SeatStatus = "booked"
)

// SeatState is the live part of a seat owned by the inventory.
// Available seats carry no holder; held and booked seats always do.
type SeatState struct {
	Status SeatStatus `json:"status"`
	Holder string     `json:"holder_transaction_id,omitempty"`
}

// Seat is a seat of a flight's seat map with its live state merged in.
type Seat struct {
	SeatNo string    `json:"seat_no"`
	Class  SeatClass `json:"seat_class"`
	Row    int       `json:"row"`
	Column string    `json:"column"`
	SeatState
}
