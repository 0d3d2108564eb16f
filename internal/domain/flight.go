package domain

import "time"

type FlightStatus string

const (
	FlightStatusOnTime   FlightStatus = "On Time"
	FlightStatusDelayed  FlightStatus = "Delayed"
	FlightStatusBoarding FlightStatus = "Boarding"
	FlightStatusDeparted FlightStatus = "Departed"
	FlightStatusLanded   FlightStatus = "Landed"
)

func (s FlightStatus) Valid() bool {
	switch s {
	case FlightStatusOnTime, FlightStatusDelayed, FlightStatusBoarding, FlightStatusDeparted, FlightStatusLanded:
		return true
	default:
		return false
	}
}

// Flight is reference data joined with its schedule and airplane.
// DepartureTime and ArrivalTime are zero when the flight has no schedule.
type Flight struct {
	FlightNo      int64        `json:"flight_no"`
	Airline       string       `json:"airline"`
	FromAirport   string       `json:"from_airport"`
	ToAirport     string       `json:"to_airport"`
	AirplaneID    int64        `json:"airplane_id"`
	AirplaneModel string       `json:"airplane_model"`
	ScheduleID    int64        `json:"schedule_id"`
	DepartureTime time.Time    `json:"departure_time"`
	ArrivalTime   time.Time    `json:"arrival_time"`
	BaseFare      float64      `json:"base_fare"`
	Status        FlightStatus `json:"status"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func (f Flight) Scheduled() bool {
	return !f.DepartureTime.IsZero() && !f.ArrivalTime.IsZero()
}

type Airport struct {
	Code   string `json:"airport_code"`
	Name   string `json:"airport_name"`
	City   string `json:"city"`
	GateNo string `json:"gate_no"`
}

type Client struct {
	ID        int64  `json:"client_id"`
	FirstName string `json:"fname"`
	LastName  string `json:"lname"`
	Email     string `json:"email"`
}

func (c Client) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
