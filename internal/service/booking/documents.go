package booking

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/airreservation/internal/domain"
)

const boardingLead = 30 * time.Minute

type InvoicePassenger struct {
	BookingID     int64                `json:"booking_id"`
	SeatNo        string               `json:"seat_no"`
	SeatClass     domain.SeatClass     `json:"seat_class"`
	PassengerName string               `json:"passenger_name"`
	PassengerAge  int                  `json:"passenger_age"`
	Amount        float64              `json:"amount"`
	Status        domain.BookingStatus `json:"booking_status"`
}

// Invoice is the itemised bill of one booking group.
type Invoice struct {
	BookingID      int64                 `json:"booking_id"`
	TransactionKey string                `json:"transaction_key"`
	PNR            string                `json:"pnr,omitempty"`
	ClientName     string                `json:"client_name"`
	Email          string                `json:"email"`
	Flight         domain.Flight         `json:"flight"`
	Passengers     []InvoicePassenger    `json:"passengers"`
	PriceBreakdown domain.PriceBreakdown `json:"priceBreakdown"`
	AmountPaid     float64               `json:"amount_paid"`
	RefundAmount   float64               `json:"refund_amount"`
	Payment        *domain.Payment       `json:"payment,omitempty"`
	IssuedAt       time.Time             `json:"issued_at"`
}

type BoardingPass struct {
	BookingID       int64                `json:"booking_id"`
	PNR             string               `json:"pnr"`
	PassengerName   string               `json:"passenger_name"`
	FlightNo        int64                `json:"flight_no"`
	Airline         string               `json:"airline"`
	FromAirport     string               `json:"from_airport"`
	FromAirportName string               `json:"from_airport_name"`
	FromCity        string               `json:"from_city"`
	ToAirport       string               `json:"to_airport"`
	ToAirportName   string               `json:"to_airport_name"`
	ToCity          string               `json:"to_city"`
	SeatNo          string               `json:"seat_no"`
	SeatClass       domain.SeatClass     `json:"seat_class"`
	Gate            string               `json:"gate"`
	DepartureTime   time.Time            `json:"departure_time"`
	ArrivalTime     time.Time            `json:"arrival_time"`
	BoardingTime    time.Time            `json:"boarding_time"`
	Status          domain.BookingStatus `json:"booking_status"`
}

func (s *BookingService) Invoice(ctx context.Context, bookingID int64) (*Invoice, error) {
	primary, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	group, err := s.bookings.ListByTransaction(ctx, primary.TransactionKey)
	if err != nil {
		return nil, err
	}
	client, err := s.refs.GetClient(ctx, primary.ClientID)
	if err != nil {
		return nil, err
	}
	flight, err := s.flights.GetByNo(ctx, primary.FlightNo)
	if err != nil {
		return nil, err
	}

	inv := &Invoice{
		BookingID:      primary.ID,
		TransactionKey: primary.TransactionKey,
		PNR:            primary.PNR,
		ClientName:     client.FullName(),
		Email:          client.Email,
		Flight:         *flight,
		PriceBreakdown: primary.Breakdown(),
		IssuedAt:       s.now(),
	}
	for _, b := range group {
		inv.Passengers = append(inv.Passengers, InvoicePassenger{
			BookingID:     b.ID,
			SeatNo:        b.SeatNo,
			SeatClass:     b.SeatClass,
			PassengerName: b.PassengerName,
			PassengerAge:  b.PassengerAge,
			Amount:        b.ShareAmount,
			Status:        b.Status,
		})
	}

	payment, err := s.payments.LatestByTransaction(ctx, primary.TransactionKey)
	switch {
	case err == nil:
		inv.Payment = payment
		inv.RefundAmount = payment.RefundAmount
		if payment.Status.Paid() {
			inv.AmountPaid = payment.Amount
		}
	case !errors.Is(err, domain.ErrPaymentNotFound):
		return nil, err
	}
	return inv, nil
}

// BoardingPass is issued for confirmed bookings on scheduled flights only.
func (s *BookingService) BoardingPass(ctx context.Context, bookingID int64) (*BoardingPass, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingStatusConfirmed {
		return nil, domain.InvalidInput("booking %d is %s, boarding pass requires a confirmed booking", b.ID, b.Status)
	}
	flight, err := s.flights.GetByNo(ctx, b.FlightNo)
	if err != nil {
		return nil, err
	}
	if !flight.Scheduled() {
		return nil, domain.NotFound("schedule for flight %d not found", flight.FlightNo)
	}
	gate, err := s.refs.GetAirport(ctx, b.AirportCode)
	if err != nil {
		return nil, err
	}

	pass := &BoardingPass{
		BookingID:     b.ID,
		PNR:           b.PNR,
		PassengerName: b.PassengerName,
		FlightNo:      flight.FlightNo,
		Airline:       flight.Airline,
		FromAirport:   flight.FromAirport,
		ToAirport:     flight.ToAirport,
		SeatNo:        b.SeatNo,
		SeatClass:     b.SeatClass,
		Gate:          gate.GateNo,
		DepartureTime: flight.DepartureTime,
		ArrivalTime:   flight.ArrivalTime,
		BoardingTime:  flight.DepartureTime.Add(-boardingLead),
		Status:        b.Status,
	}
	if from, err := s.refs.GetAirport(ctx, flight.FromAirport); err == nil {
		pass.FromAirportName, pass.FromCity = from.Name, from.City
	}
	if to, err := s.refs.GetAirport(ctx, flight.ToAirport); err == nil {
		pass.ToAirportName, pass.ToCity = to.Name, to.City
	}
	return pass, nil
}
