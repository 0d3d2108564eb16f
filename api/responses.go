package api

import (
	"time"

	"github.com/Domenick1991/airreservation/internal/domain"
)

type bookingResponse struct {
	BookingID                 int64     `json:"booking_id"`
	TransactionKey            string    `json:"transaction_key"`
	ClientID                  int64     `json:"client_id"`
	FlightNo                  int64     `json:"flight_no"`
	AirportCode               string    `json:"airport_code"`
	SeatNo                    string    `json:"seat_no"`
	SeatClass                 string    `json:"seat_class"`
	PassengerName             string    `json:"passenger_name"`
	PassengerAge              int       `json:"passenger_age"`
	Fares                     float64   `json:"fares"`
	ShareAmount               float64   `json:"share_amount"`
	FinalTotal                float64   `json:"final_total"`
	Status                    string    `json:"booking_status"`
	PNR                       string    `json:"pnr,omitempty"`
	CancellationChargePercent float64   `json:"cancellation_charge_percent,omitempty"`
	CancellationChargeAmount  float64   `json:"cancellation_charge_amount,omitempty"`
	RefundAmount              float64   `json:"refund_amount,omitempty"`
	CancellationReason        string    `json:"cancellation_reason,omitempty"`
	ExpiresAt                 string    `json:"expires_at"`
	CreatedAt                 time.Time `json:"created_at"`
}

func toBookingResponse(b domain.Booking) bookingResponse {
	return bookingResponse{
		BookingID:                 b.ID,
		TransactionKey:            b.TransactionKey,
		ClientID:                  b.ClientID,
		FlightNo:                  b.FlightNo,
		AirportCode:               b.AirportCode,
		SeatNo:                    b.SeatNo,
		SeatClass:                 string(b.SeatClass),
		PassengerName:             b.PassengerName,
		PassengerAge:              b.PassengerAge,
		Fares:                     b.FarePerSeat,
		ShareAmount:               b.ShareAmount,
		FinalTotal:                b.FinalTotal,
		Status:                    string(b.Status),
		PNR:                       b.PNR,
		CancellationChargePercent: b.CancellationChargePercent,
		CancellationChargeAmount:  b.CancellationChargeAmount,
		RefundAmount:              b.RefundAmount,
		CancellationReason:        b.CancellationReason,
		ExpiresAt:                 b.ExpiresAt.Format(time.RFC3339),
		CreatedAt:                 b.CreatedAt,
	}
}

func toBookingResponses(group []domain.Booking) []bookingResponse {
	out := make([]bookingResponse, len(group))
	for i, b := range group {
		out[i] = toBookingResponse(b)
	}
	return out
}

type paymentResponse struct {
	PaymentID      int64     `json:"payment_id"`
	BookingID      int64     `json:"booking_id"`
	TransactionKey string    `json:"transaction_key"`
	Amount         float64   `json:"amount"`
	Method         string    `json:"method"`
	TransactionRef string    `json:"transaction_id"`
	Status         string    `json:"payment_status"`
	RefundAmount   float64   `json:"refund_amount,omitempty"`
	RefundEtaDays  int       `json:"refund_eta_days,omitempty"`
	CreatedAt      time.Time `json:"timestamp"`
}

func toPaymentResponse(p *domain.Payment) *paymentResponse {
	if p == nil {
		return nil
	}
	return &paymentResponse{
		PaymentID:      p.ID,
		BookingID:      p.BookingID,
		TransactionKey: p.TransactionKey,
		Amount:         p.Amount,
		Method:         string(p.Method),
		TransactionRef: p.TransactionRef,
		Status:         string(p.Status),
		RefundAmount:   p.RefundAmount,
		RefundEtaDays:  p.RefundEtaDays,
		CreatedAt:      p.CreatedAt,
	}
}

type cancellationResponse struct {
	Booking              *bookingResponse           `json:"booking"`
	Charges              domain.CancellationCharges `json:"cancellationCharges"`
	HoursBeforeDeparture float64                    `json:"hoursBeforeDeparture"`
	BeforeDeparture      bool                       `json:"beforeDeparture"`
	Refund               *domain.Refund             `json:"refund"`
}

func toCancellationResponse(r *domain.CancellationResult) cancellationResponse {
	out := cancellationResponse{
		Charges:              r.Charges,
		HoursBeforeDeparture: r.HoursBeforeDeparture,
		BeforeDeparture:      r.BeforeDeparture,
		Refund:               r.Refund,
	}
	if r.Booking != nil {
		b := toBookingResponse(*r.Booking)
		out.Booking = &b
	}
	return out
}
