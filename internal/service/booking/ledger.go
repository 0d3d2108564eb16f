package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/kafka"
	"github.com/Domenick1991/airreservation/internal/pricing"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type SeatRequest struct {
	SeatNo        string `json:"seat_no"`
	SeatClass     string `json:"seat_class"`
	PassengerName string `json:"passenger_name"`
	PassengerAge  int    `json:"passenger_age"`
}

type CreateGroupInput struct {
	ClientID    int64  `json:"client_id"`
	FlightNo    int64  `json:"flight_no"`
	AirportCode string `json:"airport_code"`
	// BasePricePerSeat falls back to the flight's base fare when zero.
	BasePricePerSeat float64       `json:"basePricePerSeat"`
	Seats            []SeatRequest `json:"seats"`
}

type GroupResult struct {
	TransactionKey string
	Bookings       []domain.Booking
	PriceBreakdown domain.PriceBreakdown
}

type PriceQuery struct {
	BasePricePerSeat float64
	SeatCount        int
	ClientID         int64
	FlightNo         int64
}

type PriceQuote struct {
	PriceBreakdown    domain.PriceBreakdown `json:"priceBreakdown"`
	ClientTier        domain.CustomerTier   `json:"clientTier"`
	BookingsLastMonth int                   `json:"bookingsLastMonth"`
}

func (s *BookingService) CreateGroup(ctx context.Context, input CreateGroupInput) (*GroupResult, error) {
	seats, err := normalizeSeats(input)
	if err != nil {
		return nil, err
	}

	client, err := s.refs.GetClient(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}
	flight, err := s.flights.GetByNo(ctx, input.FlightNo)
	if err != nil {
		return nil, err
	}
	if _, err := s.refs.GetAirport(ctx, input.AirportCode); err != nil {
		return nil, err
	}
	layout, ok := s.layouts.ForModel(flight.AirplaneModel)
	if !ok {
		return nil, domain.NotFound("seat map for airplane model %q not found", flight.AirplaneModel)
	}

	classes := make([]domain.SeatClass, len(seats))
	for i, req := range seats {
		seat, ok := layout.Seat(req.SeatNo)
		if !ok {
			return nil, domain.SeatError(domain.CodeInvalidInput, req.SeatNo, "seat not found in seat map")
		}
		if req.SeatClass != "" {
			requested, ok := domain.ParseSeatClass(req.SeatClass)
			if !ok {
				return nil, domain.SeatError(domain.CodeInvalidInput, req.SeatNo, fmt.Sprintf("unknown seat class %q", req.SeatClass))
			}
			if requested != seat.Class {
				return nil, domain.SeatError(domain.CodeClassMismatch, req.SeatNo,
					fmt.Sprintf("seat belongs to %s class, but %s was requested", seat.Class, requested))
			}
		}
		classes[i] = seat.Class
	}

	basePrice := input.BasePricePerSeat
	if basePrice == 0 {
		basePrice = flight.BaseFare
	}
	history, err := s.bookingsLastMonth(ctx, client.ID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	quote, err := pricing.Quote(pricing.Input{
		BasePricePerSeat:  basePrice,
		SeatCount:         len(seats),
		BookingsLastMonth: history,
		DepartureTime:     departureOf(flight),
	}, now)
	if err != nil {
		return nil, err
	}

	txKey := uuid.NewString()
	seatNos := make([]string, len(seats))
	for i, req := range seats {
		seatNos[i] = req.SeatNo
	}
	if err := s.inventory.HoldAll(ctx, flight.FlightNo, seatNos, txKey); err != nil {
		return nil, err
	}

	shares := splitShares(quote.FinalTotal, len(seats))
	group := make([]*domain.Booking, len(seats))
	for i, req := range seats {
		name := req.PassengerName
		if name == "" {
			name = client.FullName()
		}
		b := &domain.Booking{
			TransactionKey: txKey,
			ClientID:       client.ID,
			FlightNo:       flight.FlightNo,
			AirportCode:    input.AirportCode,
			SeatNo:         req.SeatNo,
			SeatClass:      classes[i],
			PassengerName:  name,
			PassengerAge:   req.PassengerAge,
			ShareAmount:    shares[i],
			Status:         domain.BookingStatusPending,
			ExpiresAt:      now.Add(s.holdTTL),
		}
		b.ApplyBreakdown(quote)
		group[i] = b
	}

	if err := s.bookings.CreateGroup(ctx, group); err != nil {
		if relErr := s.inventory.ReleaseAll(ctx, flight.FlightNo, seatNos); relErr != nil {
			s.log.WithError(relErr).WithField("transaction_key", txKey).Error("failed to release seats after insert error")
		}
		return nil, fmt.Errorf("persist booking group: %w", err)
	}

	created := make([]domain.Booking, len(group))
	for i, b := range group {
		created[i] = *b
	}
	s.log.WithFields(logrus.Fields{
		"transaction_key": txKey,
		"flight_no":       flight.FlightNo,
		"seats":           seatNos,
		"final_total":     quote.FinalTotal,
	}).Info("booking group created")
	s.publish(ctx, kafka.EventBookingCreated, created, quote.FinalTotal, "")

	return &GroupResult{TransactionKey: txKey, Bookings: created, PriceBreakdown: quote}, nil
}

func normalizeSeats(input CreateGroupInput) ([]SeatRequest, error) {
	if input.ClientID <= 0 || input.FlightNo <= 0 || strings.TrimSpace(input.AirportCode) == "" {
		return nil, domain.InvalidInput("client_id, flight_no and airport_code are required")
	}
	if len(input.Seats) < pricing.MinSeats || len(input.Seats) > pricing.MaxSeats {
		return nil, domain.InvalidInput("must book between %d and %d seats", pricing.MinSeats, pricing.MaxSeats)
	}
	if input.BasePricePerSeat < 0 {
		return nil, domain.InvalidInput("basePricePerSeat must be greater than 0")
	}

	seen := make(map[string]bool, len(input.Seats))
	out := make([]SeatRequest, len(input.Seats))
	for i, req := range input.Seats {
		req.SeatNo = strings.ToUpper(strings.TrimSpace(req.SeatNo))
		req.PassengerName = strings.TrimSpace(req.PassengerName)
		if req.SeatNo == "" {
			return nil, domain.InvalidInput("seat_no is required")
		}
		if seen[req.SeatNo] {
			return nil, domain.SeatError(domain.CodeInvalidInput, req.SeatNo, "seat requested more than once")
		}
		if req.PassengerAge < 0 {
			return nil, domain.SeatError(domain.CodeInvalidInput, req.SeatNo, "passenger_age must not be negative")
		}
		seen[req.SeatNo] = true
		out[i] = req
	}
	return out, nil
}

// splitShares divides total into n per-seat shares; the last seat absorbs
// the rounding remainder so the shares always add up to total.
func splitShares(total float64, n int) []float64 {
	shares := make([]float64, n)
	share := pricing.Round2(total / float64(n))
	for i := 0; i < n-1; i++ {
		shares[i] = share
	}
	shares[n-1] = pricing.Round2(total - share*float64(n-1))
	return shares
}

func departureOf(flight *domain.Flight) *time.Time {
	if flight == nil || !flight.Scheduled() {
		return nil
	}
	dep := flight.DepartureTime
	return &dep
}

// bookingsLastMonth counts the client's confirmed bookings created during
// the previous calendar month.
func (s *BookingService) bookingsLastMonth(ctx context.Context, clientID int64) (int, error) {
	now := s.now()
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	n, err := s.bookings.CountConfirmedForClient(ctx, clientID, thisMonth.AddDate(0, -1, 0), thisMonth)
	if err != nil {
		return 0, fmt.Errorf("count client bookings: %w", err)
	}
	return n, nil
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, bookingID)
}

func (s *BookingService) GetGroup(ctx context.Context, bookingID int64) ([]domain.Booking, error) {
	primary, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return s.bookings.ListByTransaction(ctx, primary.TransactionKey)
}

func (s *BookingService) PreviewPrice(ctx context.Context, query PriceQuery) (*PriceQuote, error) {
	var departure *time.Time
	if query.FlightNo > 0 {
		flight, err := s.flights.GetByNo(ctx, query.FlightNo)
		switch {
		case err == nil:
			departure = departureOf(flight)
		case !errors.Is(err, domain.ErrNotFound):
			return nil, err
		}
	}

	history := 0
	if query.ClientID > 0 {
		n, err := s.bookingsLastMonth(ctx, query.ClientID)
		if err != nil {
			return nil, err
		}
		history = n
	}

	quote, err := pricing.Quote(pricing.Input{
		BasePricePerSeat:  query.BasePricePerSeat,
		SeatCount:         query.SeatCount,
		BookingsLastMonth: history,
		DepartureTime:     departure,
	}, s.now())
	if err != nil {
		return nil, err
	}
	return &PriceQuote{PriceBreakdown: quote, ClientTier: quote.TierDiscount.Tier, BookingsLastMonth: history}, nil
}

// ReconcileOnPaymentSuccess confirms every sibling of the primary booking with
// pnr. On failure the group is rolled back and a ReconciliationFailure returned.
func (s *BookingService) ReconcileOnPaymentSuccess(ctx context.Context, primaryBookingID int64, pnr string) ([]domain.Booking, error) {
	primary, err := s.bookings.GetByID(ctx, primaryBookingID)
	if err != nil {
		return nil, err
	}
	unlock, err := s.lockGroup(ctx, primary.TransactionKey)
	if err != nil {
		return nil, err
	}
	defer unlock()

	group, err := s.bookings.ListByTransaction(ctx, primary.TransactionKey)
	if err != nil {
		return nil, err
	}
	return s.confirmGroup(ctx, group, pnr)
}

// ReconcileOnPaymentFailure cancels every pending sibling and frees their seats.
func (s *BookingService) ReconcileOnPaymentFailure(ctx context.Context, primaryBookingID int64, reason string) ([]domain.Booking, error) {
	primary, err := s.bookings.GetByID(ctx, primaryBookingID)
	if err != nil {
		return nil, err
	}
	unlock, err := s.lockGroup(ctx, primary.TransactionKey)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return s.failGroup(ctx, primary.TransactionKey, primary.FlightNo, reason)
}

// confirmGroup runs under the group lock.
func (s *BookingService) confirmGroup(ctx context.Context, group []domain.Booking, pnr string) ([]domain.Booking, error) {
	if len(group) == 0 {
		return nil, domain.ReconciliationFailure(domain.ErrBookingNotFound)
	}
	txKey, flightNo := group[0].TransactionKey, group[0].FlightNo

	confirmed, err := s.commitGroup(ctx, group, pnr)
	if err == nil {
		return confirmed, nil
	}

	log := s.log.WithError(err).WithField("transaction_key", txKey)
	log.Warn("reconciliation failed, rolling back group")
	if _, rbErr := s.failGroup(ctx, txKey, flightNo, "reconciliation failed"); rbErr != nil {
		log.WithField("rollback_error", rbErr).Error("rollback after failed reconciliation")
	}
	return nil, domain.ReconciliationFailure(err)
}

func (s *BookingService) commitGroup(ctx context.Context, group []domain.Booking, pnr string) ([]domain.Booking, error) {
	now := s.now()
	for _, b := range group {
		if b.Status != domain.BookingStatusPending {
			return nil, domain.SeatError(domain.CodeInvalidInput, b.SeatNo, fmt.Sprintf("booking %d is %s", b.ID, b.Status))
		}
		if holdExpired(b, now) {
			return nil, domain.SeatError(domain.CodeSeatNotHeld, b.SeatNo, "seat hold expired")
		}
	}

	txKey, flightNo := group[0].TransactionKey, group[0].FlightNo
	seatNos := seatNumbers(group)
	if err := s.inventory.CommitAll(ctx, flightNo, seatNos, txKey); err != nil {
		return nil, err
	}

	confirmed, err := s.bookings.ConfirmGroup(ctx, txKey, pnr)
	if err != nil {
		return nil, fmt.Errorf("confirm bookings: %w", err)
	}
	return confirmed, nil
}

// failGroup runs under the group lock.
func (s *BookingService) failGroup(ctx context.Context, txKey string, flightNo int64, reason string) ([]domain.Booking, error) {
	cancelled, err := s.bookings.CancelPending(ctx, txKey, reason)
	if err != nil {
		return nil, fmt.Errorf("cancel pending bookings: %w", err)
	}
	if len(cancelled) == 0 {
		return cancelled, nil
	}
	if err := s.releaseOwned(ctx, flightNo, seatNumbers(cancelled), txKey); err != nil {
		return cancelled, fmt.Errorf("release seats: %w", err)
	}
	return cancelled, nil
}
