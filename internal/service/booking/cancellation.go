package booking

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/kafka"
	"github.com/Domenick1991/airreservation/internal/pricing"
	"github.com/Domenick1991/airreservation/internal/repository"
	"github.com/sirupsen/logrus"
)

// delayedRefundEtaDays is the upper bound of the 2-5 day settlement window
// of non-UPI methods.
const delayedRefundEtaDays = 5

// ChargePercent is the share of the booking amount kept on cancellation.
func ChargePercent(hoursBeforeDeparture float64) float64 {
	switch {
	case hoursBeforeDeparture > 48:
		return 10
	case hoursBeforeDeparture > 24:
		return 25
	case hoursBeforeDeparture > 12:
		return 50
	case hoursBeforeDeparture > 0:
		return 75
	default:
		return 100
	}
}

func CalculateCharges(amount, hoursBeforeDeparture float64) domain.CancellationCharges {
	percent := ChargePercent(hoursBeforeDeparture)
	charge := pricing.Round2(amount * percent / 100)
	return domain.CancellationCharges{
		ChargePercent: percent,
		ChargeAmount:  charge,
		RefundAmount:  pricing.Round2(amount - charge),
		BookingAmount: pricing.Round2(amount),
	}
}

// hoursBeforeDeparture is -1 when the flight or its schedule is unknown,
// which charges the full amount. The value is unrounded so charge bands
// switch exactly at their boundaries.
func (s *BookingService) hoursBeforeDeparture(ctx context.Context, flightNo int64) (float64, error) {
	flight, err := s.flights.GetByNo(ctx, flightNo)
	if errors.Is(err, domain.ErrNotFound) {
		return -1, nil
	}
	if err != nil {
		return 0, err
	}
	if !flight.Scheduled() {
		return -1, nil
	}
	return flight.DepartureTime.Sub(s.now()).Hours(), nil
}

// reportedHours rounds hours for display only.
func reportedHours(hours float64) float64 {
	return math.Round(hours*100) / 100
}

func (s *BookingService) PreviewCancellation(ctx context.Context, bookingID int64) (*domain.CancellationResult, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status == domain.BookingStatusCancelled {
		return nil, domain.InvalidInput("booking %d is already cancelled", b.ID)
	}
	hours, err := s.hoursBeforeDeparture(ctx, b.FlightNo)
	if err != nil {
		return nil, err
	}
	return &domain.CancellationResult{
		Booking:              b,
		Charges:              CalculateCharges(b.ShareAmount, hours),
		HoursBeforeDeparture: reportedHours(hours),
		BeforeDeparture:      hours > 0,
	}, nil
}

// CancelBooking cancels a single seat of a group. Cancelling an already
// cancelled booking returns it unchanged.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID int64, reason string) (*domain.CancellationResult, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	unlock, err := s.lockGroup(ctx, b.TransactionKey)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// Re-read under the lock: a confirm or sweep may have run meanwhile.
	b, err = s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status == domain.BookingStatusCancelled {
		return &domain.CancellationResult{
			Booking: b,
			Charges: domain.CancellationCharges{
				ChargePercent: b.CancellationChargePercent,
				ChargeAmount:  b.CancellationChargeAmount,
				RefundAmount:  b.RefundAmount,
				BookingAmount: b.ShareAmount,
			},
		}, nil
	}

	hours, err := s.hoursBeforeDeparture(ctx, b.FlightNo)
	if err != nil {
		return nil, err
	}
	charges := CalculateCharges(b.ShareAmount, hours)
	if reason == "" {
		reason = "cancelled by customer"
	}

	cancelled, err := s.bookings.Cancel(ctx, b.ID, repository.Cancellation{
		ChargePercent: charges.ChargePercent,
		ChargeAmount:  charges.ChargeAmount,
		RefundAmount:  charges.RefundAmount,
		Reason:        reason,
	})
	if err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}
	if err := s.releaseOwned(ctx, b.FlightNo, []string{b.SeatNo}, b.TransactionKey); err != nil {
		return nil, fmt.Errorf("release seat: %w", err)
	}

	result := &domain.CancellationResult{
		Booking:              cancelled,
		Charges:              charges,
		HoursBeforeDeparture: reportedHours(hours),
		BeforeDeparture:      hours > 0,
	}
	if hours > 0 {
		refund, err := s.routeRefund(ctx, b.TransactionKey, charges.RefundAmount)
		if err != nil {
			return nil, err
		}
		result.Refund = refund
	}

	s.log.WithFields(logrus.Fields{
		"booking_id":     b.ID,
		"seat_no":        b.SeatNo,
		"charge_percent": charges.ChargePercent,
		"refund_amount":  charges.RefundAmount,
	}).Info("booking cancelled")
	s.publish(ctx, kafka.EventBookingCancelled, []domain.Booking{*cancelled}, charges.RefundAmount, reason)
	return result, nil
}

// routeRefund books the refund against the group's payment when money was
// captured. Groups that never paid get no refund record. The payment keeps
// its success status while any sibling is still live; partial refunds only
// accumulate in RefundAmount.
func (s *BookingService) routeRefund(ctx context.Context, txKey string, amount float64) (*domain.Refund, error) {
	payment, err := s.payments.LatestByTransaction(ctx, txKey)
	if errors.Is(err, domain.ErrPaymentNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !payment.Status.Paid() {
		return nil, nil
	}

	refund := &domain.Refund{Method: payment.Method, Amount: amount}
	if payment.Method.InstantSettlement() {
		refund.Type = domain.RefundInstant
		refund.Status = domain.PaymentStatusRefunded
	} else {
		refund.Type = domain.RefundDelayed
		refund.Status = domain.PaymentStatusRefundPending
		refund.EtaDays = delayedRefundEtaDays
	}

	group, err := s.bookings.ListByTransaction(ctx, txKey)
	if err != nil {
		return nil, err
	}
	if allCancelled(group) {
		payment.Status = refund.Status
	}
	payment.RefundAmount = pricing.Round2(payment.RefundAmount + amount)
	payment.RefundEtaDays = refund.EtaDays
	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, fmt.Errorf("update payment refund: %w", err)
	}
	return refund, nil
}

func allCancelled(group []domain.Booking) bool {
	for _, b := range group {
		if b.Status != domain.BookingStatusCancelled {
			return false
		}
	}
	return true
}
