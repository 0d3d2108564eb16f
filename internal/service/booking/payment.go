package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/kafka"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ConfirmResult struct {
	Booking    *domain.Booking
	Bookings   []domain.Booking
	Payment    *domain.Payment
	InvoiceURL string
}

type PaymentStatusResult struct {
	BookingID     int64
	BookingStatus domain.BookingStatus
	PNR           string
	LatestPayment *domain.Payment
}

// InitPayment opens a payment for the whole group of bookingID.
func (s *BookingService) InitPayment(ctx context.Context, bookingID int64, amount float64, method string) (*domain.Payment, error) {
	if amount <= 0 {
		return nil, domain.InvalidInput("amount must be greater than 0")
	}
	m, ok := domain.ParsePaymentMethod(method)
	if !ok {
		return nil, domain.InvalidInput("unknown payment method %q", method)
	}

	primary, err := s.bookings.GetByID(ctx, bookingID)
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
	for _, b := range group {
		if b.Status != domain.BookingStatusPending {
			return nil, domain.InvalidInput("booking %d is %s, payment can only start for pending bookings", b.ID, b.Status)
		}
	}

	payment := &domain.Payment{
		BookingID:      bookingID,
		TransactionKey: primary.TransactionKey,
		Amount:         amount,
		Method:         m,
		TransactionRef: "TXN-" + uuid.NewString(),
		Status:         domain.PaymentStatusInitiated,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"transaction_key": primary.TransactionKey,
		"payment_id":      payment.ID,
		"method":          m,
	}).Info("payment initiated")
	return payment, nil
}

// ConfirmPayment settles the latest payment of the group. A payment that is
// already terminal is returned as is.
func (s *BookingService) ConfirmPayment(ctx context.Context, bookingID int64, success bool) (*ConfirmResult, error) {
	primary, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	unlock, err := s.lockGroup(ctx, primary.TransactionKey)
	if err != nil {
		return nil, err
	}
	defer unlock()

	payment, err := s.payments.LatestByTransaction(ctx, primary.TransactionKey)
	if err != nil {
		return nil, err
	}
	if payment.Status.Terminal() {
		return s.confirmResult(ctx, bookingID, payment)
	}

	group, err := s.bookings.ListByTransaction(ctx, primary.TransactionKey)
	if err != nil {
		return nil, err
	}
	log := s.log.WithFields(logrus.Fields{"transaction_key": primary.TransactionKey, "payment_id": payment.ID})

	if !success {
		payment.Status = domain.PaymentStatusFailed
		if err := s.payments.Update(ctx, payment); err != nil {
			return nil, fmt.Errorf("update payment: %w", err)
		}
		cancelled, err := s.failGroup(ctx, primary.TransactionKey, primary.FlightNo, "payment failed")
		if err != nil {
			return nil, err
		}
		log.Info("payment failed, booking group cancelled")
		s.publish(ctx, kafka.EventPaymentFailed, cancelled, payment.Amount, "payment failed")
		return s.confirmResult(ctx, bookingID, payment)
	}

	pnr, err := s.uniquePNR(ctx)
	if err != nil {
		return nil, err
	}
	payment.Status = domain.PaymentStatusSuccess
	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, fmt.Errorf("update payment: %w", err)
	}

	confirmed, err := s.confirmGroup(ctx, group, pnr)
	if err != nil {
		payment.Status = domain.PaymentStatusFailed
		if upErr := s.payments.Update(ctx, payment); upErr != nil {
			log.WithError(upErr).Error("failed to mark payment failed after reconciliation error")
		}
		s.publish(ctx, kafka.EventPaymentFailed, group, payment.Amount, err.Error())
		return nil, err
	}

	log.WithField("pnr", pnr).Info("payment confirmed, booking group reconciled")
	s.publish(ctx, kafka.EventBookingConfirmed, confirmed, payment.Amount, "")
	return s.confirmResult(ctx, bookingID, payment)
}

func (s *BookingService) confirmResult(ctx context.Context, bookingID int64, payment *domain.Payment) (*ConfirmResult, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	group, err := s.bookings.ListByTransaction(ctx, booking.TransactionKey)
	if err != nil {
		return nil, err
	}
	return &ConfirmResult{
		Booking:    booking,
		Bookings:   group,
		Payment:    payment,
		InvoiceURL: fmt.Sprintf("%s/%d", s.invoiceBaseURL, bookingID),
	}, nil
}

func (s *BookingService) PaymentStatus(ctx context.Context, bookingID int64) (*PaymentStatusResult, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	result := &PaymentStatusResult{BookingID: booking.ID, BookingStatus: booking.Status, PNR: booking.PNR}

	payment, err := s.payments.LatestByTransaction(ctx, booking.TransactionKey)
	switch {
	case err == nil:
		result.LatestPayment = payment
	case !errors.Is(err, domain.ErrPaymentNotFound):
		return nil, err
	}
	return result, nil
}
