package booking

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/kafka"
	"github.com/sirupsen/logrus"
)

const holdExpiredReason = "hold expired"

func holdExpired(b domain.Booking, now time.Time) bool {
	return !b.ExpiresAt.IsZero() && !now.Before(b.ExpiresAt)
}

// ExpirePendingBookings cancels every pending group whose hold deadline has
// passed and returns the bookings it cancelled. A group that fails is logged
// and left for the next sweep.
func (s *BookingService) ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error) {
	expired, err := s.bookings.ListExpiredPending(ctx, s.now())
	if err != nil {
		return nil, err
	}

	groups := make(map[string]int64)
	var order []string
	for _, b := range expired {
		if _, ok := groups[b.TransactionKey]; !ok {
			groups[b.TransactionKey] = b.FlightNo
			order = append(order, b.TransactionKey)
		}
	}

	var out []domain.Booking
	for _, txKey := range order {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		cancelled, err := s.expireGroup(ctx, txKey, groups[txKey])
		if err != nil {
			s.log.WithError(err).WithField("transaction_key", txKey).Error("failed to expire booking group")
			continue
		}
		out = append(out, cancelled...)
	}
	if len(out) > 0 {
		s.log.WithFields(logrus.Fields{"groups": len(order), "bookings": len(out)}).Info("expired pending bookings")
	}
	return out, nil
}

func (s *BookingService) expireGroup(ctx context.Context, txKey string, flightNo int64) ([]domain.Booking, error) {
	unlock, err := s.lockGroup(ctx, txKey)
	if err != nil {
		return nil, err
	}
	defer unlock()

	payment, err := s.payments.LatestByTransaction(ctx, txKey)
	switch {
	case err == nil:
		if payment.Status == domain.PaymentStatusInitiated {
			payment.Status = domain.PaymentStatusFailed
			if err := s.payments.Update(ctx, payment); err != nil {
				return nil, err
			}
		}
	case !errors.Is(err, domain.ErrPaymentNotFound):
		return nil, err
	}

	cancelled, err := s.failGroup(ctx, txKey, flightNo, holdExpiredReason)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, kafka.EventBookingExpired, cancelled, 0, holdExpiredReason)
	return cancelled, nil
}
