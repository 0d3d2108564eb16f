package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/airreservation/internal/kafka"
	"github.com/sirupsen/logrus"
)

// Sender turns reservation events into customer notifications. Delivery is
// simulated: the rendered message is logged.
type Sender struct {
	log logrus.FieldLogger
}

func NewSender(log logrus.FieldLogger) *Sender {
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.ReservationEvent) error {
	if event.Email == "" {
		s.log.WithField("transaction_key", event.TransactionKey).Debug("no recipient, notification skipped")
		return nil
	}
	s.log.WithFields(logrus.Fields{
		"to":              event.Email,
		"type":            event.Type,
		"transaction_key": event.TransactionKey,
		"flight_no":       event.FlightNo,
	}).Info(Subject(event))
	return nil
}

// Subject renders the notification subject line.
func Subject(event kafka.ReservationEvent) string {
	switch event.Type {
	case kafka.EventBookingCreated:
		return fmt.Sprintf("Seats %v on flight %d are held for you", event.Seats, event.FlightNo)
	case kafka.EventBookingConfirmed:
		return fmt.Sprintf("Booking confirmed, PNR %s", event.PNR)
	case kafka.EventBookingCancelled:
		return fmt.Sprintf("Booking on flight %d cancelled, refund %.2f", event.FlightNo, event.Amount)
	case kafka.EventBookingExpired:
		return fmt.Sprintf("Your hold on flight %d expired", event.FlightNo)
	case kafka.EventPaymentFailed:
		return fmt.Sprintf("Payment for flight %d failed", event.FlightNo)
	default:
		return fmt.Sprintf("Update on your booking for flight %d", event.FlightNo)
	}
}
