// Package booking drives a booking group through its lifecycle: creation
// with held seats, payment, reconciliation, cancellation and hold expiry.
package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/inventory"
	"github.com/Domenick1991/airreservation/internal/kafka"
	"github.com/Domenick1991/airreservation/internal/lock"
	"github.com/Domenick1991/airreservation/internal/repository"
	"github.com/sirupsen/logrus"
)

type BookingUseCase interface {
	CreateGroup(ctx context.Context, input CreateGroupInput) (*GroupResult, error)
	GetBooking(ctx context.Context, bookingID int64) (*domain.Booking, error)
	GetGroup(ctx context.Context, bookingID int64) ([]domain.Booking, error)
	PreviewPrice(ctx context.Context, query PriceQuery) (*PriceQuote, error)
	ReconcileOnPaymentSuccess(ctx context.Context, primaryBookingID int64, pnr string) ([]domain.Booking, error)
	ReconcileOnPaymentFailure(ctx context.Context, primaryBookingID int64, reason string) ([]domain.Booking, error)

	InitPayment(ctx context.Context, bookingID int64, amount float64, method string) (*domain.Payment, error)
	ConfirmPayment(ctx context.Context, bookingID int64, success bool) (*ConfirmResult, error)
	PaymentStatus(ctx context.Context, bookingID int64) (*PaymentStatusResult, error)

	CancelBooking(ctx context.Context, bookingID int64, reason string) (*domain.CancellationResult, error)
	PreviewCancellation(ctx context.Context, bookingID int64) (*domain.CancellationResult, error)
	ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error)

	Invoice(ctx context.Context, bookingID int64) (*Invoice, error)
	BoardingPass(ctx context.Context, bookingID int64) (*BoardingPass, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings  repository.BookingRepository
	payments  repository.PaymentRepository
	flights   repository.FlightRepository
	refs      repository.ReferenceRepository
	inventory inventory.Store
	layouts   *inventory.Layouts
	locker    lock.Locker

	producer           Producer
	bookingTopic       string
	notificationsTopic string

	holdTTL        time.Duration
	lockWait       time.Duration
	invoiceBaseURL string
	now            func() time.Time
	newPNR         func() (string, error)
	log            logrus.FieldLogger
}

type BookingServiceOption func(*BookingService)

// WithProducer publishes reservation events to bookingTopic.
func WithProducer(producer Producer, bookingTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = bookingTopic
	}
}

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithLogger(log logrus.FieldLogger) BookingServiceOption {
	return func(s *BookingService) {
		s.log = log
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

// WithLockWait bounds how long an operation waits for a busy transaction.
func WithLockWait(d time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.lockWait = d
	}
}

func WithInvoiceBaseURL(url string) BookingServiceOption {
	return func(s *BookingService) {
		s.invoiceBaseURL = url
	}
}

func WithPNRGenerator(gen func() (string, error)) BookingServiceOption {
	return func(s *BookingService) {
		s.newPNR = gen
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	payments repository.PaymentRepository,
	flights repository.FlightRepository,
	refs repository.ReferenceRepository,
	store inventory.Store,
	layouts *inventory.Layouts,
	locker lock.Locker,
	holdTTL time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:       bookings,
		payments:       payments,
		flights:        flights,
		refs:           refs,
		inventory:      store,
		layouts:        layouts,
		locker:         locker,
		holdTTL:        holdTTL,
		lockWait:       5 * time.Second,
		invoiceBaseURL: "/invoice",
		now:            time.Now,
		newPNR:         randomPNR,
		log:            logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// lockGroup serializes every state change of one booking group.
func (s *BookingService) lockGroup(ctx context.Context, txKey string) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, s.lockWait)
	defer cancel()
	unlock, err := s.locker.Lock(ctx, txKey)
	if err != nil {
		return nil, fmt.Errorf("lock transaction %s: %w", txKey, err)
	}
	return unlock, nil
}

// releaseOwned frees the seats still held or booked by txKey. Seats that
// already moved to another transaction are left alone.
func (s *BookingService) releaseOwned(ctx context.Context, flightNo int64, seatNos []string, txKey string) error {
	states, err := s.inventory.States(ctx, flightNo)
	if err != nil {
		return err
	}
	owned := make([]string, 0, len(seatNos))
	for _, seatNo := range seatNos {
		if st, ok := states[seatNo]; ok && st.Holder == txKey {
			owned = append(owned, seatNo)
		}
	}
	return s.inventory.ReleaseAll(ctx, flightNo, owned)
}

func (s *BookingService) publish(ctx context.Context, eventType kafka.EventType, group []domain.Booking, amount float64, reason string) {
	if s.producer == nil || s.bookingTopic == "" || len(group) == 0 {
		return
	}
	first := group[0]
	event := kafka.ReservationEvent{
		Type:           eventType,
		TransactionKey: first.TransactionKey,
		FlightNo:       first.FlightNo,
		PNR:            first.PNR,
		Status:         string(first.Status),
		Amount:         amount,
		Reason:         reason,
		OccurredAt:     s.now(),
	}
	for _, b := range group {
		event.BookingIDs = append(event.BookingIDs, b.ID)
		event.Seats = append(event.Seats, b.SeatNo)
	}
	if client, err := s.refs.GetClient(ctx, first.ClientID); err == nil {
		event.Email = client.Email
	}

	log := s.log.WithFields(logrus.Fields{"event": eventType, "transaction_key": first.TransactionKey})
	if err := s.producer.Publish(ctx, s.bookingTopic, first.TransactionKey, event); err != nil {
		log.WithError(err).Warn("failed to publish reservation event")
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, first.TransactionKey, event); err != nil {
			log.WithError(err).Warn("failed to publish notification")
		}
	}
}

func seatNumbers(group []domain.Booking) []string {
	out := make([]string, len(group))
	for i, b := range group {
		out[i] = b.SeatNo
	}
	return out
}

var _ BookingUseCase = (*BookingService)(nil)
