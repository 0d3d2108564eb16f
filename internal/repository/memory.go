package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/airreservation/internal/domain"
)

// MemoryBookingRepository keeps bookings in process. It backs the memory
// storage driver and the service tests.
type MemoryBookingRepository struct {
	mu       sync.RWMutex
	nextID   int64
	bookings map[int64]*domain.Booking
	now      func() time.Time
}

func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{bookings: make(map[int64]*domain.Booking), now: time.Now}
}

func (r *MemoryBookingRepository) CreateGroup(_ context.Context, bookings []*domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range bookings {
		for _, existing := range r.bookings {
			if existing.FlightNo == b.FlightNo && existing.SeatNo == b.SeatNo && existing.Status.Active() {
				return fmt.Errorf("insert booking seat %s: seat already has an active booking", b.SeatNo)
			}
		}
	}

	now := r.now()
	for _, b := range bookings {
		r.nextID++
		b.ID = r.nextID
		if b.CreatedAt.IsZero() {
			b.CreatedAt = now
		}
		b.UpdatedAt = now
		stored := *b
		r.bookings[b.ID] = &stored
	}
	return nil
}

func (r *MemoryBookingRepository) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	out := *b
	return &out, nil
}

func (r *MemoryBookingRepository) ListByTransaction(_ context.Context, txKey string) ([]domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filter(func(b *domain.Booking) bool { return b.TransactionKey == txKey }), nil
}

func (r *MemoryBookingRepository) ConfirmGroup(_ context.Context, txKey, pnr string) ([]domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	group := r.filterPtr(func(b *domain.Booking) bool { return b.TransactionKey == txKey })
	if len(group) == 0 {
		return nil, fmt.Errorf("confirm group %s: no bookings", txKey)
	}
	for _, b := range group {
		if b.Status != domain.BookingStatusPending {
			return nil, fmt.Errorf("confirm group %s: booking %d is %s", txKey, b.ID, b.Status)
		}
	}
	now := r.now()
	out := make([]domain.Booking, 0, len(group))
	for _, b := range group {
		b.Status = domain.BookingStatusConfirmed
		b.PNR = pnr
		b.UpdatedAt = now
		out = append(out, *b)
	}
	return out, nil
}

func (r *MemoryBookingRepository) CancelPending(_ context.Context, txKey, reason string) ([]domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	out := make([]domain.Booking, 0)
	for _, b := range r.filterPtr(func(b *domain.Booking) bool {
		return b.TransactionKey == txKey && b.Status == domain.BookingStatusPending
	}) {
		b.Status = domain.BookingStatusCancelled
		b.CancellationReason = reason
		b.UpdatedAt = now
		out = append(out, *b)
	}
	return out, nil
}

func (r *MemoryBookingRepository) Cancel(_ context.Context, id int64, c Cancellation) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok || b.Status == domain.BookingStatusCancelled {
		return nil, domain.ErrBookingNotFound
	}
	b.Status = domain.BookingStatusCancelled
	b.CancellationChargePercent = c.ChargePercent
	b.CancellationChargeAmount = c.ChargeAmount
	b.RefundAmount = c.RefundAmount
	b.CancellationReason = c.Reason
	b.UpdatedAt = r.now()
	out := *b
	return &out, nil
}

func (r *MemoryBookingRepository) CountConfirmedForClient(_ context.Context, clientID int64, from, to time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.filter(func(b *domain.Booking) bool {
		return b.ClientID == clientID && b.Status == domain.BookingStatusConfirmed &&
			!b.CreatedAt.Before(from) && b.CreatedAt.Before(to)
	})), nil
}

func (r *MemoryBookingRepository) ListExpiredPending(_ context.Context, now time.Time) ([]domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filter(func(b *domain.Booking) bool {
		return b.Status == domain.BookingStatusPending && !b.ExpiresAt.After(now)
	}), nil
}

func (r *MemoryBookingRepository) PNRExists(_ context.Context, pnr string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.filter(func(b *domain.Booking) bool { return b.PNR == pnr })) > 0, nil
}

// filterPtr returns matching bookings ordered by ID. Callers hold r.mu.
func (r *MemoryBookingRepository) filterPtr(match func(*domain.Booking) bool) []*domain.Booking {
	out := make([]*domain.Booking, 0)
	for _, b := range r.bookings {
		if match(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *MemoryBookingRepository) filter(match func(*domain.Booking) bool) []domain.Booking {
	ptrs := r.filterPtr(match)
	out := make([]domain.Booking, len(ptrs))
	for i, b := range ptrs {
		out[i] = *b
	}
	return out
}

type MemoryPaymentRepository struct {
	mu       sync.RWMutex
	nextID   int64
	payments map[int64]*domain.Payment
	now      func() time.Time
}

func NewMemoryPaymentRepository() *MemoryPaymentRepository {
	return &MemoryPaymentRepository{payments: make(map[int64]*domain.Payment), now: time.Now}
}

func (r *MemoryPaymentRepository) Create(_ context.Context, p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = r.now()
	p.UpdatedAt = p.CreatedAt
	stored := *p
	r.payments[p.ID] = &stored
	return nil
}

func (r *MemoryPaymentRepository) LatestByTransaction(_ context.Context, txKey string) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *domain.Payment
	for _, p := range r.payments {
		if p.TransactionKey == txKey && (latest == nil || p.ID > latest.ID) {
			latest = p
		}
	}
	if latest == nil {
		return nil, domain.ErrPaymentNotFound
	}
	out := *latest
	return &out, nil
}

func (r *MemoryPaymentRepository) Update(_ context.Context, p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.payments[p.ID]
	if !ok {
		return domain.ErrPaymentNotFound
	}
	p.UpdatedAt = r.now()
	stored.Status = p.Status
	stored.RefundAmount = p.RefundAmount
	stored.RefundEtaDays = p.RefundEtaDays
	stored.UpdatedAt = p.UpdatedAt
	return nil
}

type MemoryFlightRepository struct {
	mu      sync.RWMutex
	flights map[int64]domain.Flight
}

func NewMemoryFlightRepository(flights ...domain.Flight) *MemoryFlightRepository {
	r := &MemoryFlightRepository{flights: make(map[int64]domain.Flight)}
	for _, f := range flights {
		r.Put(f)
	}
	return r
}

// Put inserts or replaces a flight.
func (r *MemoryFlightRepository) Put(f domain.Flight) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f.Status == "" {
		f.Status = domain.FlightStatusOnTime
	}
	r.flights[f.FlightNo] = f
}

func (r *MemoryFlightRepository) List(_ context.Context) ([]domain.Flight, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Flight, 0, len(r.flights))
	for _, f := range r.flights {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DepartureTime.Equal(out[j].DepartureTime) {
			return out[i].DepartureTime.Before(out[j].DepartureTime)
		}
		return out[i].FlightNo < out[j].FlightNo
	})
	return out, nil
}

func (r *MemoryFlightRepository) GetByNo(_ context.Context, flightNo int64) (*domain.Flight, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.flights[flightNo]
	if !ok {
		return nil, domain.NotFound("flight %d not found", flightNo)
	}
	return &f, nil
}

func (r *MemoryFlightRepository) UpdateStatus(_ context.Context, flightNo int64, status domain.FlightStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.flights[flightNo]
	if !ok {
		return domain.NotFound("flight %d not found", flightNo)
	}
	f.Status = status
	f.UpdatedAt = time.Now()
	r.flights[flightNo] = f
	return nil
}

type MemoryReferenceRepository struct {
	mu       sync.RWMutex
	airports map[string]domain.Airport
	clients  map[int64]domain.Client
}

func NewMemoryReferenceRepository() *MemoryReferenceRepository {
	return &MemoryReferenceRepository{
		airports: make(map[string]domain.Airport),
		clients:  make(map[int64]domain.Client),
	}
}

func (r *MemoryReferenceRepository) PutAirport(a domain.Airport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.airports[a.Code] = a
}

func (r *MemoryReferenceRepository) PutClient(c domain.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.ID] = c
}

func (r *MemoryReferenceRepository) GetAirport(_ context.Context, code string) (*domain.Airport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.airports[code]
	if !ok {
		return nil, domain.NotFound("airport %s not found", code)
	}
	return &a, nil
}

func (r *MemoryReferenceRepository) GetClient(_ context.Context, id int64) (*domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[id]
	if !ok {
		return nil, domain.NotFound("client %d not found", id)
	}
	return &c, nil
}

var (
	_ BookingRepository   = (*MemoryBookingRepository)(nil)
	_ PaymentRepository   = (*MemoryPaymentRepository)(nil)
	_ FlightRepository    = (*MemoryFlightRepository)(nil)
	_ ReferenceRepository = (*MemoryReferenceRepository)(nil)
)
