// Package repository persists bookings, payments and flight reference data.
// Every entity has a Postgres implementation (pgxpool) and an in-memory one.
package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/airreservation/internal/domain"
)

type BookingRepository interface {
	// CreateGroup inserts every booking of one transaction atomically and
	// fills in IDs and timestamps.
	CreateGroup(ctx context.Context, bookings []*domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByTransaction(ctx context.Context, txKey string) ([]domain.Booking, error)
	// ConfirmGroup flips every sibling from pending to confirmed with pnr.
	// It fails without changes when any sibling is no longer pending.
	ConfirmGroup(ctx context.Context, txKey, pnr string) ([]domain.Booking, error)
	// CancelPending cancels the still-pending siblings and returns them.
	CancelPending(ctx context.Context, txKey, reason string) ([]domain.Booking, error)
	// Cancel cancels one active booking with its charge and refund figures.
	Cancel(ctx context.Context, id int64, c Cancellation) (*domain.Booking, error)
	CountConfirmedForClient(ctx context.Context, clientID int64, from, to time.Time) (int, error)
	ListExpiredPending(ctx context.Context, now time.Time) ([]domain.Booking, error)
	PNRExists(ctx context.Context, pnr string) (bool, error)
}

type Cancellation struct {
	ChargePercent float64
	ChargeAmount  float64
	RefundAmount  float64
	Reason        string
}

type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	// LatestByTransaction returns the most recent payment of a booking group.
	LatestByTransaction(ctx context.Context, txKey string) (*domain.Payment, error)
	// Update writes status and refund fields.
	Update(ctx context.Context, p *domain.Payment) error
}

type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByNo(ctx context.Context, flightNo int64) (*domain.Flight, error)
	UpdateStatus(ctx context.Context, flightNo int64, status domain.FlightStatus) error
}

type ReferenceRepository interface {
	GetAirport(ctx context.Context, code string) (*domain.Airport, error)
	GetClient(ctx context.Context, id int64) (*domain.Client, error)
}
