package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingGroup(txKey string, seats ...string) []*domain.Booking {
	out := make([]*domain.Booking, 0, len(seats))
	for _, seat := range seats {
		out = append(out, &domain.Booking{
			TransactionKey: txKey,
			ClientID:       1,
			FlightNo:       101,
			SeatNo:         seat,
			Status:         domain.BookingStatusPending,
			ExpiresAt:      time.Now().Add(15 * time.Minute),
		})
	}
	return out
}

func TestMemoryBookingRepository_GroupLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookingRepository()

	group := pendingGroup("tx-1", "1A", "1B")
	require.NoError(t, repo.CreateGroup(ctx, group))
	assert.Equal(t, int64(1), group[0].ID)
	assert.Equal(t, int64(2), group[1].ID)
	assert.False(t, group[0].CreatedAt.IsZero())

	confirmed, err := repo.ConfirmGroup(ctx, "tx-1", "ABC123")
	require.NoError(t, err)
	require.Len(t, confirmed, 2)
	for _, b := range confirmed {
		assert.Equal(t, domain.BookingStatusConfirmed, b.Status)
		assert.Equal(t, "ABC123", b.PNR)
	}

	exists, err := repo.PNRExists(ctx, "ABC123")
	require.NoError(t, err)
	assert.True(t, exists)

	// a confirmed group cannot be confirmed again
	_, err = repo.ConfirmGroup(ctx, "tx-1", "XYZ999")
	assert.Error(t, err)

	cancelled, err := repo.Cancel(ctx, group[0].ID, Cancellation{ChargePercent: 10, ChargeAmount: 50, RefundAmount: 450, Reason: "plans changed"})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, cancelled.Status)
	assert.Equal(t, 450.0, cancelled.RefundAmount)

	_, err = repo.Cancel(ctx, group[0].ID, Cancellation{})
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestMemoryBookingRepository_ConfirmGroupIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookingRepository()
	group := pendingGroup("tx-2", "2A", "2B")
	require.NoError(t, repo.CreateGroup(ctx, group))
	_, err := repo.Cancel(ctx, group[1].ID, Cancellation{Reason: "x"})
	require.NoError(t, err)

	_, err = repo.ConfirmGroup(ctx, "tx-2", "PNR001")
	require.Error(t, err)

	first, err := repo.GetByID(ctx, group[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusPending, first.Status)
	assert.Empty(t, first.PNR)
}

func TestMemoryBookingRepository_RejectsSecondActiveSeat(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookingRepository()
	require.NoError(t, repo.CreateGroup(ctx, pendingGroup("tx-a", "3A")))
	assert.Error(t, repo.CreateGroup(ctx, pendingGroup("tx-b", "3A")))

	cancelled, err := repo.CancelPending(ctx, "tx-a", "payment failed")
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, "payment failed", cancelled[0].CancellationReason)

	assert.NoError(t, repo.CreateGroup(ctx, pendingGroup("tx-b", "3A")))
}

func TestMemoryBookingRepository_Queries(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookingRepository()

	lastMonth := time.Date(2025, 2, 14, 10, 0, 0, 0, time.UTC)
	old := pendingGroup("tx-old", "4A", "4B")
	for _, b := range old {
		b.CreatedAt = lastMonth
	}
	require.NoError(t, repo.CreateGroup(ctx, old))
	_, err := repo.ConfirmGroup(ctx, "tx-old", "OLD001")
	require.NoError(t, err)

	expired := pendingGroup("tx-exp", "5A")
	expired[0].ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, repo.CreateGroup(ctx, expired))

	n, err := repo.CountConfirmedForClient(ctx, 1,
		time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repo.CountConfirmedForClient(ctx, 2,
		time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, n)

	list, err := repo.ListExpiredPending(ctx, time.Now())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "tx-exp", list[0].TransactionKey)

	siblings, err := repo.ListByTransaction(ctx, "tx-old")
	require.NoError(t, err)
	assert.Len(t, siblings, 2)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestMemoryPaymentRepository_LatestWins(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPaymentRepository()

	_, err := repo.LatestByTransaction(ctx, "tx")
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)

	first := &domain.Payment{TransactionKey: "tx", Amount: 100, Status: domain.PaymentStatusFailed}
	second := &domain.Payment{TransactionKey: "tx", Amount: 100, Status: domain.PaymentStatusInitiated}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	latest, err := repo.LatestByTransaction(ctx, "tx")
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	latest.Status = domain.PaymentStatusRefunded
	latest.RefundAmount = 90
	require.NoError(t, repo.Update(ctx, latest))

	again, err := repo.LatestByTransaction(ctx, "tx")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusRefunded, again.Status)
	assert.Equal(t, 90.0, again.RefundAmount)

	assert.ErrorIs(t, repo.Update(ctx, &domain.Payment{ID: 42}), domain.ErrPaymentNotFound)
}

func TestMemoryFlightRepository(t *testing.T) {
	ctx := context.Background()
	dep := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	repo := NewMemoryFlightRepository(
		domain.Flight{FlightNo: 2, DepartureTime: dep.Add(time.Hour)},
		domain.Flight{FlightNo: 1, DepartureTime: dep},
	)

	flights, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, flights, 2)
	assert.Equal(t, int64(1), flights[0].FlightNo)
	assert.Equal(t, domain.FlightStatusOnTime, flights[0].Status)

	require.NoError(t, repo.UpdateStatus(ctx, 1, domain.FlightStatusBoarding))
	f, err := repo.GetByNo(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.FlightStatusBoarding, f.Status)

	_, err = repo.GetByNo(ctx, 3)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, 3, domain.FlightStatusLanded), domain.ErrNotFound)
}

func TestLoadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
airports:
  - code: DEL
    name: Indira Gandhi International
    city: Delhi
    gate_no: G12
clients:
  - id: 7
    fname: Asha
    lname: Rao
    email: asha@example.com
flights:
  - flight_no: 101
    airline: Indigo
    from: DEL
    to: BOM
    airplane_model: A320
    departure_time: 2025-04-01T09:00:00Z
    arrival_time: 2025-04-01T11:10:00Z
    base_fare: 5000
`), 0o600))

	seed, err := LoadSeed(path)
	require.NoError(t, err)

	flights := NewMemoryFlightRepository()
	refs := NewMemoryReferenceRepository()
	require.NoError(t, seed.Apply(flights, refs))

	ctx := context.Background()
	f, err := flights.GetByNo(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, "A320", f.AirplaneModel)
	assert.True(t, f.Scheduled())
	assert.Equal(t, domain.FlightStatusOnTime, f.Status)

	a, err := refs.GetAirport(ctx, "DEL")
	require.NoError(t, err)
	assert.Equal(t, "G12", a.GateNo)

	c, err := refs.GetClient(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", c.FullName())

	_, err = refs.GetClient(ctx, 8)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSeedApply_RejectsUnknownStatus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("flights:\n  - flight_no: 1\n    status: Cruising\n"), 0o600))
	seed, err := LoadSeed(path)
	require.NoError(t, err)
	assert.Error(t, seed.Apply(NewMemoryFlightRepository(), NewMemoryReferenceRepository()))
}
