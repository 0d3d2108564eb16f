package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookingColumns = `booking_id, transaction_key, client_id, flight_no, airport_code, seat_no, seat_class,
	passenger_name, passenger_age, fare_per_seat, seat_count, base_total,
	quantity_discount_percent, quantity_discount_amount, customer_tier, tier_discount_percent, tier_discount_amount,
	advance_discount_percent, advance_discount_amount, total_discount_amount, final_total, share_amount,
	booking_status, COALESCE(pnr, ''), cancellation_charge_percent, cancellation_charge_amount, refund_amount,
	cancellation_reason, expires_at, created_at, updated_at`

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.ID, &b.TransactionKey, &b.ClientID, &b.FlightNo, &b.AirportCode, &b.SeatNo, &b.SeatClass,
		&b.PassengerName, &b.PassengerAge, &b.FarePerSeat, &b.SeatCount, &b.BaseTotal,
		&b.QuantityDiscountPercent, &b.QuantityDiscountAmount, &b.Tier, &b.TierDiscountPercent, &b.TierDiscountAmount,
		&b.AdvanceDiscountPercent, &b.AdvanceDiscountAmount, &b.TotalDiscountAmount, &b.FinalTotal, &b.ShareAmount,
		&b.Status, &b.PNR, &b.CancellationChargePercent, &b.CancellationChargeAmount, &b.RefundAmount,
		&b.CancellationReason, &b.ExpiresAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	defer rows.Close()
	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) CreateGroup(ctx context.Context, bookings []*domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, b := range bookings {
		if err := tx.QueryRow(ctx, `INSERT INTO booking (transaction_key, client_id, flight_no, airport_code, seat_no, seat_class,
			passenger_name, passenger_age, fare_per_seat, seat_count, base_total,
			quantity_discount_percent, quantity_discount_amount, customer_tier, tier_discount_percent, tier_discount_amount,
			advance_discount_percent, advance_discount_amount, total_discount_amount, final_total, share_amount,
			booking_status, expires_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
			RETURNING booking_id, created_at, updated_at`,
			b.TransactionKey, b.ClientID, b.FlightNo, b.AirportCode, b.SeatNo, b.SeatClass,
			b.PassengerName, b.PassengerAge, b.FarePerSeat, b.SeatCount, b.BaseTotal,
			b.QuantityDiscountPercent, b.QuantityDiscountAmount, b.Tier, b.TierDiscountPercent, b.TierDiscountAmount,
			b.AdvanceDiscountPercent, b.AdvanceDiscountAmount, b.TotalDiscountAmount, b.FinalTotal, b.ShareAmount,
			b.Status, b.ExpiresAt,
		).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return fmt.Errorf("insert booking seat %s: %w", b.SeatNo, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM booking WHERE booking_id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	return b, err
}

func (r *PGBookingRepository) ListByTransaction(ctx context.Context, txKey string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM booking WHERE transaction_key=$1 ORDER BY booking_id`, txKey)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) ConfirmGroup(ctx context.Context, txKey, pnr string) ([]domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var total int
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM booking WHERE transaction_key=$1`, txKey).Scan(&total); err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `UPDATE booking SET booking_status=$1, pnr=$2, updated_at=now()
		WHERE transaction_key=$3 AND booking_status=$4
		RETURNING `+bookingColumns, domain.BookingStatusConfirmed, pnr, txKey, domain.BookingStatusPending)
	if err != nil {
		return nil, err
	}
	confirmed, err := collectBookings(rows)
	if err != nil {
		return nil, err
	}
	if total == 0 || len(confirmed) != total {
		return nil, fmt.Errorf("confirm group %s: %d of %d bookings pending", txKey, len(confirmed), total)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return confirmed, nil
}

func (r *PGBookingRepository) CancelPending(ctx context.Context, txKey, reason string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `UPDATE booking SET booking_status=$1, cancellation_reason=$2, updated_at=now()
		WHERE transaction_key=$3 AND booking_status=$4
		RETURNING `+bookingColumns, domain.BookingStatusCancelled, reason, txKey, domain.BookingStatusPending)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) Cancel(ctx context.Context, id int64, c Cancellation) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `UPDATE booking SET booking_status=$1, cancellation_charge_percent=$2,
		cancellation_charge_amount=$3, refund_amount=$4, cancellation_reason=$5, updated_at=now()
		WHERE booking_id=$6 AND booking_status<>$1
		RETURNING `+bookingColumns,
		domain.BookingStatusCancelled, c.ChargePercent, c.ChargeAmount, c.RefundAmount, c.Reason, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	return b, err
}

func (r *PGBookingRepository) CountConfirmedForClient(ctx context.Context, clientID int64, from, to time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM booking
		WHERE client_id=$1 AND booking_status=$2 AND created_at >= $3 AND created_at < $4`,
		clientID, domain.BookingStatusConfirmed, from, to).Scan(&n)
	return n, err
}

func (r *PGBookingRepository) ListExpiredPending(ctx context.Context, now time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM booking
		WHERE booking_status=$1 AND expires_at <= $2 ORDER BY booking_id`, domain.BookingStatusPending, now)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) PNRExists(ctx context.Context, pnr string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM booking WHERE pnr=$1)`, pnr).Scan(&exists)
	return exists, err
}

var _ BookingRepository = (*PGBookingRepository)(nil)
