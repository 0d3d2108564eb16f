package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const paymentColumns = `payment_id, booking_id, transaction_key, amount, method, transaction_ref,
	payment_status, refund_amount, refund_eta_days, created_at, updated_at`

type PGPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) PaymentRepository {
	return &PGPaymentRepository{db: db}
}

func (r *PGPaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	return r.db.QueryRow(ctx, `INSERT INTO payment (booking_id, transaction_key, amount, method, transaction_ref, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING payment_id, created_at, updated_at`,
		p.BookingID, p.TransactionKey, p.Amount, p.Method, p.TransactionRef, p.Status,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *PGPaymentRepository) LatestByTransaction(ctx context.Context, txKey string) (*domain.Payment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payment
		WHERE transaction_key=$1 ORDER BY payment_id DESC LIMIT 1`, txKey)
	var p domain.Payment
	err := row.Scan(&p.ID, &p.BookingID, &p.TransactionKey, &p.Amount, &p.Method, &p.TransactionRef,
		&p.Status, &p.RefundAmount, &p.RefundEtaDays, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PGPaymentRepository) Update(ctx context.Context, p *domain.Payment) error {
	err := r.db.QueryRow(ctx, `UPDATE payment SET payment_status=$1, refund_amount=$2, refund_eta_days=$3, updated_at=now()
		WHERE payment_id=$4 RETURNING updated_at`,
		p.Status, p.RefundAmount, p.RefundEtaDays, p.ID,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrPaymentNotFound
	}
	return err
}

var _ PaymentRepository = (*PGPaymentRepository)(nil)
