package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGReferenceRepository struct {
	db *pgxpool.Pool
}

func NewReferenceRepository(db *pgxpool.Pool) ReferenceRepository {
	return &PGReferenceRepository{db: db}
}

func (r *PGReferenceRepository) GetAirport(ctx context.Context, code string) (*domain.Airport, error) {
	var a domain.Airport
	err := r.db.QueryRow(ctx, `SELECT airport_code, airport_name, city, gate_no FROM airport WHERE airport_code=$1`, code).
		Scan(&a.Code, &a.Name, &a.City, &a.GateNo)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("airport %s not found", code)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PGReferenceRepository) GetClient(ctx context.Context, id int64) (*domain.Client, error) {
	var c domain.Client
	err := r.db.QueryRow(ctx, `SELECT client_id, fname, lname, email FROM client WHERE client_id=$1`, id).
		Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("client %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

var _ ReferenceRepository = (*PGReferenceRepository)(nil)
