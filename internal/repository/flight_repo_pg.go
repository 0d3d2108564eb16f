package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const flightQuery = `SELECT f.flight_no, f.airline, f.from_airport, f.to_airport,
	COALESCE(a.airplane_id, 0), COALESCE(a.model, ''), COALESCE(s.schedule_id, 0),
	s.departure_time, s.arrival_time, f.base_fare, f.status, f.updated_at
	FROM flight f
	LEFT JOIN airplane a ON a.airplane_id = f.airplane_id
	LEFT JOIN schedule s ON s.schedule_id = f.schedule_id`

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

func scanFlight(row rowScanner) (*domain.Flight, error) {
	var (
		f        domain.Flight
		dep, arr *time.Time
	)
	if err := row.Scan(&f.FlightNo, &f.Airline, &f.FromAirport, &f.ToAirport, &f.AirplaneID, &f.AirplaneModel,
		&f.ScheduleID, &dep, &arr, &f.BaseFare, &f.Status, &f.UpdatedAt); err != nil {
		return nil, err
	}
	if dep != nil && arr != nil {
		f.DepartureTime, f.ArrivalTime = *dep, *arr
	}
	return &f, nil
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, flightQuery+` ORDER BY s.departure_time NULLS LAST, f.flight_no`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) GetByNo(ctx context.Context, flightNo int64) (*domain.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, flightQuery+` WHERE f.flight_no=$1`, flightNo))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("flight %d not found", flightNo)
	}
	return f, err
}

func (r *PGFlightRepository) UpdateStatus(ctx context.Context, flightNo int64, status domain.FlightStatus) error {
	res, err := r.db.Exec(ctx, `UPDATE flight SET status=$1, updated_at=now() WHERE flight_no=$2`, status, flightNo)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.NotFound("flight %d not found", flightNo)
	}
	return nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
