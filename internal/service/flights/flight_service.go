package flights

import (
	"context"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/inventory"
	"github.com/Domenick1991/airreservation/internal/repository"
	"github.com/sirupsen/logrus"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByNo(ctx context.Context, flightNo int64) (*domain.Flight, error)
	SeatMap(ctx context.Context, flightNo int64) (*SeatMap, error)
}

// FlightCache is the read-through cache in front of the flight catalogue.
// A miss is reported as nil with no error.
type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	GetFlight(ctx context.Context, flightNo int64) (*domain.Flight, error)
	SetFlight(ctx context.Context, flight domain.Flight) error
}

type SeatMap struct {
	FlightNo      int64         `json:"flight_no"`
	AirplaneModel string        `json:"airplane_model"`
	Seats         []domain.Seat `json:"seats"`
	Available     int           `json:"available"`
	Held          int           `json:"held"`
	Booked        int           `json:"booked"`
}

type FlightService struct {
	repo    repository.FlightRepository
	cache   FlightCache
	store   inventory.Store
	layouts *inventory.Layouts
	log     logrus.FieldLogger
}

func NewFlightService(repo repository.FlightRepository, cache FlightCache, store inventory.Store, layouts *inventory.Layouts, log logrus.FieldLogger) *FlightService {
	return &FlightService{repo: repo, cache: cache, store: store, layouts: layouts, log: log}
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			s.log.WithError(err).Warn("flight cache read failed")
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, flights); err != nil {
			s.log.WithError(err).Warn("flight cache write failed")
		}
	}
	return flights, nil
}

func (s *FlightService) GetByNo(ctx context.Context, flightNo int64) (*domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlight(ctx, flightNo); err == nil && cached != nil {
			return cached, nil
		}
	}

	flight, err := s.repo.GetByNo(ctx, flightNo)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFlight(ctx, *flight); err != nil {
			s.log.WithError(err).Warn("flight cache write failed")
		}
	}
	return flight, nil
}

// SeatMap merges the aircraft layout with the live seat inventory. Unknown
// flights and aircraft models are reported as not found.
func (s *FlightService) SeatMap(ctx context.Context, flightNo int64) (*SeatMap, error) {
	flight, err := s.repo.GetByNo(ctx, flightNo)
	if err != nil {
		return nil, err
	}
	layout, ok := s.layouts.ForModel(flight.AirplaneModel)
	if !ok {
		return nil, domain.NotFound("seat map for airplane model %q not found", flight.AirplaneModel)
	}
	seats, err := inventory.Snapshot(ctx, s.store, flight.FlightNo, layout)
	if err != nil {
		return nil, err
	}

	out := &SeatMap{FlightNo: flight.FlightNo, AirplaneModel: layout.Model, Seats: seats}
	for _, seat := range seats {
		switch seat.Status {
		case domain.SeatStatusAvailable:
			out.Available++
		case domain.SeatStatusHeld:
			out.Held++
		case domain.SeatStatusBooked:
			out.Booked++
		}
	}
	return out, nil
}

var _ FlightUseCase = (*FlightService)(nil)
