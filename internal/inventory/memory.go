package inventory

import (
	"context"
	"sync"

	"github.com/Domenick1991/airreservation/internal/domain"
)

// MemoryStore keeps seat state in process, one RWMutex per flight.
type MemoryStore struct {
	mu      sync.Mutex
	flights map[int64]*flightSeats
}

type flightSeats struct {
	mu    sync.RWMutex
	seats map[string]domain.SeatState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{flights: make(map[int64]*flightSeats)}
}

func (s *MemoryStore) flight(flightNo int64) *flightSeats {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.flights[flightNo]
	if !ok {
		f = &flightSeats{seats: make(map[string]domain.SeatState)}
		s.flights[flightNo] = f
	}
	return f
}

func (s *MemoryStore) Hold(ctx context.Context, flightNo int64, seatNo, txKey string) error {
	return s.HoldAll(ctx, flightNo, []string{seatNo}, txKey)
}

func (s *MemoryStore) HoldAll(_ context.Context, flightNo int64, seatNos []string, txKey string) error {
	f := s.flight(flightNo)
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, seatNo := range seatNos {
		cur, ok := f.seats[seatNo]
		if !ok || cur.Status == domain.SeatStatusAvailable {
			continue
		}
		if cur.Status == domain.SeatStatusHeld && cur.Holder == txKey {
			continue
		}
		return holdError(seatNo, cur)
	}
	for _, seatNo := range seatNos {
		f.seats[seatNo] = domain.SeatState{Status: domain.SeatStatusHeld, Holder: txKey}
	}
	return nil
}

func (s *MemoryStore) Commit(ctx context.Context, flightNo int64, seatNo, txKey string) error {
	return s.CommitAll(ctx, flightNo, []string{seatNo}, txKey)
}

func (s *MemoryStore) CommitAll(_ context.Context, flightNo int64, seatNos []string, txKey string) error {
	f := s.flight(flightNo)
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, seatNo := range seatNos {
		cur := f.seats[seatNo]
		if cur.Status != domain.SeatStatusHeld || cur.Holder != txKey {
			return notHeldError(seatNo)
		}
	}
	for _, seatNo := range seatNos {
		f.seats[seatNo] = domain.SeatState{Status: domain.SeatStatusBooked, Holder: txKey}
	}
	return nil
}

func (s *MemoryStore) Release(ctx context.Context, flightNo int64, seatNo string) error {
	return s.ReleaseAll(ctx, flightNo, []string{seatNo})
}

func (s *MemoryStore) ReleaseAll(_ context.Context, flightNo int64, seatNos []string) error {
	f := s.flight(flightNo)
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, seatNo := range seatNos {
		delete(f.seats, seatNo)
	}
	return nil
}

func (s *MemoryStore) States(_ context.Context, flightNo int64) (map[string]domain.SeatState, error) {
	f := s.flight(flightNo)
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make(map[string]domain.SeatState, len(f.seats))
	for seatNo, st := range f.seats {
		out[seatNo] = st
	}
	return out, nil
}

var _ Store = (*MemoryStore)(nil)
