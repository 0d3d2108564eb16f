// Package inventory is the only writer of seat status. Every mutation of a
// flight's seats is serialized per flight so that a seat never has two holders.
package inventory

import (
	"context"

	"github.com/Domenick1991/airreservation/internal/domain"
)

// Store holds the live seat state of every flight.
//
// Seats that were never touched are available. Batch operations are
// all-or-nothing: when one seat fails the error names it and no seat changes.
type Store interface {
	Hold(ctx context.Context, flightNo int64, seatNo, txKey string) error
	HoldAll(ctx context.Context, flightNo int64, seatNos []string, txKey string) error
	Commit(ctx context.Context, flightNo int64, seatNo, txKey string) error
	CommitAll(ctx context.Context, flightNo int64, seatNos []string, txKey string) error
	Release(ctx context.Context, flightNo int64, seatNo string) error
	ReleaseAll(ctx context.Context, flightNo int64, seatNos []string) error
	States(ctx context.Context, flightNo int64) (map[string]domain.SeatState, error)
}

// Snapshot merges the static layout with the live state of flightNo.
func Snapshot(ctx context.Context, store Store, flightNo int64, layout *Layout) ([]domain.Seat, error) {
	states, err := store.States(ctx, flightNo)
	if err != nil {
		return nil, err
	}
	seats := make([]domain.Seat, len(layout.Seats))
	for i, seat := range layout.Seats {
		seats[i] = seat
		if st, ok := states[seat.SeatNo]; ok && st.Status != domain.SeatStatusAvailable {
			seats[i].SeatState = st
		} else {
			seats[i].SeatState = domain.SeatState{Status: domain.SeatStatusAvailable}
		}
	}
	return seats, nil
}

func holdError(seatNo string, current domain.SeatState) error {
	if current.Status == domain.SeatStatusBooked {
		return domain.SeatError(domain.CodeSeatUnavailable, seatNo, "seat is already booked")
	}
	return domain.SeatError(domain.CodeSeatConflict, seatNo, "seat is held by another transaction")
}

func notHeldError(seatNo string) error {
	return domain.SeatError(domain.CodeSeatNotHeld, seatNo, "seat is not held by this transaction")
}
