// Package flightstatus moves flights through their day-of-travel statuses
// as time passes. It never touches bookings or seats.
package flightstatus

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/repository"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const boardingWindow = 30 * time.Minute

// Compute returns the status flight should have at now. Unscheduled flights
// keep their current status, and a Delayed flight stays Delayed until boarding.
func Compute(flight domain.Flight, now time.Time) domain.FlightStatus {
	if !flight.Scheduled() {
		return flight.Status
	}
	switch {
	case now.After(flight.ArrivalTime):
		return domain.FlightStatusLanded
	case now.After(flight.DepartureTime):
		return domain.FlightStatusDeparted
	case flight.DepartureTime.Sub(now) <= boardingWindow:
		return domain.FlightStatusBoarding
	case flight.Status == domain.FlightStatusDelayed:
		return domain.FlightStatusDelayed
	default:
		return domain.FlightStatusOnTime
	}
}

type CacheInvalidator interface {
	InvalidateFlight(ctx context.Context, flightNo int64) error
}

type Clock struct {
	flights  repository.FlightRepository
	cache    CacheInvalidator
	interval time.Duration
	now      func() time.Time
	log      logrus.FieldLogger
	cron     *cron.Cron
}

func NewClock(flights repository.FlightRepository, cache CacheInvalidator, interval time.Duration, log logrus.FieldLogger) *Clock {
	return &Clock{
		flights:  flights,
		cache:    cache,
		interval: interval,
		now:      time.Now,
		log:      log,
		cron:     cron.New(),
	}
}

// Start runs Tick once and then every interval until Stop or ctx is done.
func (c *Clock) Start(ctx context.Context) error {
	if c.interval <= 0 {
		return fmt.Errorf("flight status interval must be positive, got %s", c.interval)
	}
	if _, err := c.cron.AddFunc(fmt.Sprintf("@every %s", c.interval), func() { c.run(ctx) }); err != nil {
		return fmt.Errorf("schedule flight status clock: %w", err)
	}
	c.run(ctx)
	c.cron.Start()
	c.log.WithField("interval", c.interval.String()).Info("flight status clock started")

	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	return nil
}

// Stop waits for a running tick to finish.
func (c *Clock) Stop() {
	<-c.cron.Stop().Done()
}

func (c *Clock) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := c.Tick(ctx); err != nil {
		c.log.WithError(err).Error("flight status update failed")
	}
}

// Tick recomputes every flight's status and returns how many changed.
func (c *Clock) Tick(ctx context.Context) (int, error) {
	flights, err := c.flights.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list flights: %w", err)
	}

	now := c.now()
	changed := 0
	for _, f := range flights {
		next := Compute(f, now)
		if next == f.Status {
			continue
		}
		if err := c.flights.UpdateStatus(ctx, f.FlightNo, next); err != nil {
			c.log.WithError(err).WithField("flight_no", f.FlightNo).Warn("failed to update flight status")
			continue
		}
		changed++
		c.log.WithFields(logrus.Fields{"flight_no": f.FlightNo, "from": f.Status, "to": next}).Info("flight status updated")
		if c.cache != nil {
			if err := c.cache.InvalidateFlight(ctx, f.FlightNo); err != nil {
				c.log.WithError(err).WithField("flight_no", f.FlightNo).Warn("failed to invalidate flight cache")
			}
		}
	}
	return changed, nil
}
