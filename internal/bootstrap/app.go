package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/airreservation/config"
	"github.com/Domenick1991/airreservation/internal/cache"
	"github.com/Domenick1991/airreservation/internal/inventory"
	"github.com/Domenick1991/airreservation/internal/kafka"
	"github.com/Domenick1991/airreservation/internal/lock"
	"github.com/Domenick1991/airreservation/internal/repository"
	"github.com/Domenick1991/airreservation/internal/service/booking"
	"github.com/Domenick1991/airreservation/internal/service/flights"
	"github.com/Domenick1991/airreservation/internal/service/flightstatus"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// App is the wired dependency graph shared by the API and the worker.
type App struct {
	Config   *config.Config
	Log      *logrus.Logger
	Bookings *booking.BookingService
	Flights  *flights.FlightService
	Clock    *flightstatus.Clock

	pool     *pgxpool.Pool
	redis    *redis.Client
	producer *kafka.Producer
	checks   map[string]func(context.Context) error
}

type storage struct {
	bookings repository.BookingRepository
	payments repository.PaymentRepository
	flights  repository.FlightRepository
	refs     repository.ReferenceRepository
}

// Build connects the configured backends and wires the services.
func Build(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	app := &App{
		Config: cfg,
		Log:    log,
		checks: make(map[string]func(context.Context) error),
	}

	if err := checkStorage(cfg.Storage); err != nil {
		return nil, err
	}

	layouts, err := inventory.NewLayouts(cfg.Booking.Layouts)
	if err != nil {
		return nil, fmt.Errorf("load seat layouts: %w", err)
	}

	if needsRedis(cfg) {
		if cfg.Redis.Addr == "" {
			return nil, errors.New("redis address is required for redis inventory or lock")
		}
		app.redis = cache.NewRedisClient(cfg.Redis)
		if err := app.redis.Ping(ctx).Err(); err != nil {
			app.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		app.checks["redis"] = func(ctx context.Context) error { return app.redis.Ping(ctx).Err() }
	}

	st, err := app.openStorage(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	var store inventory.Store = inventory.NewMemoryStore()
	if cfg.Storage.Inventory == "redis" {
		store = inventory.NewRedisStore(app.redis)
	}

	var locker lock.Locker = lock.NewKeyedMutex()
	if cfg.Storage.Lock == "redis" {
		locker = lock.NewRedisLocker(app.redis, cfg.Booking.LockTTL())
	}

	opts := []booking.BookingServiceOption{
		booking.WithLogger(log),
		booking.WithInvoiceBaseURL(cfg.Booking.InvoiceBaseURL),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		app.producer = kafka.NewProducer(cfg.Kafka.Brokers)
		app.checks["kafka"] = app.producer.CheckConnection
		opts = append(opts,
			booking.WithProducer(app.producer, cfg.Kafka.BookingEventsTopic),
			booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		)
	}

	app.Bookings = booking.NewBookingService(
		st.bookings,
		st.payments,
		st.flights,
		st.refs,
		store,
		layouts,
		locker,
		cfg.Booking.HoldTTL(),
		opts...,
	)

	var (
		flightCache flights.FlightCache
		invalidator flightstatus.CacheInvalidator
	)
	if app.redis != nil {
		redisCache := cache.NewRedisCache(app.redis, cfg.Booking.FlightsTTL())
		flightCache = redisCache
		invalidator = redisCache
	}
	app.Flights = flights.NewFlightService(st.flights, flightCache, store, layouts, log)
	app.Clock = flightstatus.NewClock(st.flights, invalidator, cfg.Worker.FlightStatusInterval(), log)

	return app, nil
}

// checkStorage rejects process-local seat state or locks on top of a shared
// database: each replica would hand out the same seats.
func checkStorage(st config.StorageConfig) error {
	if st.Driver != "postgres" {
		return nil
	}
	if st.Inventory != "redis" || st.Lock != "redis" {
		return fmt.Errorf("postgres storage requires redis inventory and redis lock, got inventory %q and lock %q", st.Inventory, st.Lock)
	}
	return nil
}

func needsRedis(cfg *config.Config) bool {
	return cfg.Storage.Inventory == "redis" || cfg.Storage.Lock == "redis" || cfg.Redis.Addr != ""
}

func (a *App) openStorage(ctx context.Context) (*storage, error) {
	switch a.Config.Storage.Driver {
	case "postgres":
		pool, err := pgxpool.New(ctx, a.Config.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.pool = pool
		if err := pool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		if a.Config.Storage.Migrate {
			if err := repository.Migrate(ctx, pool); err != nil {
				return nil, err
			}
			a.Log.Info("database schema applied")
		}
		a.checks["postgres"] = pool.Ping
		return &storage{
			bookings: repository.NewBookingRepository(pool),
			payments: repository.NewPaymentRepository(pool),
			flights:  repository.NewFlightRepository(pool),
			refs:     repository.NewReferenceRepository(pool),
		}, nil

	case "memory":
		flightRepo := repository.NewMemoryFlightRepository()
		refs := repository.NewMemoryReferenceRepository()
		if path := a.Config.Storage.SeedFile; path != "" {
			seed, err := repository.LoadSeed(path)
			if err != nil {
				return nil, err
			}
			if err := seed.Apply(flightRepo, refs); err != nil {
				return nil, err
			}
			a.Log.WithField("seed_file", path).Info("reference data loaded")
		}
		return &storage{
			bookings: repository.NewMemoryBookingRepository(),
			payments: repository.NewMemoryPaymentRepository(),
			flights:  flightRepo,
			refs:     refs,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", a.Config.Storage.Driver)
	}
}

// Health runs every backend check and returns the failures by name.
func (a *App) Health(ctx context.Context) map[string]string {
	failed := make(map[string]string)
	for name, check := range a.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	return failed
}

// RunExpirySweeper calls ExpirePendingBookings every interval until ctx is done.
func (a *App) RunExpirySweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := a.Bookings.ExpirePendingBookings(ctx); err != nil {
				a.Log.WithError(err).Error("expire bookings")
			}
		case <-ctx.Done():
			return
		}
	}
}

// StartBackground starts the flight status clock and the hold expiry sweeper.
func (a *App) StartBackground(ctx context.Context) error {
	if err := a.Clock.Start(ctx); err != nil {
		return err
	}
	go a.RunExpirySweeper(ctx, a.Config.Worker.SweepInterval())
	return nil
}

func (a *App) Close() {
	if a.Clock != nil {
		a.Clock.Stop()
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.Log.WithError(err).Warn("close kafka producer")
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
