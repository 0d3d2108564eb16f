package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Log      LogConfig      `yaml:"log"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Booking  BookingConfig  `yaml:"booking"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address        string   `yaml:"address"`
	SwaggerDir     string   `yaml:"swagger_dir"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "text"
}

// StorageConfig selects the backends. Driver is "postgres" or "memory";
// Inventory is "redis" or "memory"; Lock is "redis" or "memory".
// SeedFile loads reference data into the memory driver.
type StorageConfig struct {
	Driver    string `yaml:"driver"`
	Inventory string `yaml:"inventory"`
	Lock      string `yaml:"lock"`
	Migrate   bool   `yaml:"migrate"`
	SeedFile  string `yaml:"seed_file"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type BookingConfig struct {
	HoldTTLMinutes  int            `yaml:"hold_ttl_minutes"`
	FlightsCacheTTL int            `yaml:"flights_cache_ttl_seconds"`
	LockTTLSeconds  int            `yaml:"lock_ttl_seconds"`
	InvoiceBaseURL  string         `yaml:"invoice_base_url"`
	Layouts         []LayoutConfig `yaml:"layouts"`
}

// LayoutConfig describes the cabin of one aircraft model.
type LayoutConfig struct {
	Model        string `yaml:"model"`
	Rows         int    `yaml:"rows"`
	Columns      string `yaml:"columns"`
	BusinessRows int    `yaml:"business_rows"`
}

type WorkerConfig struct {
	ExpirationSweepMinutes      int `yaml:"expiration_sweep_minutes"`
	FlightStatusIntervalSeconds int `yaml:"flight_status_interval_seconds"`
}

func (b BookingConfig) HoldTTL() time.Duration {
	return time.Duration(b.HoldTTLMinutes) * time.Minute
}

func (b BookingConfig) FlightsTTL() time.Duration {
	return time.Duration(b.FlightsCacheTTL) * time.Second
}

func (b BookingConfig) LockTTL() time.Duration {
	return time.Duration(b.LockTTLSeconds) * time.Second
}

func (w WorkerConfig) SweepInterval() time.Duration {
	return time.Duration(w.ExpirationSweepMinutes) * time.Minute
}

func (w WorkerConfig) FlightStatusInterval() time.Duration {
	return time.Duration(w.FlightStatusIntervalSeconds) * time.Second
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

// applyEnv lets secrets and bind addresses come from the environment (or .env).
func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		c.HTTP.Address = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.GRPC.Address == "" {
		c.GRPC.Address = ":9090"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	// Postgres runs behind several replicas, so seats and locks must be shared.
	shared := "memory"
	if c.Storage.Driver == "postgres" {
		shared = "redis"
	}
	if c.Storage.Inventory == "" {
		c.Storage.Inventory = shared
	}
	if c.Storage.Lock == "" {
		c.Storage.Lock = shared
	}
	if c.Booking.HoldTTLMinutes <= 0 {
		c.Booking.HoldTTLMinutes = 15
	}
	if c.Booking.FlightsCacheTTL <= 0 {
		c.Booking.FlightsCacheTTL = 30
	}
	if c.Booking.LockTTLSeconds <= 0 {
		c.Booking.LockTTLSeconds = 10
	}
	if c.Booking.InvoiceBaseURL == "" {
		c.Booking.InvoiceBaseURL = "/invoice"
	}
	if c.Worker.ExpirationSweepMinutes <= 0 {
		c.Worker.ExpirationSweepMinutes = 1
	}
	if c.Worker.FlightStatusIntervalSeconds <= 0 {
		c.Worker.FlightStatusIntervalSeconds = 60
	}
}
