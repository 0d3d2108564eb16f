package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/airreservation/config"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func memoryConfig() *config.Config {
	return &config.Config{
		Storage: config.StorageConfig{Driver: "memory", Inventory: "memory", Lock: "memory"},
		Booking: config.BookingConfig{
			HoldTTLMinutes:  15,
			FlightsCacheTTL: 30,
			LockTTLSeconds:  10,
			InvoiceBaseURL:  "/invoice",
		},
		Worker: config.WorkerConfig{ExpirationSweepMinutes: 1, FlightStatusIntervalSeconds: 60},
	}
}

func TestBuild_MemoryHealthz(t *testing.T) {
	log, _ := test.NewNullLogger()
	app, err := Build(context.Background(), memoryConfig(), log)
	require.NoError(t, err)
	defer app.Close()

	router := NewRouter(app)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestBuild_FlightsRouteWired(t *testing.T) {
	log, _ := test.NewNullLogger()
	app, err := Build(context.Background(), memoryConfig(), log)
	require.NoError(t, err)
	defer app.Close()

	w := httptest.NewRecorder()
	NewRouter(app).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/flights/42", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBuild_RedisBackends(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := memoryConfig()
	cfg.Storage.Inventory = "redis"
	cfg.Storage.Lock = "redis"
	cfg.Redis.Addr = mr.Addr()

	log, _ := test.NewNullLogger()
	app, err := Build(context.Background(), cfg, log)
	require.NoError(t, err)
	defer app.Close()

	assert.Empty(t, app.Health(context.Background()))

	mr.Close()
	assert.Contains(t, app.Health(context.Background()), "redis")
}

func TestBuild_ConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		errMsg string
	}{
		{
			name:   "unknown storage driver",
			mutate: func(c *config.Config) { c.Storage.Driver = "sqlite" },
			errMsg: `unknown storage driver "sqlite"`,
		},
		{
			name:   "redis inventory without address",
			mutate: func(c *config.Config) { c.Storage.Inventory = "redis" },
			errMsg: "redis address is required",
		},
		{
			name: "postgres with memory inventory",
			mutate: func(c *config.Config) {
				c.Storage.Driver = "postgres"
				c.Storage.Lock = "redis"
			},
			errMsg: `postgres storage requires redis inventory and redis lock, got inventory "memory"`,
		},
		{
			name: "postgres with memory lock",
			mutate: func(c *config.Config) {
				c.Storage.Driver = "postgres"
				c.Storage.Inventory = "redis"
			},
			errMsg: `lock "memory"`,
		},
		{
			name:   "missing seed file",
			mutate: func(c *config.Config) { c.Storage.SeedFile = "does-not-exist.yaml" },
			errMsg: "does-not-exist.yaml",
		},
		{
			name: "bad layout",
			mutate: func(c *config.Config) {
				c.Booking.Layouts = []config.LayoutConfig{{Model: "X1", Rows: 0, Columns: "AB"}}
			},
			errMsg: "load seat layouts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := memoryConfig()
			tt.mutate(cfg)
			log, _ := test.NewNullLogger()

			_, err := Build(context.Background(), cfg, log)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestCorsConfig(t *testing.T) {
	all := corsConfig(nil)
	assert.True(t, all.AllowAllOrigins)
	assert.False(t, all.AllowCredentials)

	wildcard := corsConfig([]string{"*"})
	assert.True(t, wildcard.AllowAllOrigins)
	assert.Empty(t, wildcard.AllowOrigins)

	listed := corsConfig([]string{"https://booking.example.com"})
	assert.False(t, listed.AllowAllOrigins)
	assert.Equal(t, []string{"https://booking.example.com"}, listed.AllowOrigins)
	assert.True(t, listed.AllowCredentials)
}

func TestRouter_CORSPreflight(t *testing.T) {
	log, _ := test.NewNullLogger()
	cfg := memoryConfig()
	cfg.HTTP.AllowedOrigins = []string{"https://booking.example.com"}
	app, err := Build(context.Background(), cfg, log)
	require.NoError(t, err)
	defer app.Close()

	req := httptest.NewRequest(http.MethodOptions, "/flights", nil)
	req.Header.Set("Origin", "https://booking.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	NewRouter(app).ServeHTTP(w, req)

	assert.Equal(t, "https://booking.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLogger(t *testing.T) {
	log, hook := test.NewNullLogger()
	router := gin.New()
	router.Use(requestLogger(log))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ok?x=1", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	router.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, http.StatusOK, entry.Data["status"])
	assert.Equal(t, "/ok", entry.Data["path"])
	assert.Equal(t, "x=1", entry.Data["query"])
	assert.Equal(t, "Chrome", entry.Data["browser"])
	assert.Equal(t, false, entry.Data["bot"])

	hook.Reset()
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}
