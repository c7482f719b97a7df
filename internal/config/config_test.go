package config_test

import (
	"strings"
	"testing"
	"time"

	"wastenot/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 他の環境変数に引きずられないよう全部上書きする
func setBaseEnv(t *testing.T) {
	t.Helper()

	for _, k := range []string{
		"PORT", "DATABASE_URL", "POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_SSLMODE",
		"DB_POOL_MIN", "DB_POOL_MAX", "DB_CONN_MAX_LIFETIME", "DB_STATEMENT_TIMEOUT", "DB_LOCK_TIMEOUT", "TX_TIMEOUT",
		"GO_ENV", "CORS_ORIGINS", "LOG_LEVEL", "SERVICE_NAME", "OTEL_EXPORTER_OTLP_ENDPOINT",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("POSTGRES_USER", "wastenot")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "wastenot")
	t.Setenv("JWT_SECRET", "jwt-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8001", cfg.Port)
	assert.Equal(t, "localhost", cfg.PostgresHost)
	assert.Equal(t, 5432, cfg.PostgresPort)
	assert.Equal(t, "disable", cfg.PostgresSSLMode)
	assert.Equal(t, 2, cfg.DBPoolMin)
	assert.Equal(t, 20, cfg.DBPoolMax)
	assert.Equal(t, time.Hour, cfg.DBConnMaxLifetime)
	assert.Equal(t, 5*time.Second, cfg.DBStatementTimeout)
	assert.Equal(t, 3*time.Second, cfg.DBLockTimeout)
	assert.Equal(t, 5*time.Second, cfg.TxTimeout)
	assert.Equal(t, "dev", cfg.GoEnv)
	assert.Equal(t, []string{"http://localhost:5173", "http://127.0.0.1:5173"}, cfg.CORSOrigins)
	assert.Equal(t, "wastenot-api", cfg.ServiceName)
	assert.Empty(t, cfg.OTLPEndpoint)
}

func TestLoad_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DB_POOL_MIN", "1")
	t.Setenv("DB_POOL_MAX", "4")
	t.Setenv("TX_TIMEOUT", "750ms")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 1, cfg.DBPoolMin)
	assert.Equal(t, 4, cfg.DBPoolMax)
	assert.Equal(t, 750*time.Millisecond, cfg.TxTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  string
	}{
		{"missing jwt secret", "JWT_SECRET", ""},
		{"missing user", "POSTGRES_USER", ""},
		{"bad port", "POSTGRES_PORT", "x"},
		{"bad duration", "TX_TIMEOUT", "5"},
		{"pool max zero", "DB_POOL_MAX", "0"},
		{"pool min above max", "DB_POOL_MIN", "50"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(tc.key, tc.val)

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_DatabaseURLSkipsPostgresVars(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("POSTGRES_USER", "")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/wastenot")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/wastenot", cfg.DatabaseURL)
}

// =====================
// PostgresDSN
// =====================

func TestPostgresDSN_Keywords(t *testing.T) {
	cfg := config.Config{
		PostgresHost:       "db",
		PostgresPort:       5432,
		PostgresUser:       "u",
		PostgresPassword:   "p",
		PostgresDB:         "wastenot",
		PostgresSSLMode:    "disable",
		DBStatementTimeout: 5 * time.Second,
		DBLockTimeout:      3 * time.Second,
	}

	assert.Equal(t,
		"host=db port=5432 user=u password=p dbname=wastenot sslmode=disable statement_timeout=5000 lock_timeout=3000",
		cfg.PostgresDSN(),
	)
}

func TestPostgresDSN_URL(t *testing.T) {
	cfg := config.Config{
		DatabaseURL:        "postgres://u:p@db:5432/wastenot?sslmode=require&lock_timeout=100",
		DBStatementTimeout: 2 * time.Second,
		DBLockTimeout:      3 * time.Second,
	}

	dsn := cfg.PostgresDSN()
	assert.True(t, strings.HasPrefix(dsn, "postgres://u:p@db:5432/wastenot?"))
	assert.Contains(t, dsn, "statement_timeout=2000")
	//既にあるものは上書きしない
	assert.Contains(t, dsn, "lock_timeout=100")
	assert.NotContains(t, dsn, "lock_timeout=3000")
	assert.Contains(t, dsn, "sslmode=require")
}

func TestPostgresDSN_NoTimeouts(t *testing.T) {
	cfg := config.Config{DatabaseURL: "host=db user=u dbname=wastenot"}
	assert.Equal(t, "host=db user=u dbname=wastenot", cfg.PostgresDSN())
}
