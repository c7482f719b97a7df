package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8001）

	DatabaseURL string // あればPOSTGRES_*より優先

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int
	PostgresSSLMode  string

	DBPoolMin          int           // アイドル接続数（2）
	DBPoolMax          int           // 最大接続数（20）
	DBConnMaxLifetime  time.Duration // 接続の寿命
	DBStatementTimeout time.Duration
	DBLockTimeout      time.Duration
	TxTimeout          time.Duration // 1トランザクションの上限

	JWTSecret string // JWT署名シークレット

	GoEnv       string   // dev/prod
	CORSOrigins []string // フロントのURL
	LogLevel    string

	ServiceName  string
	OTLPEndpoint string // 空ならトレースは出さない
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := intOr("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	poolMin, err := intOr("DB_POOL_MIN", 2)
	if err != nil {
		return Config{}, err
	}
	poolMax, err := intOr("DB_POOL_MAX", 20)
	if err != nil {
		return Config{}, err
	}
	lifetime, err := durationOr("DB_CONN_MAX_LIFETIME", time.Hour)
	if err != nil {
		return Config{}, err
	}
	stmtTimeout, err := durationOr("DB_STATEMENT_TIMEOUT", 5*time.Second)
	if err != nil {
		return Config{}, err
	}
	lockTimeout, err := durationOr("DB_LOCK_TIMEOUT", 3*time.Second)
	if err != nil {
		return Config{}, err
	}
	txTimeout, err := durationOr("TX_TIMEOUT", 5*time.Second)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: getenv("PORT", "8001"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		DBPoolMin:          poolMin,
		DBPoolMax:          poolMax,
		DBConnMaxLifetime:  lifetime,
		DBStatementTimeout: stmtTimeout,
		DBLockTimeout:      lockTimeout,
		TxTimeout:          txTimeout,

		JWTSecret: os.Getenv("JWT_SECRET"),

		GoEnv:       getenv("GO_ENV", "dev"),
		CORSOrigins: splitList(getenv("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")),
		LogLevel:    getenv("LOG_LEVEL", "info"),

		ServiceName:  getenv("SERVICE_NAME", "wastenot-api"),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	//必須チェック
	if cfg.DatabaseURL == "" {
		if cfg.PostgresUser == "" {
			return Config{}, fmt.Errorf("POSTGRES_USER is required")
		}
		if cfg.PostgresPassword == "" {
			return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
		}
		if cfg.PostgresDB == "" {
			return Config{}, fmt.Errorf("POSTGRES_DB is required")
		}
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.DBPoolMin < 0 || cfg.DBPoolMax <= 0 {
		return Config{}, fmt.Errorf("DB_POOL_MIN/DB_POOL_MAX must be positive")
	}
	if cfg.DBPoolMin > cfg.DBPoolMax {
		return Config{}, fmt.Errorf("DB_POOL_MIN must be <= DB_POOL_MAX")
	}

	return cfg, nil
}

// PostgresDSN は接続文字列。statement_timeout / lock_timeout をランタイムパラメータとして付ける。
func (c Config) PostgresDSN() string {
	params := map[string]string{}
	if c.DBStatementTimeout > 0 {
		params["statement_timeout"] = strconv.FormatInt(c.DBStatementTimeout.Milliseconds(), 10)
	}
	if c.DBLockTimeout > 0 {
		params["lock_timeout"] = strconv.FormatInt(c.DBLockTimeout.Milliseconds(), 10)
	}

	if c.DatabaseURL != "" {
		u, err := url.Parse(c.DatabaseURL)
		if err != nil || u.Scheme == "" {
			// keyword/value形式
			return appendKeywords(c.DatabaseURL, params)
		}
		q := u.Query()
		for k, v := range params {
			if q.Get(k) == "" {
				q.Set(k, v)
			}
		}
		u.RawQuery = q.Encode()
		return u.String()
	}

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
	return appendKeywords(dsn, params)
}

func appendKeywords(dsn string, params map[string]string) string {
	//順序を固定
	for _, k := range []string{"statement_timeout", "lock_timeout"} {
		v, ok := params[k]
		if !ok || strings.Contains(dsn, k+"=") {
			continue
		}
		dsn += " " + k + "=" + v
	}
	return dsn
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func intOr(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durationOr(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	out := []string{}
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
