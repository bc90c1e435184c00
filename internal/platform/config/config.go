package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite3"
)

type Config struct {
	APIPort   string `env:"API_PORT" env-default:"4000"`
	BasePath  string `env:"API_BASE_PATH" env-default:"/api"`
	LogLevel  string `env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `env:"LOG_FORMAT" env-default:"text"`

	DBDriver       string `env:"DB_DRIVER" env-default:"pgx"`
	DatabaseURL    string `env:"DATABASE_URL"`
	DBHost         string `env:"DB_HOST" env-default:"localhost"`
	DBPort         string `env:"DB_PORT" env-default:"5432"`
	DBUser         string `env:"DB_USER" env-default:"postgres"`
	DBPassword     string `env:"DB_PASSWORD"`
	DBName         string `env:"DB_NAME" env-default:"test"`
	DBSslMode      string `env:"DB_SSLMODE" env-default:"disable"`
	SQLitePath     string `env:"SQLITE_PATH" env-default:"data/harf.db"`
	DBMaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" env-default:"25"`

	RedisAddr        string `env:"REDIS_ADDR"`
	RedisPassword    string `env:"REDIS_PASSWORD"`
	RedisDB          int    `env:"REDIS_DB" env-default:"0"`
	ResultsQueueName string `env:"RESULTS_QUEUE_NAME" env-default:"test_results_queue"`

	JWTSecret        string        `env:"JWT_SECRET" env-default:"defaultsecret"`
	JWTExp           time.Duration `env:"JWT_EXPIRATION" env-default:"72h"`
	RequireAdminAuth bool          `env:"REQUIRE_ADMIN_AUTH" env-default:"false"`

	// FallbackUserID receives results posted without a userId. Zero means the
	// bootstrapped demo account.
	FallbackUserID int64 `env:"FALLBACK_USER_ID" env-default:"0"`

	AdminUsername string `env:"ADMIN_USERNAME" env-default:"admin"`
	AdminPassword string `env:"ADMIN_PASSWORD" env-default:"admin123"`
	DemoUsername  string `env:"DEMO_USERNAME" env-default:"demo_ogrenci"`
	DemoPassword  string `env:"DEMO_PASSWORD" env-default:"123456"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, relying on environment variables")
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q (want %q or %q)", c.DBDriver, DriverPostgres, DriverSQLite)
	}
	if c.FallbackUserID < 0 {
		return fmt.Errorf("config: FALLBACK_USER_ID must not be negative")
	}
	if p := strings.Trim(c.BasePath, "/"); p != "" {
		c.BasePath = "/" + p
	} else {
		c.BasePath = ""
	}
	return nil
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	if c.DBDriver == DriverSQLite {
		return c.SQLitePath + "?_foreign_keys=on"
	}
	return "host=" + c.DBHost +
		" port=" + c.DBPort +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" sslmode=" + c.DBSslMode
}

func (c *Config) Addr() string {
	return ":" + c.APIPort
}

// SlogLevel parses LogLevel, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
