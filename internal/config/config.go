package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	RealtimeLocal = "local"
	RealtimeKafka = "kafka"
)

type Config struct {
	AppName     string
	Env         string
	Host        string
	Port        int
	DBDriver    string
	DatabaseURL string
	SQLitePath  string

	JWTSecret          string
	AccessTokenMinutes int

	CORSOrigins []string
	Debug       bool

	RealtimeMode     string
	KafkaBrokers     []string
	KafkaTopic       string
	KafkaGroupPrefix string

	WSSendBuffer   int
	WSPingInterval time.Duration
	WSPongTimeout  time.Duration

	HistoryLimit   int
	DiscoveryLimit int
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first without overriding variables that are
// already set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	dbHost := getEnv("POSTGRES_HOST", "localhost")
	dbPort := getEnv("POSTGRES_PORT", "5432")
	dbUser := getEnv("POSTGRES_USER", "postgres")
	dbPass := getEnv("POSTGRES_PASSWORD", "postgres")
	dbName := getEnv("POSTGRES_DB", "seniorweb")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(dbUser, dbPass),
		Host:     fmt.Sprintf("%s:%s", dbHost, dbPort),
		Path:     dbName,
		RawQuery: "sslmode=disable",
	}

	cfg := &Config{
		AppName:     getEnv("APP_NAME", "seniorweb API"),
		Env:         getEnv("APP_ENV", "dev"),
		Host:        getEnv("HTTP_HOST", "0.0.0.0"),
		Port:        getEnvAsInt("HTTP_PORT", 8000),
		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		DatabaseURL: u.String(),
		SQLitePath:  getEnv("SQLITE_PATH", "seniorweb.db"),

		JWTSecret:          os.Getenv("JWT_SECRET"),
		AccessTokenMinutes: getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60*24),

		Debug: getEnvAsBool("DEBUG", false),

		RealtimeMode:     strings.ToLower(getEnv("REALTIME_MODE", RealtimeLocal)),
		KafkaBrokers:     getEnvAsList("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaTopic:       getEnv("KAFKA_TOPIC", "seniorweb.fanout"),
		KafkaGroupPrefix: getEnv("KAFKA_GROUP_PREFIX", "seniorweb-hub"),

		WSSendBuffer:   getEnvAsInt("WS_SEND_BUFFER", 32),
		WSPingInterval: getEnvAsDuration("WS_PING_INTERVAL", 25*time.Second),
		WSPongTimeout:  getEnvAsDuration("WS_PONG_TIMEOUT", 60*time.Second),

		HistoryLimit:   getEnvAsInt("HISTORY_LIMIT", 200),
		DiscoveryLimit: getEnvAsInt("DISCOVERY_LIMIT", 20),

		CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	switch cfg.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, cfg.DBDriver)
	}
	switch cfg.RealtimeMode {
	case RealtimeLocal:
	case RealtimeKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("KAFKA_BROKERS is required when REALTIME_MODE=kafka")
		}
	default:
		return nil, fmt.Errorf("REALTIME_MODE must be %q or %q, got %q", RealtimeLocal, RealtimeKafka, cfg.RealtimeMode)
	}
	if cfg.WSPingInterval >= cfg.WSPongTimeout {
		return nil, fmt.Errorf("WS_PING_INTERVAL must be shorter than WS_PONG_TIMEOUT")
	}

	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == DriverSQLite {
		return c.SQLitePath
	}
	return c.DatabaseURL
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenMinutes) * time.Minute
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvAsInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvAsBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvAsDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getEnvAsList(key string, def []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	var res []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			res = append(res, p)
		}
	}
	return res
}
