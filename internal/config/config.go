package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

var validEnvs = map[string]bool{
	"local": true,
	"alpha": true,
	"beta":  true,
	"prod":  true,
}

const (
	UserStoreMemory   = "memory"
	UserStorePostgres = "postgres"
)

type Config struct {
	ServerPort   string
	AppEnv       string
	AuthDevMode  bool
	LogLevel     string
	CookieSecure bool
	Todo         TodoConfig
	UserStore    string
	DB           DBConfig
	Cognito      CognitoConfig
	RateLimit    RateLimitConfig
	Redis        RedisConfig
}

type TodoConfig struct {
	// Latency is the simulated delay of every store call.
	Latency time.Duration
	// SeedFile replaces the built-in seed todos when set.
	SeedFile string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// RedisConfig is optional. With an empty Addr rate limit statistics stay in memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (c Config) ParseLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// CognitoEnabled reports whether a user pool is configured.
func (c Config) CognitoEnabled() bool {
	return c.Cognito.UserPoolID != "" && c.Cognito.AppClientID != ""
}

func (c Config) Validate() error {
	if _, err := strconv.Atoi(c.ServerPort); err != nil {
		return fmt.Errorf("invalid SERVER_PORT %q: %w", c.ServerPort, err)
	}
	if !validEnvs[c.AppEnv] {
		return fmt.Errorf("invalid APP_ENV %q: must be one of local, alpha, beta, prod", c.AppEnv)
	}
	if c.AuthDevMode && c.AppEnv != "local" {
		return fmt.Errorf("AUTH_DEV_MODE must not be enabled in %s environment", c.AppEnv)
	}
	if !c.AuthDevMode {
		if c.Cognito.UserPoolID == "" {
			return fmt.Errorf("COGNITO_USER_POOL_ID is required when AUTH_DEV_MODE is disabled")
		}
		if c.Cognito.AppClientID == "" {
			return fmt.Errorf("COGNITO_APP_CLIENT_ID is required when AUTH_DEV_MODE is disabled")
		}
	}
	if c.Todo.Latency < 0 {
		return fmt.Errorf("invalid TODO_LATENCY %s: must not be negative", c.Todo.Latency)
	}
	if c.UserStore != UserStoreMemory && c.UserStore != UserStorePostgres {
		return fmt.Errorf("invalid USER_STORE %q: must be one of memory, postgres", c.UserStore)
	}
	if c.RateLimit.RPS <= 0 {
		return fmt.Errorf("invalid AUTH_RATE_RPS %v: must be positive", c.RateLimit.RPS)
	}
	if c.RateLimit.Burst < 1 {
		return fmt.Errorf("invalid AUTH_RATE_BURST %d: must be at least 1", c.RateLimit.Burst)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("invalid REDIS_DB %d: must not be negative", c.Redis.DB)
	}
	return nil
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (d DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     d.Name,
		RawQuery: fmt.Sprintf("sslmode=%s", url.QueryEscape(d.SSLMode)),
	}
	return u.String()
}

type CognitoConfig struct {
	Region          string
	UserPoolID      string
	AppClientID     string
	AppClientSecret string
}

// Load reads the configuration from the environment. It fails only when a
// numeric or duration variable cannot be parsed; range checks are left to Validate.
func Load() (Config, error) {
	latency, err := time.ParseDuration(envOrDefault("TODO_LATENCY", "100ms"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid TODO_LATENCY: %w", err)
	}
	rps, err := strconv.ParseFloat(envOrDefault("AUTH_RATE_RPS", "1"), 64)
	if err != nil {
		return Config{}, fmt.Errorf("invalid AUTH_RATE_RPS: %w", err)
	}
	burst, err := strconv.Atoi(envOrDefault("AUTH_RATE_BURST", "5"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid AUTH_RATE_BURST: %w", err)
	}
	redisDB, err := strconv.Atoi(envOrDefault("REDIS_DB", "0"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	return Config{
		ServerPort:   envOrDefault("SERVER_PORT", "8080"),
		AppEnv:       envOrDefault("APP_ENV", "local"),
		AuthDevMode:  envBool("AUTH_DEV_MODE"),
		LogLevel:     envOrDefault("LOG_LEVEL", "info"),
		CookieSecure: envBool("COOKIE_SECURE"),
		Todo: TodoConfig{
			Latency:  latency,
			SeedFile: os.Getenv("TODO_SEED_FILE"),
		},
		UserStore: strings.ToLower(envOrDefault("USER_STORE", UserStoreMemory)),
		DB: DBConfig{
			Host:     envOrDefault("DB_HOST", "localhost"),
			Port:     envOrDefault("DB_PORT", "5432"),
			User:     envOrDefault("DB_USER", "todo"),
			Password: envOrDefault("DB_PASSWORD", "todo"),
			Name:     envOrDefault("DB_NAME", "todo"),
			SSLMode:  envOrDefault("DB_SSLMODE", "disable"),
		},
		Cognito: CognitoConfig{
			Region:          envOrDefault("COGNITO_REGION", "ap-northeast-1"),
			UserPoolID:      os.Getenv("COGNITO_USER_POOL_ID"),
			AppClientID:     os.Getenv("COGNITO_APP_CLIENT_ID"),
			AppClientSecret: os.Getenv("COGNITO_APP_CLIENT_SECRET"),
		},
		RateLimit: RateLimitConfig{
			RPS:   rps,
			Burst: burst,
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
	}, nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envBool(key string) bool {
	return strings.EqualFold(envOrDefault(key, "false"), "true")
}
