package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kickoff-app/kickoff-core/internal/ports/out/identity"
)

// Session backends.
const (
	SessionMemory   = "memory"
	SessionBolt     = "bolt"
	SessionRedis    = "redis"
	SessionPostgres = "postgres"
)

// Diagnostics sinks.
const (
	SinkLog  = "log"
	SinkAMQP = "amqp"
	SinkNATS = "nats"
)

// GoogleConfig is the Google OAuth client registration.
type GoogleConfig struct {
	ClientIDs   identity.GoogleClientIDs
	RedirectURI string
	// TokenURL overrides Google's token endpoint (dev identity provider, tests).
	TokenURL string
}

// Config is the client-core configuration.
type Config struct {
	AppEnv   string
	LogLevel string

	APIBaseURL  string
	HTTPTimeout time.Duration

	SearchDebounce time.Duration
	SearchPageSize int

	Platform identity.Platform
	Google   GoogleConfig

	SessionBackend  string
	SessionBoltPath string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	DatabaseURL     string

	DiagnosticsSink string
	RabbitMQURL     string
	NATSURL         string
}

// Defaults returns a Config with every optional value filled in.
func Defaults() Config {
	return Config{
		AppEnv:          "development",
		LogLevel:        "info",
		HTTPTimeout:     10 * time.Second,
		SearchDebounce:  300 * time.Millisecond,
		SearchPageSize:  15,
		Platform:        identity.PlatformIOS,
		SessionBackend:  SessionMemory,
		DiagnosticsSink: SinkLog,
	}
}

// Load reads the configuration from the environment. A .env file in the working directory,
// when present, is loaded first without overriding variables that are already set.
func Load() (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}

	cfg := Defaults()
	cfg.AppEnv = getEnv("APP_ENV", cfg.AppEnv)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.APIBaseURL = getEnv("KICKOFF_API_BASE_URL", "")
	cfg.Platform = identity.Platform(strings.ToLower(getEnv("KICKOFF_PLATFORM", string(cfg.Platform))))

	cfg.Google = GoogleConfig{
		ClientIDs: identity.GoogleClientIDs{
			Web:     getEnv("GOOGLE_WEB_CLIENT_ID", ""),
			IOS:     getEnv("GOOGLE_IOS_CLIENT_ID", ""),
			Android: getEnv("GOOGLE_ANDROID_CLIENT_ID", ""),
		},
		RedirectURI: getEnv("GOOGLE_REDIRECT_URI", ""),
		TokenURL:    getEnv("GOOGLE_TOKEN_URL", ""),
	}

	cfg.SessionBackend = strings.ToLower(getEnv("SESSION_BACKEND", cfg.SessionBackend))
	cfg.SessionBoltPath = getEnv("SESSION_BOLT_PATH", "")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.DatabaseURL = getEnv("DATABASE_URL", "")
	cfg.DiagnosticsSink = strings.ToLower(getEnv("DIAGNOSTICS_SINK", cfg.DiagnosticsSink))
	cfg.RabbitMQURL = getEnv("RABBITMQ_URL", "")
	cfg.NATSURL = getEnv("NATS_URL", "")

	var err error
	if cfg.HTTPTimeout, err = getEnvDuration("KICKOFF_HTTP_TIMEOUT", cfg.HTTPTimeout); err != nil {
		return Config{}, err
	}
	if cfg.SearchDebounce, err = getEnvDuration("KICKOFF_SEARCH_DEBOUNCE", cfg.SearchDebounce); err != nil {
		return Config{}, err
	}
	if cfg.SearchPageSize, err = getEnvInt("KICKOFF_SEARCH_PAGE_SIZE", cfg.SearchPageSize); err != nil {
		return Config{}, err
	}
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("KICKOFF_API_BASE_URL is required")
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("KICKOFF_API_BASE_URL must be an absolute http(s) URL")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("KICKOFF_HTTP_TIMEOUT must be positive")
	}
	if c.SearchDebounce < 0 {
		return fmt.Errorf("KICKOFF_SEARCH_DEBOUNCE must not be negative")
	}
	if c.SearchPageSize < 1 || c.SearchPageSize > 100 {
		return fmt.Errorf("KICKOFF_SEARCH_PAGE_SIZE must be between 1 and 100")
	}
	if !c.Platform.Valid() {
		return fmt.Errorf("KICKOFF_PLATFORM must be one of ios, android, web")
	}

	switch c.SessionBackend {
	case SessionMemory:
	case SessionBolt:
		if c.SessionBoltPath == "" {
			return fmt.Errorf("SESSION_BOLT_PATH is required for the bolt session backend")
		}
	case SessionRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis session backend")
		}
	case SessionPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres session backend")
		}
	default:
		return fmt.Errorf("SESSION_BACKEND must be one of memory, bolt, redis, postgres")
	}

	switch c.DiagnosticsSink {
	case SinkLog:
	case SinkAMQP:
		if c.RabbitMQURL == "" {
			return fmt.Errorf("RABBITMQ_URL is required for the amqp diagnostics sink")
		}
	case SinkNATS:
		if c.NATSURL == "" {
			return fmt.Errorf("NATS_URL is required for the nats diagnostics sink")
		}
	default:
		return fmt.Errorf("DIAGNOSTICS_SINK must be one of log, amqp, nats")
	}
	return nil
}

func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration (e.g. 300ms): %w", key, err)
	}
	return d, nil
}
