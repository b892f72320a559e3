package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// HTTPTimeouts configures the api server.
type HTTPTimeouts struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	HandlerTimeout time.Duration
}

// ContactConfig configures the contact endpoint.
type ContactConfig struct {
	// RateLimitMax is the number of submissions a client identifier
	// can perform within RateLimitWindow.
	RateLimitMax int

	// RateLimitWindow is the sliding window for RateLimitMax.
	RateLimitWindow time.Duration

	// RelayTimeout bounds the connect + send of a single outgoing mail.
	RelayTimeout time.Duration

	// MailsPerMinute throttles outgoing mails across all clients.
	MailsPerMinute int

	// MaxBodyBytes is the maximum accepted request body size.
	MaxBodyBytes int64

	// AllowedOrigins is the list of origins that can post to the api
	// from a browser.
	AllowedOrigins []string

	// DiscordWebhook receives a notification for every relayed submission.
	DiscordWebhook string
}

// RedisConfig configures the shared limiter backend. Leaving Addr empty
// keeps the limiter in process memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// TrackingConfig configures metrics.
type TrackingConfig struct {
	Prometheus     bool
	PrometheusPort string
}

// Config is the process wide configuration.
type Config struct {
	Env          string
	Port         string
	HTTPTimeouts *HTTPTimeouts
	Contact      *ContactConfig
	Redis        *RedisConfig
	Tracking     *TrackingConfig
}

var (
	_config *Config
	_mux    sync.Mutex
)

// Get returns the configuration. It is built once from the environment
// and re-used afterwards.
func Get() *Config {
	_mux.Lock()
	defer _mux.Unlock()

	if _config == nil {
		_config = load()
	}

	return _config
}

// Reset drops the cached configuration. Next call to Get will
// re-read the environment.
func Reset() {
	_mux.Lock()
	_config = nil
	_mux.Unlock()
}

func load() *Config {
	// A missing .env file is fine, the environment is the primary source.
	_ = godotenv.Load(getString(os.Getenv("FOLIO_ENV_FILE"), ".env"))

	return &Config{
		Env:  env(),
		Port: getString(os.Getenv("FOLIO_HTTP_PORT"), "8080"),
		HTTPTimeouts: &HTTPTimeouts{
			ReadTimeout:    getDuration("FOLIO_HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:   getDuration("FOLIO_HTTP_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:    getDuration("FOLIO_HTTP_IDLE_TIMEOUT", 60*time.Second),
			HandlerTimeout: getDuration("FOLIO_HTTP_HANDLER_TIMEOUT", 25*time.Second),
		},
		Contact: &ContactConfig{
			RateLimitMax:    getInt("CONTACT_RATE_LIMIT_MAX", 5),
			RateLimitWindow: getDuration("CONTACT_RATE_LIMIT_WINDOW", time.Minute),
			RelayTimeout:    getDuration("CONTACT_RELAY_TIMEOUT", 10*time.Second),
			MailsPerMinute:  getInt("CONTACT_MAILS_PER_MINUTE", 30),
			MaxBodyBytes:    int64(getInt("CONTACT_MAX_BODY_BYTES", 32*1024)),
			AllowedOrigins:  getList("CONTACT_ALLOWED_ORIGINS"),
			DiscordWebhook:  os.Getenv("CONTACT_DISCORD_WEBHOOK"),
		},
		Redis: &RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		Tracking: &TrackingConfig{
			Prometheus:     getBool("PROMETHEUS_ENABLED", false),
			PrometheusPort: getString(os.Getenv("PROMETHEUS_PORT"), "9090"),
		},
	}
}

func env() string {
	if e := strings.ToLower(os.Getenv("FOLIO_ENV")); e != "" {
		return e
	}

	if isTestBinary() {
		return EnvTest
	}

	return EnvDevelopment
}

func isTestBinary() bool {
	return strings.HasSuffix(os.Args[0], ".test") || strings.Contains(os.Args[0], "_test")
}

// IsTest returns true when the process runs the test suite.
func IsTest() bool {
	return Get().Env == EnvTest
}

// IsDevelopment returns true for local development.
func IsDevelopment() bool {
	return Get().Env == EnvDevelopment
}

// IsProduction returns true for production deployments.
func IsProduction() bool {
	return Get().Env == EnvProduction
}

func getString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}

	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}

	return fallback
}

// getDuration accepts either a Go duration ("90s") or a number of milliseconds.
func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)

	if raw == "" {
		return fallback
	}

	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}

	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond
	}

	return fallback
}

func getList(key string) []string {
	list := []string{}

	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}

	return list
}
