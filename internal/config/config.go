package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Geocode   GeocodeConfig
	Verify    VerifyConfig
	Messaging MessagingConfig
	Alert     AlertConfig
	Directory DirectoryConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host string
	Port int
	// RateLimit is the global ingress request budget in requests per second.
	RateLimit int
}

type GeocodeConfig struct {
	APIKey    string
	BaseURL   string
	Timeout   time.Duration
	CacheSize int
	CacheTTL  time.Duration
}

type VerifyConfig struct {
	APIKey        string
	BaseURL       string
	Model         string
	Timeout       time.Duration
	MaxMediaBytes int64
	FetchTimeout  time.Duration
}

type MessagingConfig struct {
	AccountSID         string
	AuthToken          string
	FromNumber         string
	DefaultCountryCode string
	BaseURL            string
	Timeout            time.Duration
}

type AlertConfig struct {
	RadiusMeters float64
	// ResolveWorkers bounds concurrent per-user geocoding calls during
	// audience selection; DispatchWorkers bounds concurrent SMS submissions.
	// The two pools have different upstream rate-limit budgets.
	ResolveWorkers  int
	DispatchWorkers int
	// MaxConcurrentRuns caps simultaneous orchestrator runs so a burst of
	// report submissions cannot exhaust the geocoding/analysis quotas.
	MaxConcurrentRuns int
}

type DirectoryConfig struct {
	Path string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:      getEnv("SERVER_HOST", "localhost"),
			Port:      getEnvInt("SERVER_PORT", 8080),
			RateLimit: getEnvInt("SERVER_RATE_LIMIT", 5),
		},
		Geocode: GeocodeConfig{
			APIKey:    getEnv("GOOGLE_MAPS_API_KEY", ""),
			BaseURL:   getEnv("GEOCODE_BASE_URL", "https://maps.googleapis.com/maps/api/geocode/json"),
			Timeout:   getEnvDuration("GEOCODE_TIMEOUT", 15*time.Second),
			CacheSize: getEnvInt("GEOCODE_CACHE_SIZE", 1000),
			CacheTTL:  getEnvDuration("GEOCODE_CACHE_TTL", 24*time.Hour),
		},
		Verify: VerifyConfig{
			APIKey:        getEnv("GEMINI_API_KEY", ""),
			BaseURL:       getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			Model:         getEnv("GEMINI_MODEL", "gemini-pro-vision"),
			Timeout:       getEnvDuration("GEMINI_TIMEOUT", 30*time.Second),
			MaxMediaBytes: getEnvInt64("MEDIA_MAX_BYTES", 25*1024*1024),
			FetchTimeout:  getEnvDuration("MEDIA_FETCH_TIMEOUT", 30*time.Second),
		},
		Messaging: MessagingConfig{
			AccountSID:         getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:          getEnv("TWILIO_AUTH_TOKEN", ""),
			FromNumber:         getEnv("TWILIO_PHONE_NUMBER", ""),
			DefaultCountryCode: getEnv("SMS_DEFAULT_COUNTRY_CODE", "+91"),
			BaseURL:            getEnv("TWILIO_BASE_URL", "https://api.twilio.com"),
			Timeout:            getEnvDuration("TWILIO_TIMEOUT", 15*time.Second),
		},
		Alert: AlertConfig{
			RadiusMeters:      getEnvFloat("ALERT_RADIUS_METERS", 100000),
			ResolveWorkers:    getEnvInt("RESOLVE_WORKERS", 16),
			DispatchWorkers:   getEnvInt("DISPATCH_WORKERS", 8),
			MaxConcurrentRuns: getEnvInt("MAX_CONCURRENT_RUNS", 4),
		},
		Directory: DirectoryConfig{
			Path: getEnv("DIRECTORY_DB_PATH", "./data/users.db"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Alert.RadiusMeters <= 0 {
		return fmt.Errorf("alert radius must be positive, got %v", c.Alert.RadiusMeters)
	}
	if c.Alert.ResolveWorkers < 1 {
		return fmt.Errorf("resolve workers must be at least 1")
	}
	if c.Alert.DispatchWorkers < 1 {
		return fmt.Errorf("dispatch workers must be at least 1")
	}
	if c.Alert.MaxConcurrentRuns < 1 {
		return fmt.Errorf("max concurrent runs must be at least 1")
	}

	if c.Verify.MaxMediaBytes < 1 {
		return fmt.Errorf("media max bytes must be positive, got %d", c.Verify.MaxMediaBytes)
	}

	if len(c.Messaging.DefaultCountryCode) < 2 || c.Messaging.DefaultCountryCode[0] != '+' {
		return fmt.Errorf("default country code must look like +NN, got %q", c.Messaging.DefaultCountryCode)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
